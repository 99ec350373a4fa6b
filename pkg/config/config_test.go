package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "venue-1", cfg.App.VenueID)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.DB.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Monitor.AutoStart)
	assert.Equal(t, 24, cfg.Monitor.RetentionHours)
}

func TestFromViper_Sobrescritura(t *testing.T) {
	v := viper.New()
	v.Set("VENUE_ID", "bar-centro")
	v.Set("DB_ENABLED", "true")
	v.Set("DB_PORT", "6543")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("MQTT_QOS", "no-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "bar-centro", cfg.App.VenueID)
	assert.True(t, cfg.DB.Enabled)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1, cfg.MQTT.QoS)
}

func TestFromViper_Validaciones(t *testing.T) {
	v := viper.New()
	v.Set("VENUE_ID", "")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("PUSH_ENABLED", true)
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
