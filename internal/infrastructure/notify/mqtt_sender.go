package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ stockalert.ChannelSender = (*MQTTSender)(nil)

// Publisher subconjunto de mqtt.Client usado por el sender.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// NewMQTTClient conecta al broker. Los paneles web se suscriben por MQTT sobre WebSocket.
func NewMQTTClient(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("conectar broker MQTT: %w", token.Error())
	}
	return client, nil
}

// MQTTSender canal websocket: publica cada notificación solo en el tópico del usuario
// (<prefijo>/users/<userId>).
type MQTTSender struct {
	pub    Publisher
	prefix string
	qos    byte
}

// NewMQTTSender construye el sender.
func NewMQTTSender(pub Publisher, topicPrefix string, qos byte) *MQTTSender {
	return &MQTTSender{pub: pub, prefix: strings.TrimSuffix(topicPrefix, "/"), qos: qos}
}

func (s *MQTTSender) Channel() entity.Channel { return entity.ChannelWebsocket }

// Send publica y espera la confirmación del broker hasta el deadline del contexto.
func (s *MQTTSender) Send(ctx context.Context, n entity.Notification) error {
	payload, err := json.Marshal(toPayload(n))
	if err != nil {
		return fmt.Errorf("mqtt: serializar notificación: %w", err)
	}
	topic := fmt.Sprintf("%s/users/%s", s.prefix, n.Recipient.UserID)
	token := s.pub.Publish(topic, s.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt: publicar en %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publicar en %s: %w", topic, err)
	}
	return nil
}
