package stockalert_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfig_Valida(t *testing.T) {
	cfg := stockalert.DefaultConfig("venue-1")
	require.NoError(t, stockalert.ValidateConfig(cfg))
	assert.Equal(t, 15, cfg.Monitoring.CheckIntervalMinutes)
	assert.Equal(t, 60, cfg.Monitoring.DigestIntervalMinutes)
	assert.Equal(t, 5, cfg.Monitoring.EscalationCheckMinutes)
}

func TestValidateThresholds_OrdenInvalido(t *testing.T) {
	err := stockalert.ValidateThresholds(entity.Thresholds{Warning: 10, Critical: 20, Emergency: 5})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateConfig_CanalDesconocido(t *testing.T) {
	cfg := stockalert.DefaultConfig("venue-1")
	cfg.Notifications.Channels = append(cfg.Notifications.Channels, "sms")
	assert.ErrorIs(t, stockalert.ValidateConfig(cfg), domain.ErrInvalidInput)
}

func TestMergeConfig_SoloCamposPresentes(t *testing.T) {
	old := stockalert.DefaultConfig("venue-1")
	old.MonitoredCategories = []entity.MonitoredCategory{{CategoryID: "c1", Enabled: true}}

	merged := stockalert.MergeConfig(old, entity.StockAlertConfigPatch{
		DefaultThresholds: &entity.ThresholdsPatch{Warning: ptr(30.0)},
		Notifications:     &entity.NotificationPolicyPatch{DigestEnabled: ptr(false)},
		Monitoring:        &entity.MonitoringPolicyPatch{CheckIntervalMinutes: ptr(5)},
	})

	assert.Equal(t, 30.0, merged.DefaultThresholds.Warning)
	assert.Equal(t, old.DefaultThresholds.Critical, merged.DefaultThresholds.Critical)
	assert.False(t, merged.Notifications.DigestEnabled)
	assert.False(t, merged.Notifications.EscalationDisabled)
	assert.Equal(t, 5, merged.Monitoring.CheckIntervalMinutes)
	assert.Equal(t, old.Monitoring.DigestIntervalMinutes, merged.Monitoring.DigestIntervalMinutes)
	require.Len(t, merged.MonitoredCategories, 1)

	// old no se modifica
	assert.Equal(t, 25.0, old.DefaultThresholds.Warning)
	assert.True(t, old.Notifications.DigestEnabled)
}

func TestMergeConfig_NoCompartePunteros(t *testing.T) {
	old := stockalert.DefaultConfig("venue-1")
	old.MonitoredCategories = []entity.MonitoredCategory{
		{CategoryID: "c1", Enabled: true, Thresholds: &entity.Thresholds{Warning: 30, Critical: 15, Emergency: 5}},
	}
	merged := stockalert.MergeConfig(old, entity.StockAlertConfigPatch{Enabled: ptr(false)})
	merged.MonitoredCategories[0].Thresholds.Warning = 99

	assert.Equal(t, 30.0, old.MonitoredCategories[0].Thresholds.Warning)
	assert.True(t, old.Enabled)
	assert.False(t, merged.Enabled)
}

func TestMergeCategory_LimpiarUmbrales(t *testing.T) {
	old := entity.MonitoredCategory{
		CategoryID: "c1", Enabled: true,
		Thresholds: &entity.Thresholds{Warning: 30, Critical: 15, Emergency: 5},
	}
	merged := stockalert.MergeCategory(old, entity.MonitoredCategoryPatch{
		Enabled:         ptr(false),
		RotationSpeed:   ptr(entity.RotationFast),
		ClearThresholds: true,
	})
	assert.False(t, merged.Enabled)
	assert.Equal(t, entity.RotationFast, merged.RotationSpeed)
	assert.Nil(t, merged.Thresholds)
	assert.NotNil(t, old.Thresholds)
}
