package stockalert

import (
	"fmt"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// Valores por defecto de la configuración de un local.
const (
	DefaultWarningPct              = 25.0
	DefaultCriticalPct             = 10.0
	DefaultEmergencyPct            = 5.0
	DefaultCheckIntervalMinutes    = 15
	DefaultDigestIntervalMinutes   = 60
	DefaultEscalationCheckMinutes  = 5
	DefaultEscalationWindowMinutes = 15
	DefaultDedupWindowMinutes      = 30
	DefaultVelocityWindowMinutes   = 60
	DefaultRestockBufferPercent    = 50.0
	DefaultRestockLeadTimeMinutes  = 60
	DefaultDepletionHorizonMinutes = 120
)

// DefaultConfig configuración inicial de un local.
func DefaultConfig(venueID string) entity.StockAlertConfig {
	return WithDefaults(entity.StockAlertConfig{
		VenueID: venueID,
		Enabled: true,
		Notifications: entity.NotificationPolicy{
			Channels:      []entity.Channel{entity.ChannelWebsocket, entity.ChannelPush, entity.ChannelEmail},
			DigestEnabled: true,
		},
	})
}

// WithDefaults completa los campos en cero (umbrales e intervalos) con los valores por defecto.
func WithDefaults(cfg entity.StockAlertConfig) entity.StockAlertConfig {
	t := &cfg.DefaultThresholds
	if t.Warning == 0 && t.Critical == 0 && t.Emergency == 0 {
		*t = entity.Thresholds{Warning: DefaultWarningPct, Critical: DefaultCriticalPct, Emergency: DefaultEmergencyPct}
	}
	n := &cfg.Notifications
	if n.EscalationWindowMinutes <= 0 {
		n.EscalationWindowMinutes = DefaultEscalationWindowMinutes
	}
	if n.DedupWindowMinutes <= 0 {
		n.DedupWindowMinutes = DefaultDedupWindowMinutes
	}
	m := &cfg.Monitoring
	if m.CheckIntervalMinutes <= 0 {
		m.CheckIntervalMinutes = DefaultCheckIntervalMinutes
	}
	if m.DigestIntervalMinutes <= 0 {
		m.DigestIntervalMinutes = DefaultDigestIntervalMinutes
	}
	if m.EscalationCheckMinutes <= 0 {
		m.EscalationCheckMinutes = DefaultEscalationCheckMinutes
	}
	if m.VelocityWindowMinutes <= 0 {
		m.VelocityWindowMinutes = DefaultVelocityWindowMinutes
	}
	if m.RestockBufferPercent <= 0 {
		m.RestockBufferPercent = DefaultRestockBufferPercent
	}
	if m.RestockLeadTimeMinutes <= 0 {
		m.RestockLeadTimeMinutes = DefaultRestockLeadTimeMinutes
	}
	if m.DepletionHorizonMinutes <= 0 {
		m.DepletionHorizonMinutes = DefaultDepletionHorizonMinutes
	}
	return cfg
}

// ValidateThresholds exige 0 <= emergency <= critical <= warning <= 100.
func ValidateThresholds(t entity.Thresholds) error {
	if t.Emergency < 0 || t.Warning > 100 || t.Emergency > t.Critical || t.Critical > t.Warning {
		return fmt.Errorf("%w: umbrales deben cumplir 0 <= emergency <= critical <= warning <= 100", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateCategory valida una categoría monitoreada.
func ValidateCategory(mc entity.MonitoredCategory) error {
	if mc.CategoryID == "" {
		return fmt.Errorf("%w: categoryId requerido", domain.ErrInvalidInput)
	}
	if !mc.RotationSpeed.Valid() {
		return fmt.Errorf("%w: rotationSpeed %q desconocida", domain.ErrInvalidInput, mc.RotationSpeed)
	}
	if mc.Thresholds != nil {
		return ValidateThresholds(*mc.Thresholds)
	}
	return nil
}

// ValidateConfig valida la configuración completa (después de WithDefaults).
func ValidateConfig(cfg entity.StockAlertConfig) error {
	if err := ValidateThresholds(cfg.DefaultThresholds); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(cfg.MonitoredCategories))
	for _, mc := range cfg.MonitoredCategories {
		if err := ValidateCategory(mc); err != nil {
			return err
		}
		if _, dup := seen[mc.CategoryID]; dup {
			return fmt.Errorf("%w: categoría %s duplicada", domain.ErrInvalidInput, mc.CategoryID)
		}
		seen[mc.CategoryID] = struct{}{}
	}
	for _, ch := range cfg.Notifications.Channels {
		if !ch.Valid() {
			return fmt.Errorf("%w: canal %q desconocido", domain.ErrInvalidInput, ch)
		}
	}
	m := cfg.Monitoring
	if m.CheckIntervalMinutes <= 0 || m.DigestIntervalMinutes <= 0 || m.EscalationCheckMinutes <= 0 {
		return fmt.Errorf("%w: los intervalos deben ser mayores a cero", domain.ErrInvalidInput)
	}
	return nil
}

// MergeConfig aplica un PATCH sobre la configuración actual y devuelve una nueva.
// No modifica old: los slices se copian.
func MergeConfig(old entity.StockAlertConfig, p entity.StockAlertConfigPatch) entity.StockAlertConfig {
	out := cloneConfig(old)
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if t := p.DefaultThresholds; t != nil {
		if t.Warning != nil {
			out.DefaultThresholds.Warning = *t.Warning
		}
		if t.Critical != nil {
			out.DefaultThresholds.Critical = *t.Critical
		}
		if t.Emergency != nil {
			out.DefaultThresholds.Emergency = *t.Emergency
		}
	}
	if p.MonitoredCategories != nil {
		out.MonitoredCategories = cloneCategories(*p.MonitoredCategories)
	}
	if n := p.Notifications; n != nil {
		if n.Channels != nil {
			out.Notifications.Channels = append([]entity.Channel(nil), (*n.Channels)...)
		}
		if n.DigestEnabled != nil {
			out.Notifications.DigestEnabled = *n.DigestEnabled
		}
		if n.EscalationDisabled != nil {
			out.Notifications.EscalationDisabled = *n.EscalationDisabled
		}
		if n.EscalationWindowMinutes != nil {
			out.Notifications.EscalationWindowMinutes = *n.EscalationWindowMinutes
		}
		if n.DedupWindowMinutes != nil {
			out.Notifications.DedupWindowMinutes = *n.DedupWindowMinutes
		}
	}
	if m := p.Monitoring; m != nil {
		setInt(&out.Monitoring.CheckIntervalMinutes, m.CheckIntervalMinutes)
		setInt(&out.Monitoring.DigestIntervalMinutes, m.DigestIntervalMinutes)
		setInt(&out.Monitoring.EscalationCheckMinutes, m.EscalationCheckMinutes)
		setInt(&out.Monitoring.VelocityWindowMinutes, m.VelocityWindowMinutes)
		setInt(&out.Monitoring.RestockLeadTimeMinutes, m.RestockLeadTimeMinutes)
		setInt(&out.Monitoring.DepletionHorizonMinutes, m.DepletionHorizonMinutes)
		if m.RestockBufferPercent != nil {
			out.Monitoring.RestockBufferPercent = *m.RestockBufferPercent
		}
	}
	return out
}

// MergeCategory aplica un PATCH sobre una categoría monitoreada.
func MergeCategory(old entity.MonitoredCategory, p entity.MonitoredCategoryPatch) entity.MonitoredCategory {
	out := old
	if p.CategoryName != nil {
		out.CategoryName = *p.CategoryName
	}
	if p.ProductType != nil {
		out.ProductType = *p.ProductType
	}
	if p.RotationSpeed != nil {
		out.RotationSpeed = *p.RotationSpeed
	}
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	switch {
	case p.ClearThresholds:
		out.Thresholds = nil
	case p.Thresholds != nil:
		t := *p.Thresholds
		out.Thresholds = &t
	case old.Thresholds != nil:
		t := *old.Thresholds
		out.Thresholds = &t
	}
	return out
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func cloneConfig(c entity.StockAlertConfig) entity.StockAlertConfig {
	out := c
	out.MonitoredCategories = cloneCategories(c.MonitoredCategories)
	out.Notifications.Channels = append([]entity.Channel(nil), c.Notifications.Channels...)
	return out
}

// CloneConfig copia profunda de la configuración.
func CloneConfig(c entity.StockAlertConfig) entity.StockAlertConfig { return cloneConfig(c) }

func cloneCategories(list []entity.MonitoredCategory) []entity.MonitoredCategory {
	if list == nil {
		return nil
	}
	out := make([]entity.MonitoredCategory, len(list))
	for i, mc := range list {
		out[i] = mc
		if mc.Thresholds != nil {
			t := *mc.Thresholds
			out[i].Thresholds = &t
		}
	}
	return out
}
