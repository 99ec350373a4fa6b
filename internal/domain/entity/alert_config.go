package entity

import "time"

// Thresholds cortes porcentuales por severidad. Se evalúan de la más urgente a la menos urgente.
type Thresholds struct {
	Warning   float64 `json:"warning" yaml:"warning"`
	Critical  float64 `json:"critical" yaml:"critical"`
	Emergency float64 `json:"emergency" yaml:"emergency"`
}

// NotificationPolicy política de notificación del local.
type NotificationPolicy struct {
	Channels                []Channel `json:"channels" yaml:"channels"`
	DigestEnabled           bool      `json:"digestEnabled" yaml:"digest_enabled"`
	EscalationDisabled      bool      `json:"escalationDisabled" yaml:"escalation_disabled"`
	EscalationWindowMinutes int       `json:"escalationWindowMinutes" yaml:"escalation_window_minutes"`
	DedupWindowMinutes      int       `json:"dedupWindowMinutes" yaml:"dedup_window_minutes"`
}

// MonitoringPolicy intervalos y parámetros ajustables del monitor.
type MonitoringPolicy struct {
	CheckIntervalMinutes    int     `json:"checkIntervalMinutes" yaml:"check_interval_minutes"`
	DigestIntervalMinutes   int     `json:"digestIntervalMinutes" yaml:"digest_interval_minutes"`
	EscalationCheckMinutes  int     `json:"escalationCheckMinutes" yaml:"escalation_check_minutes"`
	VelocityWindowMinutes   int     `json:"velocityWindowMinutes" yaml:"velocity_window_minutes"`
	RestockBufferPercent    float64 `json:"restockBufferPercent" yaml:"restock_buffer_percent"`
	RestockLeadTimeMinutes  int     `json:"restockLeadTimeMinutes" yaml:"restock_lead_time_minutes"`
	DepletionHorizonMinutes int     `json:"depletionHorizonMinutes" yaml:"depletion_horizon_minutes"`
}

// StockAlertConfig configuración de alertas de stock de un local (una por venue).
type StockAlertConfig struct {
	VenueID             string              `json:"venueId" yaml:"venue_id"`
	Enabled             bool                `json:"enabled" yaml:"enabled"`
	DefaultThresholds   Thresholds          `json:"defaultThresholds" yaml:"default_thresholds"`
	MonitoredCategories []MonitoredCategory `json:"monitoredCategories" yaml:"monitored_categories"`
	Notifications       NotificationPolicy  `json:"notifications" yaml:"notifications"`
	Monitoring          MonitoringPolicy    `json:"monitoring" yaml:"monitoring"`
	UpdatedAt           time.Time           `json:"updatedAt" yaml:"-"`
	UpdatedBy           string              `json:"updatedBy,omitempty" yaml:"-"`
}

// Category busca una categoría monitoreada por ID.
func (c StockAlertConfig) Category(categoryID string) (MonitoredCategory, bool) {
	for _, mc := range c.MonitoredCategories {
		if mc.CategoryID == categoryID {
			return mc, true
		}
	}
	return MonitoredCategory{}, false
}

// ThresholdsPatch actualización parcial de umbrales.
type ThresholdsPatch struct {
	Warning   *float64 `json:"warning,omitempty"`
	Critical  *float64 `json:"critical,omitempty"`
	Emergency *float64 `json:"emergency,omitempty"`
}

// NotificationPolicyPatch actualización parcial de la política de notificación.
type NotificationPolicyPatch struct {
	Channels                *[]Channel `json:"channels,omitempty"`
	DigestEnabled           *bool      `json:"digestEnabled,omitempty"`
	EscalationDisabled      *bool      `json:"escalationDisabled,omitempty"`
	EscalationWindowMinutes *int       `json:"escalationWindowMinutes,omitempty"`
	DedupWindowMinutes      *int       `json:"dedupWindowMinutes,omitempty"`
}

// MonitoringPolicyPatch actualización parcial de intervalos.
type MonitoringPolicyPatch struct {
	CheckIntervalMinutes    *int     `json:"checkIntervalMinutes,omitempty"`
	DigestIntervalMinutes   *int     `json:"digestIntervalMinutes,omitempty"`
	EscalationCheckMinutes  *int     `json:"escalationCheckMinutes,omitempty"`
	VelocityWindowMinutes   *int     `json:"velocityWindowMinutes,omitempty"`
	RestockBufferPercent    *float64 `json:"restockBufferPercent,omitempty"`
	RestockLeadTimeMinutes  *int     `json:"restockLeadTimeMinutes,omitempty"`
	DepletionHorizonMinutes *int     `json:"depletionHorizonMinutes,omitempty"`
}

// StockAlertConfigPatch cuerpo de PATCH /config: solo se aplican los campos presentes.
type StockAlertConfigPatch struct {
	Enabled             *bool                    `json:"enabled,omitempty"`
	DefaultThresholds   *ThresholdsPatch         `json:"defaultThresholds,omitempty"`
	MonitoredCategories *[]MonitoredCategory     `json:"monitoredCategories,omitempty"`
	Notifications       *NotificationPolicyPatch `json:"notifications,omitempty"`
	Monitoring          *MonitoringPolicyPatch   `json:"monitoring,omitempty"`
}
