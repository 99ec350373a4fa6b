package entity

import "time"

// Severity nivel de urgencia de un estado de stock o alerta.
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityCritical  Severity = "critical"
	SeverityEmergency Severity = "emergency"
)

// Rank devuelve el orden de urgencia (mayor = más urgente). Desconocido = -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	case SeverityEmergency:
		return 3
	}
	return -1
}

// Valid indica si la severidad es una de las conocidas.
func (s Severity) Valid() bool { return s.Rank() >= 0 }

// IsCritical es true para critical y emergency (nunca van al digest).
func (s Severity) IsCritical() bool { return s.Rank() >= SeverityCritical.Rank() }

// AlertStatus estado del ciclo de vida de una alerta.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Valid indica si el estado es uno de los conocidos.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusActive, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}

// AlertType tipo de condición que disparó la alerta.
type AlertType string

const AlertTypeLowStock AlertType = "low_stock"

// AlertKey identidad de una alerta: como máximo una alerta no resuelta por clave.
type AlertKey struct {
	BarID     string
	ProductID string
	AlertType AlertType
}

func (k AlertKey) String() string {
	return k.BarID + "|" + k.ProductID + "|" + string(k.AlertType)
}

// Alert alerta de stock con su ciclo de vida (active → acknowledged → resolved).
type Alert struct {
	ID          string
	BarID       string
	BarName     string
	ProductID   string
	ProductName string
	CategoryID  string
	ProductType string
	AlertType   AlertType
	Status      AlertStatus
	Severity    Severity
	Message     string

	StockPercentage             float64
	CurrentStock                float64
	EstimatedMinutesToDepletion *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	AcknowledgedAt *time.Time
	AcknowledgedBy string
	Note           string

	ResolvedAt *time.Time
	Resolution string
	ResolvedBy string

	Escalated   bool
	EscalatedAt *time.Time
}

// Key devuelve la identidad de la alerta.
func (a Alert) Key() AlertKey {
	return AlertKey{BarID: a.BarID, ProductID: a.ProductID, AlertType: a.AlertType}
}

// IsOpen es true mientras la alerta no está resuelta.
func (a Alert) IsOpen() bool { return a.Status != AlertStatusResolved }
