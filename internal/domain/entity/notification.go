package entity

import "time"

// Tipos de notificación.
const (
	NotificationImmediate  = "immediate"
	NotificationDigest     = "digest"
	NotificationEscalation = "escalation"
)

// Attachment adjunto de una notificación (p. ej. reporte PDF de reposición en el digest).
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Notification mensaje entregado a un destinatario por un canal.
type Notification struct {
	Kind        string
	Recipient   Recipient
	Channel     Channel
	Subject     string
	Body        string
	Severity    Severity
	Alerts      []Alert
	Attachments []Attachment
	CreatedAt   time.Time
}
