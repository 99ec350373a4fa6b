package notify

import (
	"errors"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var (
	// ErrNoPushToken el destinatario no registró token push.
	ErrNoPushToken = errors.New("destinatario sin push token")
	// ErrNoEmail el destinatario no registró email.
	ErrNoEmail = errors.New("destinatario sin email")
)

// alertPayload resumen de alerta que viaja por websocket y push.
type alertPayload struct {
	ID                          string   `json:"id"`
	BarID                       string   `json:"barId"`
	ProductID                   string   `json:"productId"`
	ProductName                 string   `json:"productName,omitempty"`
	Severity                    string   `json:"severity"`
	Status                      string   `json:"status"`
	StockPercentage             float64  `json:"stockPercentage"`
	EstimatedMinutesToDepletion *float64 `json:"estimatedMinutesToDepletion,omitempty"`
}

// messagePayload cuerpo JSON común a los canales no-email.
type messagePayload struct {
	Kind      string         `json:"kind"`
	UserID    string         `json:"userId"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Severity  string         `json:"severity"`
	Alerts    []alertPayload `json:"alerts"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toPayload(n entity.Notification) messagePayload {
	alerts := make([]alertPayload, 0, len(n.Alerts))
	for _, a := range n.Alerts {
		alerts = append(alerts, alertPayload{
			ID:                          a.ID,
			BarID:                       a.BarID,
			ProductID:                   a.ProductID,
			ProductName:                 a.ProductName,
			Severity:                    string(a.Severity),
			Status:                      string(a.Status),
			StockPercentage:             a.StockPercentage,
			EstimatedMinutesToDepletion: a.EstimatedMinutesToDepletion,
		})
	}
	return messagePayload{
		Kind:      n.Kind,
		UserID:    n.Recipient.UserID,
		Subject:   n.Subject,
		Body:      n.Body,
		Severity:  string(n.Severity),
		Alerts:    alerts,
		CreatedAt: n.CreatedAt,
	}
}
