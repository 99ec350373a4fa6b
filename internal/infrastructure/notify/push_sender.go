package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ stockalert.ChannelSender = (*PushSender)(nil)

// pushRequest cuerpo esperado por el gateway de push.
type pushRequest struct {
	Token    string         `json:"token"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Priority string         `json:"priority"`
	Data     messagePayload `json:"data"`
}

// PushSender canal push: entrega vía gateway HTTP (FCM/APNs detrás).
type PushSender struct {
	client *resty.Client
	path   string
}

// NewPushSender construye el cliente HTTP del gateway.
func NewPushSender(cfg config.PushConfig) *PushSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	path := cfg.Path
	if path == "" {
		path = "/v1/push"
	}
	return &PushSender{client: client, path: path}
}

func (s *PushSender) Channel() entity.Channel { return entity.ChannelPush }

// Send entrega la notificación al token del destinatario.
func (s *PushSender) Send(ctx context.Context, n entity.Notification) error {
	if n.Recipient.PushToken == "" {
		return fmt.Errorf("push %s: %w", n.Recipient.UserID, ErrNoPushToken)
	}
	priority := "normal"
	if n.Severity.IsCritical() {
		priority = "high"
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(pushRequest{
			Token:    n.Recipient.PushToken,
			Title:    n.Subject,
			Body:     n.Body,
			Priority: priority,
			Data:     toPayload(n),
		}).
		Post(s.path)
	if err != nil {
		return fmt.Errorf("push: enviar: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push: gateway respondió %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
