package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var _ stockalert.ChannelSender = (*LogSender)(nil)

// LogSender registra la notificación en el log. Se usa para los canales sin transporte
// configurado (desarrollo).
type LogSender struct {
	ch  entity.Channel
	log zerolog.Logger
}

// NewLogSender construye el sender para el canal indicado.
func NewLogSender(ch entity.Channel, log zerolog.Logger) *LogSender {
	return &LogSender{ch: ch, log: log.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) Channel() entity.Channel { return s.ch }

func (s *LogSender) Send(_ context.Context, n entity.Notification) error {
	s.log.Info().
		Str("channel", string(s.ch)).
		Str("kind", n.Kind).
		Str("user_id", n.Recipient.UserID).
		Str("severity", string(n.Severity)).
		Int("alerts", len(n.Alerts)).
		Int("attachments", len(n.Attachments)).
		Str("subject", n.Subject).
		Msg("notificación")
	return nil
}
