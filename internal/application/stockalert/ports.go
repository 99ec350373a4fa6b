package stockalert

import (
	"context"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// ProductSource entrega el stock actual de todos los productos monitoreados del local.
// Lo implementa postgres.BarStockRepo; en modo standalone el monitor usa su StockBook.
type ProductSource interface {
	ListProductStock(ctx context.Context) ([]entity.ProductStock, error)
}

// ProductSourceFunc adapta una función a ProductSource.
type ProductSourceFunc func(ctx context.Context) ([]entity.ProductStock, error)

func (f ProductSourceFunc) ListProductStock(ctx context.Context) ([]entity.ProductStock, error) {
	return f(ctx)
}

// AlertStore persistencia opcional del historial de alertas (best-effort).
type AlertStore interface {
	SaveAlert(ctx context.Context, alert entity.Alert) error
}

// ChannelSender entrega notificaciones por un canal (websocket, push, email).
type ChannelSender interface {
	Channel() entity.Channel
	Send(ctx context.Context, n entity.Notification) error
}

// DedupLedger decide si una notificación repetida para la misma alerta debe enviarse.
// Se suprime dentro de la ventana salvo que la severidad haya subido.
type DedupLedger interface {
	ShouldNotify(ctx context.Context, key string, severity entity.Severity, now time.Time, window time.Duration) (bool, error)
}

// ReportRenderer genera el reporte de reposición adjunto al digest (PDF).
type ReportRenderer interface {
	RenderRestockReport(ctx context.Context, venueID string, states []entity.StockState, recs []entity.ReplenishmentRecommendation, generatedAt time.Time) ([]byte, error)
}
