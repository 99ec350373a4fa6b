package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var _ stockalert.AlertStore = (*AlertRepo)(nil)

// AlertRepo historial de alertas de stock. Cada cambio de estado sobrescribe la fila.
type AlertRepo struct {
	q       Querier
	venueID string
}

// NewAlertRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAlertRepository(q Querier, venueID string) *AlertRepo {
	return &AlertRepo{q: q, venueID: venueID}
}

// SaveAlert inserta o actualiza la alerta por ID.
func (r *AlertRepo) SaveAlert(ctx context.Context, a entity.Alert) error {
	query := `
		INSERT INTO stock_alerts (
			id, venue_id, bar_id, product_id, alert_type, status, severity, message,
			stock_percentage, current_stock, eta_minutes, escalated, escalated_at,
			acknowledged_at, acknowledged_by, note, resolved_at, resolution, resolved_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			severity = EXCLUDED.severity,
			message = EXCLUDED.message,
			stock_percentage = EXCLUDED.stock_percentage,
			current_stock = EXCLUDED.current_stock,
			eta_minutes = EXCLUDED.eta_minutes,
			escalated = EXCLUDED.escalated,
			escalated_at = EXCLUDED.escalated_at,
			acknowledged_at = EXCLUDED.acknowledged_at,
			acknowledged_by = EXCLUDED.acknowledged_by,
			note = EXCLUDED.note,
			resolved_at = EXCLUDED.resolved_at,
			resolution = EXCLUDED.resolution,
			resolved_by = EXCLUDED.resolved_by,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		a.ID, r.venueID, a.BarID, a.ProductID, string(a.AlertType), string(a.Status), string(a.Severity), a.Message,
		a.StockPercentage, a.CurrentStock, a.EstimatedMinutesToDepletion, a.Escalated, a.EscalatedAt,
		a.AcknowledgedAt, a.AcknowledgedBy, a.Note, a.ResolvedAt, a.Resolution, a.ResolvedBy,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save stock alert: %w", err)
	}
	return nil
}

// ListByStatus historial de alertas del local por estado, más nuevas primero.
func (r *AlertRepo) ListByStatus(ctx context.Context, status entity.AlertStatus, limit int) ([]entity.Alert, error) {
	query := `
		SELECT id, bar_id, product_id, alert_type, status, severity, message, stock_percentage,
		       current_stock, eta_minutes, escalated, escalated_at, acknowledged_at, acknowledged_by,
		       note, resolved_at, resolution, resolved_by, created_at, updated_at
		FROM stock_alerts
		WHERE venue_id = $1 AND status = $2
		ORDER BY created_at DESC, id
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, r.venueID, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()

	var list []entity.Alert
	for rows.Next() {
		var a entity.Alert
		var alertType, st, sev string
		if err := rows.Scan(
			&a.ID, &a.BarID, &a.ProductID, &alertType, &st, &sev, &a.Message, &a.StockPercentage,
			&a.CurrentStock, &a.EstimatedMinutesToDepletion, &a.Escalated, &a.EscalatedAt,
			&a.AcknowledgedAt, &a.AcknowledgedBy, &a.Note, &a.ResolvedAt, &a.Resolution, &a.ResolvedBy,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		a.AlertType = entity.AlertType(alertType)
		a.Status = entity.AlertStatus(st)
		a.Severity = entity.Severity(sev)
		list = append(list, a)
	}
	return list, rows.Err()
}
