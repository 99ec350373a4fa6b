package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var _ stockalert.ProductSource = (*BarStockRepo)(nil)

// BarStockRepo lee el stock por barra del POS. Es la fuente de productos del monitor
// cuando hay base de datos.
type BarStockRepo struct {
	q       Querier
	venueID string
}

// NewBarStockRepository construye el adaptador. Acepta pool o tx (Querier).
func NewBarStockRepository(q Querier, venueID string) *BarStockRepo {
	return &BarStockRepo{q: q, venueID: venueID}
}

// ListProductStock devuelve el stock actual de todos los productos del local.
func (r *BarStockRepo) ListProductStock(ctx context.Context) ([]entity.ProductStock, error) {
	query := `
		SELECT b.id, b.name, p.id, p.name, COALESCE(p.category_id, ''), COALESCE(p.product_type, ''),
		       COALESCE(p.unit, ''), s.current_stock, s.capacity, s.updated_at
		FROM bar_stock s
		JOIN bars b ON b.id = s.bar_id
		JOIN products p ON p.id = s.product_id
		WHERE b.venue_id = $1
		ORDER BY b.id, p.id`
	rows, err := r.q.Query(ctx, query, r.venueID)
	if err != nil {
		return nil, fmt.Errorf("list bar stock: %w", err)
	}
	defer rows.Close()

	var list []entity.ProductStock
	for rows.Next() {
		var p entity.ProductStock
		if err := rows.Scan(
			&p.BarID, &p.BarName, &p.ProductID, &p.ProductName, &p.CategoryID, &p.ProductType,
			&p.Unit, &p.CurrentStock, &p.Capacity, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bar stock: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
