package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/postgres"
)

// fakeQuerier registra la última sentencia y devuelve filas preparadas.
type fakeQuerier struct {
	sql  string
	args []any
	rows *fakeRows
	err  error
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), q.err
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("no usado")
}

// fakeRows implementa pgx.Rows sobre valores en memoria. Scan asigna por reflexión.
type fakeRows struct {
	data   [][]any
	i      int
	closed bool
	err    error
}

func (r *fakeRows) Close() { r.closed = true }
func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.i-1], nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinos para %d columnas", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan columna %d: %s no asignable a %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

var ts = time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// BarStockRepo
// ──────────────────────────────────────────────────────────────────────────────

func TestBarStockRepo_ListProductStock(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{"bar-1", "Barra Principal", "p1", "Cerveza", "cat-cervezas", "cerveza", "botella", decimal.NewFromInt(8), decimal.NewFromInt(100), ts},
		{"bar-2", "Terraza", "p2", "Ron", "", "", "", decimal.RequireFromString("120.5"), decimal.NewFromInt(240), ts},
	}}
	q := &fakeQuerier{rows: rows}
	repo := postgres.NewBarStockRepository(q, "venue-1")

	list, err := repo.ListProductStock(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []any{"venue-1"}, q.args)
	assert.Contains(t, q.sql, "WHERE b.venue_id = $1")
	assert.True(t, rows.closed)
	require.Len(t, list, 2)
	assert.Equal(t, entity.StockKey{BarID: "bar-1", ProductID: "p1"}, list[0].Key())
	assert.Equal(t, "Barra Principal", list[0].BarName)
	assert.Equal(t, "botella", list[0].Unit)
	assert.True(t, list[0].CurrentStock.Equal(decimal.NewFromInt(8)))
	assert.True(t, list[1].CurrentStock.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, ts, list[1].UpdatedAt)
}

func TestBarStockRepo_ErrorDeConsulta(t *testing.T) {
	repo := postgres.NewBarStockRepository(&fakeQuerier{err: errors.New("conn refused")}, "venue-1")

	_, err := repo.ListProductStock(context.Background())
	assert.ErrorContains(t, err, "list bar stock")
}

func TestBarStockRepo_ErrorDeScan(t *testing.T) {
	rows := &fakeRows{data: [][]any{{"bar-1", "Barra"}}}
	repo := postgres.NewBarStockRepository(&fakeQuerier{rows: rows}, "venue-1")

	_, err := repo.ListProductStock(context.Background())
	assert.ErrorContains(t, err, "scan bar stock")
	assert.True(t, rows.closed)
}

// ──────────────────────────────────────────────────────────────────────────────
// AlertRepo
// ──────────────────────────────────────────────────────────────────────────────

func TestAlertRepo_SaveAlertOrdenDeArgumentos(t *testing.T) {
	eta := 42.0
	ack := ts.Add(5 * time.Minute)
	a := entity.Alert{
		ID: "a1", BarID: "bar-1", ProductID: "p1",
		AlertType: entity.AlertTypeLowStock, Status: entity.AlertStatusAcknowledged, Severity: entity.SeverityCritical,
		Message: "stock bajo", StockPercentage: 8, CurrentStock: 8, EstimatedMinutesToDepletion: &eta,
		AcknowledgedAt: &ack, AcknowledgedBy: "m1", Note: "en camino",
		CreatedAt: ts, UpdatedAt: ack,
	}
	q := &fakeQuerier{}
	repo := postgres.NewAlertRepository(q, "venue-1")

	require.NoError(t, repo.SaveAlert(context.Background(), a))

	assert.Contains(t, q.sql, "ON CONFLICT (id) DO UPDATE")
	require.Len(t, q.args, 21)
	assert.Equal(t, []any{"a1", "venue-1", "bar-1", "p1", "low_stock", "acknowledged", "critical", "stock bajo"}, q.args[:8])
	assert.Equal(t, 8.0, q.args[8])
	assert.Equal(t, &eta, q.args[10])
	assert.Equal(t, false, q.args[11])
	assert.Equal(t, &ack, q.args[13])
	assert.Equal(t, "m1", q.args[14])
	assert.Equal(t, "en camino", q.args[15])
	assert.Equal(t, ts, q.args[19])
	assert.Equal(t, ack, q.args[20])
}

func TestAlertRepo_SaveAlertEnvuelveError(t *testing.T) {
	repo := postgres.NewAlertRepository(&fakeQuerier{err: errors.New("timeout")}, "venue-1")

	err := repo.SaveAlert(context.Background(), entity.Alert{ID: "a1"})
	assert.ErrorContains(t, err, "save stock alert: timeout")
}

func TestAlertRepo_ListByStatus(t *testing.T) {
	eta := 12.5
	resolved := ts.Add(time.Hour)
	rows := &fakeRows{data: [][]any{
		{"a2", "bar-1", "p2", "low_stock", "resolved", "emergency", "agotándose", 3.0,
			3.0, &eta, true, &ts, nil, "", "", &resolved, "repuesto", "m1", ts, resolved},
	}}
	q := &fakeQuerier{rows: rows}
	repo := postgres.NewAlertRepository(q, "venue-1")

	list, err := repo.ListByStatus(context.Background(), entity.AlertStatusResolved, 50)

	require.NoError(t, err)
	assert.Equal(t, []any{"venue-1", "resolved", 50}, q.args)
	require.Len(t, list, 1)
	a := list[0]
	assert.Equal(t, entity.AlertTypeLowStock, a.AlertType)
	assert.Equal(t, entity.AlertStatusResolved, a.Status)
	assert.Equal(t, entity.SeverityEmergency, a.Severity)
	require.NotNil(t, a.EstimatedMinutesToDepletion)
	assert.Equal(t, 12.5, *a.EstimatedMinutesToDepletion)
	assert.True(t, a.Escalated)
	assert.Nil(t, a.AcknowledgedAt)
	require.NotNil(t, a.ResolvedAt)
	assert.Equal(t, "repuesto", a.Resolution)
	assert.Equal(t, "m1", a.ResolvedBy)
}

func TestAlertRepo_ListByStatusPropagaErrorDeFilas(t *testing.T) {
	rows := &fakeRows{err: errors.New("conexión perdida")}
	repo := postgres.NewAlertRepository(&fakeQuerier{rows: rows}, "venue-1")

	_, err := repo.ListByStatus(context.Background(), entity.AlertStatusActive, 10)
	assert.ErrorContains(t, err, "conexión perdida")
}
