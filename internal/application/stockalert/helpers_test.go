package stockalert_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	domainstock "github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

var t0 = time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)

// fakeClock reloj manual compartido por los componentes bajo test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSender registra las notificaciones recibidas; puede fallar a demanda.
type fakeSender struct {
	ch   entity.Channel
	fail bool

	mu   sync.Mutex
	sent []entity.Notification
}

func (s *fakeSender) Channel() entity.Channel { return s.ch }

func (s *fakeSender) Send(_ context.Context, n entity.Notification) error {
	if s.fail {
		return errors.New("canal caído")
	}
	s.mu.Lock()
	s.sent = append(s.sent, n)
	s.mu.Unlock()
	return nil
}

func (s *fakeSender) Sent() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Notification(nil), s.sent...)
}

func (s *fakeSender) Kinds() []string {
	var out []string
	for _, n := range s.Sent() {
		out = append(out, n.Kind)
	}
	return out
}

func state(barID, productID string, sev entity.Severity, pct float64) entity.StockState {
	return entity.StockState{
		BarID:           barID,
		ProductID:       productID,
		ProductName:     "Producto " + productID,
		ProductType:     "licor",
		CurrentStock:    decimal.NewFromFloat(pct),
		Capacity:        decimal.NewFromInt(100),
		StockPercentage: pct,
		Severity:        sev,
		AlertType:       entity.AlertTypeLowStock,
		Breaching:       sev != entity.SeverityInfo,
		LastUpdatedAt:   t0,
	}
}

func stockOf(barID, productID string, current, capacity int64) entity.ProductStock {
	return entity.ProductStock{
		BarID:        barID,
		ProductID:    productID,
		ProductName:  "Producto " + productID,
		CategoryID:   "cat-licores",
		ProductType:  "licor",
		CurrentStock: decimal.NewFromInt(current),
		Capacity:     decimal.NewFromInt(capacity),
	}
}

func testConfig() entity.StockAlertConfig {
	cfg := domainstock.DefaultConfig("venue-1")
	cfg.DefaultThresholds = entity.Thresholds{Warning: 25, Critical: 10, Emergency: 5}
	return cfg
}
