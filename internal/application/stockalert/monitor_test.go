package stockalert_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	domainstock "github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

type monitorFixture struct {
	*notifFixture
	velocity *domainstock.VelocityTracker
	monitor  *stockalert.Monitor
}

func newMonitorFixture(t *testing.T, mutate func(*entity.StockAlertConfig)) *monitorFixture {
	t.Helper()
	nf := newNotifFixture(t, mutate)
	vel := domainstock.NewVelocityTracker(domainstock.DefaultVelocityWindow).WithClock(nf.clk.Now)
	m := stockalert.NewMonitor(nf.configs, nf.engine, nf.orch, vel, zerolog.Nop())
	m.SetClock(nf.clk.Now)
	t.Cleanup(m.Stop)
	return &monitorFixture{notifFixture: nf, velocity: vel, monitor: m}
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación forzada
// ──────────────────────────────────────────────────────────────────────────────

func TestMonitor_ForceStockCheckSinFaltantesNoCreaAlertas(t *testing.T) {
	f := newMonitorFixture(t, nil)

	res, err := f.monitor.ForceStockCheck(context.Background(), []entity.ProductStock{
		stockOf("bar-1", "p1", 80, 100),
		stockOf("bar-1", "p2", 50, 100),
	})

	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	assert.Empty(t, res.States)
	assert.Equal(t, 2, res.Evaluated)
	assert.Equal(t, 0, f.engine.Len())
}

func TestMonitor_ForceStockCheckCritico(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.register(t, "m1", entity.RoleManager, entity.ChannelPush)

	res, err := f.monitor.ForceStockCheck(context.Background(), []entity.ProductStock{stockOf("bar-1", "p1", 8, 100)})

	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	a := res.Alerts[0]
	assert.Equal(t, 8.0, a.StockPercentage)
	assert.Equal(t, entity.SeverityCritical, a.Severity)
	assert.Equal(t, entity.AlertStatusActive, a.Status)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, entity.PriorityRestockNow, res.Recommendations[0].Priority)
	assert.Equal(t, 1, res.Notifications.Sent)
	assert.Len(t, f.push.Sent(), 1)
}

func TestMonitor_AlertaReconocidaNoSeRenotifica(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.register(t, "m1", entity.RoleManager, entity.ChannelPush)
	ctx := context.Background()

	res, err := f.monitor.ForceStockCheck(ctx, []entity.ProductStock{stockOf("bar-1", "p1", 8, 100)})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	_, err = f.monitor.AcknowledgeAlert(ctx, res.Alerts[0].ID, "m1", "")
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	res, err = f.monitor.ForceStockCheck(ctx, nil)
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, stockalert.BatchSummary{}, res.Notifications)
	assert.Len(t, f.push.Sent(), 1)

	// una subida de severidad sí se notifica
	res, err = f.monitor.ForceStockCheck(ctx, []entity.ProductStock{stockOf("bar-1", "p1", 2, 100)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notifications.Sent)
	assert.Len(t, f.push.Sent(), 2)
}

func TestMonitor_ForceStockCheckSinConfiguracion(t *testing.T) {
	configs := stockalert.NewConfigStore("venue-1")
	engine := stockalert.NewAlertEngine()
	orch := stockalert.NewNotificationOrchestrator(engine, configs, stockalert.NewRecipientRegistry(), zerolog.Nop())
	m := stockalert.NewMonitor(configs, engine, orch, domainstock.NewVelocityTracker(0), zerolog.Nop())

	_, err := m.ForceStockCheck(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrConfigNotInitialized)
	assert.ErrorIs(t, m.Start(context.Background(), nil), domain.ErrConfigNotInitialized)
	assert.False(t, m.Running())
}

func TestMonitor_RecuperacionResuelveAlerta(t *testing.T) {
	f := newMonitorFixture(t, nil)
	ctx := context.Background()

	res, err := f.monitor.ForceStockCheck(ctx, []entity.ProductStock{stockOf("bar-1", "p1", 8, 100)})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)

	res, err = f.monitor.ForceStockCheck(ctx, []entity.ProductStock{stockOf("bar-1", "p1", 90, 100)})
	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assert.Empty(t, f.engine.OpenAlerts())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo Start/Stop
// ──────────────────────────────────────────────────────────────────────────────

func TestMonitor_StartDeshabilitadoEsNoOp(t *testing.T) {
	f := newMonitorFixture(t, func(c *entity.StockAlertConfig) { c.Enabled = false })

	require.NoError(t, f.monitor.Start(context.Background(), nil))
	assert.False(t, f.monitor.Running())
}

func TestMonitor_StartStopIdempotente(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.monitor.TrackProducts(stockOf("bar-1", "p1", 8, 100))

	require.NoError(t, f.monitor.Start(context.Background(), nil))
	require.NoError(t, f.monitor.Start(context.Background(), nil))
	f.monitor.Wait()
	assert.True(t, f.monitor.Running())

	st := f.monitor.GetMonitorStatus()
	assert.True(t, st.Running)
	require.NotNil(t, st.LastCheckAt)
	require.NotNil(t, st.NextCheckAt)
	assert.Equal(t, t0.Add(15*time.Minute), *st.NextCheckAt)
	assert.Equal(t, 1, st.AlertCount)
	assert.Equal(t, 1, st.CriticalCount)
	assert.Equal(t, 1, f.engine.Len())

	f.monitor.Stop()
	f.monitor.Stop()
	assert.False(t, f.monitor.Running())
	assert.Nil(t, f.monitor.GetMonitorStatus().NextCheckAt)
}

func TestMonitor_StartUsaLaFuenteDeProductos(t *testing.T) {
	f := newMonitorFixture(t, nil)
	src := stockalert.ProductSourceFunc(func(context.Context) ([]entity.ProductStock, error) {
		return []entity.ProductStock{stockOf("bar-9", "p9", 3, 100)}, nil
	})

	require.NoError(t, f.monitor.Start(context.Background(), src))
	f.monitor.Wait()

	assert.Equal(t, 1, f.monitor.Book().Len())
	require.Len(t, f.monitor.LowStock(0), 1)
	assert.Equal(t, entity.SeverityEmergency, f.monitor.LowStock(0)[0].Severity)
}

func TestMonitor_DeshabilitarDetieneElMonitoreo(t *testing.T) {
	f := newMonitorFixture(t, nil)
	require.NoError(t, f.monitor.Start(context.Background(), nil))

	enabled := false
	_, err := f.monitor.PatchConfig(entity.StockAlertConfigPatch{Enabled: &enabled}, "admin-1")
	require.NoError(t, err)
	f.monitor.Wait()
	assert.False(t, f.monitor.Running())
}

// blockingSender retiene cada envío hasta release o hasta que venza el contexto.
type blockingSender struct {
	ch      entity.Channel
	started chan struct{}
	release chan struct{}
}

func newBlockingSender(ch entity.Channel) *blockingSender {
	return &blockingSender{ch: ch, started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (s *blockingSender) Channel() entity.Channel { return s.ch }

func (s *blockingSender) Send(ctx context.Context, _ entity.Notification) error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func returnsWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("la llamada no volvió en %s", d)
	}
}

func TestMonitor_StartYCambioDeIntervaloNoEsperanLosEnvios(t *testing.T) {
	f := newMonitorFixture(t, nil)
	blocking := newBlockingSender(entity.ChannelPush)
	f.orch.RegisterSender(blocking)
	f.register(t, "m1", entity.RoleManager, entity.ChannelPush)
	f.monitor.TrackProducts(stockOf("bar-1", "p1", 8, 100))

	returnsWithin(t, time.Second, func() {
		assert.NoError(t, f.monitor.Start(context.Background(), nil))
	})
	select {
	case <-blocking.started:
	case <-time.After(time.Second):
		t.Fatal("la verificación inicial no despachó la alerta crítica")
	}

	interval := 5
	returnsWithin(t, time.Second, func() {
		_, err := f.monitor.PatchConfig(entity.StockAlertConfigPatch{
			Monitoring: &entity.MonitoringPolicyPatch{CheckIntervalMinutes: &interval},
		}, "admin-1")
		assert.NoError(t, err)
	})

	close(blocking.release)
	f.monitor.Wait()
	st := f.monitor.GetMonitorStatus()
	assert.True(t, st.Running)
	assert.Equal(t, 5, st.CheckIntervalMinutes)
}

func TestMonitor_EventosConcurrentesConStartStop(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.register(t, "m1", entity.RoleManager, entity.ChannelPush)
	f.monitor.TrackProducts(stockOf("bar-1", "p1", 50, 100))

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_ = f.monitor.Start(context.Background(), nil)
			case 1:
				f.monitor.Stop()
			default:
				f.monitor.OnInventoryChanged("bar-1", "p1", decimal.NewFromInt(int64(i%20)))
			}
		}(i)
	}
	wg.Wait()
	f.monitor.Stop()
	f.monitor.Wait()

	assert.False(t, f.monitor.Running())
	assert.LessOrEqual(t, len(f.engine.OpenAlerts()), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos del POS
// ──────────────────────────────────────────────────────────────────────────────

func TestMonitor_VentasActualizanStockYVelocidad(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.monitor.TrackProducts(stockOf("bar-1", "p1", 30, 100))

	for i := 0; i < 3; i++ {
		f.monitor.OnSaleEvent(entity.SaleEvent{BarID: "bar-1", ProductID: "p1", Quantity: decimal.NewFromInt(5), OccurredAt: t0})
	}
	f.monitor.Wait()

	p, ok := f.monitor.Book().Get(entity.StockKey{BarID: "bar-1", ProductID: "p1"})
	require.True(t, ok)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(15)))

	rate := f.velocity.Rate("bar-1", "p1", t0)
	assert.Greater(t, rate, 0.0)

	states := f.monitor.CurrentStock("bar-1")
	require.Len(t, states, 1)
	assert.Equal(t, entity.SeverityWarning, states[0].Severity)
	require.NotNil(t, states[0].EstimatedMinutesToDepletion)
	assert.InDelta(t, 15/rate, *states[0].EstimatedMinutesToDepletion, 1e-9)

	require.Len(t, f.engine.OpenAlerts(), 1)
	assert.Len(t, f.orch.PendingDigest(), 1)
	assert.Len(t, f.monitor.Depleting(0), 1)
}

func TestMonitor_VentaDeProductoNoSeguidoNoRegistraVelocidad(t *testing.T) {
	f := newMonitorFixture(t, nil)

	for i := 0; i < 50; i++ {
		f.monitor.OnSaleEvent(entity.SaleEvent{BarID: "bar-1", ProductID: fmt.Sprintf("x%d", i), Quantity: decimal.NewFromInt(1), OccurredAt: t0})
	}
	f.monitor.Wait()

	assert.Equal(t, 0, f.velocity.Len())
	assert.Equal(t, 0, f.monitor.Book().Len())
}

func TestMonitor_ApplyStockUpdate(t *testing.T) {
	f := newMonitorFixture(t, nil)
	f.monitor.TrackProducts(stockOf("bar-1", "p1", 40, 100))

	_, err := f.monitor.ApplyStockUpdate(stockalert.StockUpdate{BarID: "bar-1", ProductID: "nope", NewStock: decimal.NewFromInt(1), ChangeType: entity.StockChangeSale})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.monitor.ApplyStockUpdate(stockalert.StockUpdate{BarID: "bar-1", ProductID: "p1", NewStock: decimal.NewFromInt(1), ChangeType: "robo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	prev := decimal.NewFromInt(40)
	p, err := f.monitor.ApplyStockUpdate(stockalert.StockUpdate{
		BarID: "bar-1", ProductID: "p1", PreviousStock: &prev, NewStock: decimal.NewFromInt(4), ChangeType: entity.StockChangeSale,
	})
	require.NoError(t, err)
	f.monitor.Wait()

	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(4)))
	assert.Greater(t, f.velocity.Rate("bar-1", "p1", t0), 0.0)
	open := f.engine.OpenAlerts()
	require.Len(t, open, 1)
	assert.Equal(t, entity.SeverityEmergency, open[0].Severity)
}

func TestMonitor_RestockResuelveAlertas(t *testing.T) {
	f := newMonitorFixture(t, nil)
	_, err := f.monitor.ForceStockCheck(context.Background(), []entity.ProductStock{stockOf("bar-1", "p1", 8, 100)})
	require.NoError(t, err)
	require.Len(t, f.engine.OpenAlerts(), 1)

	_, err = f.monitor.Restock("bar-1", []stockalert.RestockItem{{ProductID: "otro", Quantity: decimal.NewFromInt(1)}}, "staff-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := f.monitor.Restock("bar-1", []stockalert.RestockItem{{ProductID: "p1", Quantity: decimal.NewFromInt(60)}}, "staff-1")
	require.NoError(t, err)
	f.monitor.Wait()

	require.Len(t, updated, 1)
	assert.True(t, updated[0].CurrentStock.Equal(decimal.NewFromInt(68)))
	assert.Empty(t, f.engine.OpenAlerts())
	assert.Empty(t, f.monitor.LowStock(0))
}

func TestMonitor_CambioDeVentanaDeVelocidad(t *testing.T) {
	f := newMonitorFixture(t, nil)
	window := 30
	_, err := f.monitor.PatchConfig(entity.StockAlertConfigPatch{
		Monitoring: &entity.MonitoringPolicyPatch{VelocityWindowMinutes: &window},
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, f.velocity.Window())
}

// ──────────────────────────────────────────────────────────────────────────────
// Comandos sobre alertas con persistencia
// ──────────────────────────────────────────────────────────────────────────────

type recordingStore struct {
	mu    sync.Mutex
	saved []entity.Alert
}

func (s *recordingStore) SaveAlert(_ context.Context, a entity.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, a)
	return nil
}

func (s *recordingStore) statuses() []entity.AlertStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.AlertStatus, 0, len(s.saved))
	for _, a := range s.saved {
		out = append(out, a.Status)
	}
	return out
}

func TestMonitor_ComandosDeAlertaSePersisten(t *testing.T) {
	f := newMonitorFixture(t, nil)
	store := &recordingStore{}
	f.monitor.SetAlertStore(store)
	ctx := context.Background()

	res, err := f.monitor.ForceStockCheck(ctx, []entity.ProductStock{
		stockOf("bar-1", "p1", 8, 100),
		stockOf("bar-1", "p2", 20, 100),
	})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 2)
	id1, id2 := res.Alerts[0].ID, res.Alerts[1].ID

	a, err := f.monitor.AcknowledgeAlert(ctx, id1, "u1", "en camino")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusAcknowledged, a.Status)

	_, err = f.monitor.AcknowledgeAlert(ctx, id1, "u1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bulk := f.monitor.BulkAcknowledge(ctx, []string{id1, id2}, "u2")
	require.Len(t, bulk, 1)
	assert.Equal(t, id2, bulk[0].ID)

	a, err = f.monitor.ResolveAlert(ctx, id1, "repuesto", "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusResolved, a.Status)

	_, err = f.monitor.ResolveAlert(ctx, "no-existe", "x", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []entity.AlertStatus{
		entity.AlertStatusActive, entity.AlertStatusActive,
		entity.AlertStatusAcknowledged, entity.AlertStatusAcknowledged,
		entity.AlertStatusResolved,
	}, store.statuses())
}
