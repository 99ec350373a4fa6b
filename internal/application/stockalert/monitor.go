package stockalert

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

const resolutionRecovered = "stock recuperado sobre el umbral de advertencia"

// CheckResult resultado de una verificación (completa o por evento).
type CheckResult struct {
	CheckedAt       time.Time
	Evaluated       int
	States          []entity.StockState
	Recommendations []entity.ReplenishmentRecommendation
	Alerts          []entity.Alert
	Resolved        []entity.Alert
	Notifications   BatchSummary

	toNotify []entity.Alert
}

// MonitorStatus estado del planificador.
type MonitorStatus struct {
	Running                bool
	LastCheckAt            *time.Time
	NextCheckAt            *time.Time
	AlertCount             int
	CriticalCount          int
	TrackedProducts        int
	PendingDigest          int
	CheckIntervalMinutes   int
	DigestIntervalMinutes  int
	EscalationCheckMinutes int
}

// StockUpdate cambio de stock reportado por el POS (POST /stock/update).
type StockUpdate struct {
	BarID         string
	ProductID     string
	PreviousStock *decimal.Decimal
	NewStock      decimal.Decimal
	ChangeType    string
	Quantity      decimal.Decimal
}

// RestockItem línea de reposición.
type RestockItem struct {
	ProductID string
	Quantity  decimal.Decimal
}

type intervals struct {
	check, digest, escalation int
	digestEnabled             bool
}

// Monitor orquesta evaluador, motor de alertas y notificaciones: reacciona a eventos del POS
// y corre tres timers (verificación, digest, escalamiento) como red de seguridad.
type Monitor struct {
	configs   *ConfigStore
	engine    *AlertEngine
	notifier  *NotificationOrchestrator
	velocity  *stockalert.VelocityTracker
	evaluator *stockalert.Evaluator
	book      *StockBook
	store     AlertStore
	log       zerolog.Logger
	now       func() time.Time
	retention time.Duration

	lifeMu sync.Mutex // serializa Start/Stop

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	source      ProductSource
	active      intervals
	lastCheckAt time.Time
	nextCheckAt time.Time

	loops    sync.WaitGroup
	inflight *tracker // verificación inicial y despachos de eventos
	restarts *tracker // reinicios por cambio de configuración

	stateMu sync.RWMutex
	states  map[entity.StockKey]entity.StockState
	recs    map[entity.StockKey]entity.ReplenishmentRecommendation
}

// NewMonitor construye el monitor y se suscribe a los cambios de configuración.
func NewMonitor(
	configs *ConfigStore,
	engine *AlertEngine,
	notifier *NotificationOrchestrator,
	velocity *stockalert.VelocityTracker,
	log zerolog.Logger,
) *Monitor {
	m := &Monitor{
		configs:   configs,
		engine:    engine,
		notifier:  notifier,
		velocity:  velocity,
		evaluator: stockalert.NewEvaluator(velocity),
		book:      NewStockBook(),
		log:       log.With().Str("component", "stock_monitor").Logger(),
		now:       time.Now,
		inflight:  newTracker(),
		restarts:  newTracker(),
		states:    make(map[entity.StockKey]entity.StockState),
		recs:      make(map[entity.StockKey]entity.ReplenishmentRecommendation),
	}
	notifier.setReportSource(m.ReportSnapshot)
	configs.OnChange(m.onConfigChange)
	return m
}

// SetAlertStore habilita la persistencia best-effort de alertas.
func (m *Monitor) SetAlertStore(s AlertStore) { m.store = s }

// SetRetention define cuánto se conservan en memoria las alertas resueltas (0 = siempre).
func (m *Monitor) SetRetention(d time.Duration) { m.retention = d }

// SetClock reemplaza el reloj (tests).
func (m *Monitor) SetClock(now func() time.Time) { m.now = now }

// Book expone el libro de stock (seed y fuente standalone).
func (m *Monitor) Book() *StockBook { return m.book }

// TrackProducts agrega o reemplaza productos seguidos.
func (m *Monitor) TrackProducts(products ...entity.ProductStock) { m.book.Upsert(products...) }

// GetConfig devuelve la configuración vigente.
func (m *Monitor) GetConfig() (entity.StockAlertConfig, error) { return m.configs.Get() }

// SetConfig reemplaza la configuración.
func (m *Monitor) SetConfig(cfg entity.StockAlertConfig, userID string) (entity.StockAlertConfig, error) {
	return m.configs.Replace(cfg, userID)
}

// PatchConfig actualiza parcialmente la configuración.
func (m *Monitor) PatchConfig(p entity.StockAlertConfigPatch, userID string) (entity.StockAlertConfig, error) {
	return m.configs.Patch(p, userID)
}

// Start arranca el monitoreo periódico. Si ya corría, lo reinicia. Con la configuración
// deshabilitada no hace nada. La verificación inicial corre en segundo plano.
func (m *Monitor) Start(ctx context.Context, source ProductSource) error {
	cfg, err := m.configs.Get()
	if err != nil {
		return err
	}
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.stopLocked()
	if !cfg.Enabled {
		m.log.Info().Str("venue_id", cfg.VenueID).Msg("monitoreo deshabilitado por configuración")
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	iv := intervalsOf(cfg)
	m.mu.Lock()
	m.running = true
	m.cancel = cancel
	m.source = source
	m.active = iv
	m.mu.Unlock()

	m.inflight.Go(func() {
		if _, err := m.runCheck(runCtx, nil); err != nil {
			m.log.Warn().Err(err).Msg("verificación inicial falló")
		}
	})

	m.loops.Add(2)
	go m.loop(runCtx, minutes(iv.check), func(ctx context.Context) {
		if _, err := m.runCheck(ctx, nil); err != nil {
			m.log.Warn().Err(err).Msg("verificación periódica falló")
		}
	})
	go m.loop(runCtx, minutes(iv.escalation), func(ctx context.Context) {
		m.persist(ctx, m.notifier.CheckForEscalation(ctx))
	})
	if iv.digestEnabled {
		m.loops.Add(1)
		go m.loop(runCtx, minutes(iv.digest), func(ctx context.Context) {
			m.notifier.FlushDigest(ctx)
		})
	}

	m.log.Info().
		Str("venue_id", cfg.VenueID).
		Int("check_minutes", iv.check).
		Int("digest_minutes", iv.digest).
		Int("escalation_minutes", iv.escalation).
		Msg("monitoreo de stock iniciado")
	return nil
}

// Stop detiene los timers y espera los callbacks en curso. Idempotente.
func (m *Monitor) Stop() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	if m.stopLocked() {
		m.log.Info().Msg("monitoreo de stock detenido")
	}
}

func (m *Monitor) stopLocked() bool {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return false
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.nextCheckAt = time.Time{}
	m.mu.Unlock()

	cancel()
	m.loops.Wait()
	m.inflight.Wait()
	return true
}

// Running indica si los timers están activos.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Wait bloquea hasta que terminen los reinicios, la verificación inicial y los despachos
// asíncronos en curso.
func (m *Monitor) Wait() {
	m.restarts.Wait()
	m.inflight.Wait()
}

func (m *Monitor) loop(ctx context.Context, every time.Duration, fn func(context.Context)) {
	defer m.loops.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}

// ForceStockCheck verificación completa síncrona. Si products es nil se usan la fuente
// configurada o el libro de stock.
func (m *Monitor) ForceStockCheck(ctx context.Context, products []entity.ProductStock) (CheckResult, error) {
	if products != nil {
		m.book.Upsert(products...)
	}
	return m.runCheck(ctx, products)
}

func (m *Monitor) runCheck(ctx context.Context, products []entity.ProductStock) (CheckResult, error) {
	cfg, err := m.configs.Get()
	if err != nil {
		return CheckResult{}, err
	}
	if products == nil {
		products, err = m.loadProducts(ctx)
		if err != nil {
			return CheckResult{}, err
		}
	}

	now := m.now()
	if n := m.velocity.Sweep(now); n > 0 {
		m.log.Debug().Int("keys", n).Msg("muestras de velocidad vencidas eliminadas")
	}
	res := m.evaluator.EvaluateAll(products, cfg, now)
	m.replaceCache(res)

	out := m.apply(ctx, res, now)
	out.Evaluated = len(products)
	out.Notifications = m.notifier.ProcessBatchAlerts(ctx, out.toNotify, recMap(res.Recommendations))

	if m.retention > 0 {
		if n := m.engine.PruneResolved(now.Add(-m.retention)); n > 0 {
			m.log.Debug().Int("alerts", n).Msg("alertas resueltas depuradas")
		}
	}

	m.mu.Lock()
	m.lastCheckAt = now
	if m.running {
		m.nextCheckAt = now.Add(minutes(m.active.check))
	}
	m.mu.Unlock()

	m.log.Debug().
		Int("evaluated", out.Evaluated).
		Int("breaching", len(out.States)).
		Int("resolved", len(out.Resolved)).
		Msg("verificación de stock completada")
	return out, nil
}

// apply dispara alertas para los estados en falta y resuelve las de productos recuperados.
func (m *Monitor) apply(ctx context.Context, res stockalert.Result, now time.Time) CheckResult {
	out := CheckResult{
		CheckedAt:       now,
		States:          res.States,
		Recommendations: res.Recommendations,
		Alerts:          []entity.Alert{},
		Resolved:        []entity.Alert{},
	}
	for _, s := range res.All {
		if s.Breaching {
			tr := m.engine.Trigger(s)
			out.Alerts = append(out.Alerts, tr.Alert)
			if notifiable(tr) {
				out.toNotify = append(out.toNotify, tr.Alert)
			}
			continue
		}
		out.Resolved = append(out.Resolved, m.engine.AutoResolve(s.BarID, s.ProductID, resolutionRecovered)...)
	}
	m.persist(ctx, out.Alerts)
	m.persist(ctx, out.Resolved)
	return out
}

func (m *Monitor) loadProducts(ctx context.Context) ([]entity.ProductStock, error) {
	m.mu.Lock()
	src := m.source
	m.mu.Unlock()
	if src == nil {
		return m.book.List(), nil
	}
	products, err := src.ListProductStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar stock: %w", err)
	}
	m.book.Upsert(products...)
	return products, nil
}

// OnSaleEvent registra una venta: actualiza stock y velocidad y reevalúa solo ese producto.
// Las notificaciones se despachan en segundo plano.
func (m *Monitor) OnSaleEvent(sale entity.SaleEvent) {
	at := sale.OccurredAt
	if at.IsZero() {
		at = m.now()
	}
	key := entity.StockKey{BarID: sale.BarID, ProductID: sale.ProductID}
	if _, ok := m.book.ApplySale(key, sale.Quantity, sale.NewStock, at); !ok {
		m.log.Debug().Str("bar_id", sale.BarID).Str("product_id", sale.ProductID).Msg("venta de producto no seguido")
		return
	}
	m.velocity.RecordSaleAt(sale.ProductID, sale.Quantity.InexactFloat64(), sale.BarID, at)
	m.evaluateAsync(key)
}

// OnInventoryChanged fija el stock de un producto (ajuste, merma, conteo) y lo reevalúa.
func (m *Monitor) OnInventoryChanged(barID, productID string, newStock decimal.Decimal) {
	key := entity.StockKey{BarID: barID, ProductID: productID}
	if _, ok := m.book.SetStock(key, newStock, m.now()); !ok {
		return
	}
	m.evaluateAsync(key)
}

// ApplyStockUpdate aplica un cambio de stock informado por API. ErrNotFound si el producto
// no está seguido.
func (m *Monitor) ApplyStockUpdate(u StockUpdate) (entity.ProductStock, error) {
	if !validChangeType(u.ChangeType) {
		return entity.ProductStock{}, fmt.Errorf("%w: changeType %q", domain.ErrInvalidInput, u.ChangeType)
	}
	if u.NewStock.IsNegative() {
		return entity.ProductStock{}, fmt.Errorf("%w: newStock negativo", domain.ErrInvalidInput)
	}
	key := entity.StockKey{BarID: u.BarID, ProductID: u.ProductID}
	now := m.now()
	p, ok := m.book.SetStock(key, u.NewStock, now)
	if !ok {
		return entity.ProductStock{}, domain.ErrNotFound
	}

	if u.ChangeType == entity.StockChangeSale {
		sold := u.Quantity
		if !sold.IsPositive() && u.PreviousStock != nil {
			sold = u.PreviousStock.Sub(u.NewStock)
		}
		m.velocity.RecordSaleAt(u.ProductID, sold.InexactFloat64(), u.BarID, now)
	}
	m.evaluateAsync(key)
	return p, nil
}

// Restock suma cantidades repuestas en una barra. Devuelve los productos actualizados;
// ErrNotFound si ninguno está seguido.
func (m *Monitor) Restock(barID string, items []RestockItem, staffID string) ([]entity.ProductStock, error) {
	now := m.now()
	updated := make([]entity.ProductStock, 0, len(items))
	keys := make([]entity.StockKey, 0, len(items))
	for _, it := range items {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad de reposición debe ser positiva (%s)", domain.ErrInvalidInput, it.ProductID)
		}
	}
	for _, it := range items {
		key := entity.StockKey{BarID: barID, ProductID: it.ProductID}
		p, ok := m.book.AddStock(key, it.Quantity, now)
		if !ok {
			m.log.Warn().Str("bar_id", barID).Str("product_id", it.ProductID).Msg("reposición de producto no seguido")
			continue
		}
		updated = append(updated, p)
		keys = append(keys, key)
	}
	if len(updated) == 0 {
		return nil, domain.ErrNotFound
	}
	m.log.Info().Str("bar_id", barID).Str("staff_id", staffID).Int("items", len(updated)).Msg("reposición registrada")
	m.evaluateAsync(keys...)
	return updated, nil
}

// evaluateAsync reevalúa las claves de forma síncrona (estado y alertas quedan visibles al
// volver) y despacha las notificaciones en segundo plano.
func (m *Monitor) evaluateAsync(keys ...entity.StockKey) {
	cfg, err := m.configs.Get()
	if err != nil || !cfg.Enabled {
		return
	}
	products := make([]entity.ProductStock, 0, len(keys))
	for _, k := range keys {
		if p, ok := m.book.Get(k); ok {
			products = append(products, p)
		}
	}
	now := m.now()
	res := m.evaluator.EvaluateSubset(products, keys, cfg, now)
	m.mergeCache(keys, res)

	ctx := context.Background()
	out := m.apply(ctx, res, now)
	alerts := out.toNotify
	if len(alerts) == 0 {
		return
	}
	recs := recMap(res.Recommendations)
	m.inflight.Go(func() {
		m.notifier.ProcessBatchAlerts(ctx, alerts, recs)
	})
}

func (m *Monitor) persist(ctx context.Context, alerts []entity.Alert) {
	if m.store == nil {
		return
	}
	for _, a := range alerts {
		if err := m.store.SaveAlert(ctx, a); err != nil {
			m.log.Warn().Err(err).Str("alert_id", a.ID).Msg("no se pudo persistir la alerta")
		}
	}
}

// AcknowledgeAlert reconoce una alerta activa y la persiste. ErrNotFound si no existe o no
// está activa.
func (m *Monitor) AcknowledgeAlert(ctx context.Context, alertID, userID, note string) (entity.Alert, error) {
	a, ok := m.engine.Acknowledge(alertID, userID, note)
	if !ok {
		return entity.Alert{}, domain.ErrNotFound
	}
	m.persist(ctx, []entity.Alert{a})
	return a, nil
}

// ResolveAlert resuelve una alerta abierta y la persiste. ErrNotFound si no existe o ya
// estaba resuelta.
func (m *Monitor) ResolveAlert(ctx context.Context, alertID, resolution, userID string) (entity.Alert, error) {
	a, ok := m.engine.Resolve(alertID, resolution, userID)
	if !ok {
		return entity.Alert{}, domain.ErrNotFound
	}
	m.persist(ctx, []entity.Alert{a})
	return a, nil
}

// BulkAcknowledge reconoce las alertas activas de la lista; devuelve solo las que cambiaron.
func (m *Monitor) BulkAcknowledge(ctx context.Context, alertIDs []string, userID string) []entity.Alert {
	out := m.engine.BulkAcknowledge(alertIDs, userID)
	m.persist(ctx, out)
	return out
}

// GetMonitorStatus estado actual del planificador.
func (m *Monitor) GetMonitorStatus() MonitorStatus {
	open := m.engine.OpenAlerts()
	st := MonitorStatus{
		AlertCount:      len(open),
		TrackedProducts: m.book.Len(),
		PendingDigest:   len(m.notifier.PendingDigest()),
	}
	for _, a := range open {
		if a.Severity.IsCritical() {
			st.CriticalCount++
		}
	}
	if cfg, err := m.configs.Get(); err == nil {
		iv := intervalsOf(cfg)
		st.CheckIntervalMinutes, st.DigestIntervalMinutes, st.EscalationCheckMinutes = iv.check, iv.digest, iv.escalation
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st.Running = m.running
	if !m.lastCheckAt.IsZero() {
		t := m.lastCheckAt
		st.LastCheckAt = &t
	}
	if m.running && !m.nextCheckAt.IsZero() {
		t := m.nextCheckAt
		st.NextCheckAt = &t
	}
	return st
}

// CurrentStock estados vigentes, opcionalmente de una sola barra.
func (m *Monitor) CurrentStock(barID string) []entity.StockState {
	return m.snapshot(func(s entity.StockState) bool { return barID == "" || s.BarID == barID })
}

// LowStock estados con porcentaje en o bajo thresholdPct. Con thresholdPct <= 0 devuelve
// los que están bajo el corte de advertencia.
func (m *Monitor) LowStock(thresholdPct float64) []entity.StockState {
	out := m.snapshot(func(s entity.StockState) bool {
		if thresholdPct <= 0 {
			return s.Breaching
		}
		return s.StockPercentage <= thresholdPct
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StockPercentage < out[j].StockPercentage })
	return out
}

// Depleting estados que se agotan dentro de horizonMinutes. Con horizonMinutes <= 0 usa
// el horizonte configurado.
func (m *Monitor) Depleting(horizonMinutes int) []entity.StockState {
	if horizonMinutes <= 0 {
		horizonMinutes = stockalert.DefaultDepletionHorizonMinutes
		if cfg, err := m.configs.Get(); err == nil {
			horizonMinutes = cfg.Monitoring.DepletionHorizonMinutes
		}
	}
	h := float64(horizonMinutes)
	out := m.snapshot(func(s entity.StockState) bool {
		return s.EstimatedMinutesToDepletion != nil && *s.EstimatedMinutesToDepletion <= h
	})
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].EstimatedMinutesToDepletion < *out[j].EstimatedMinutesToDepletion
	})
	return out
}

// Recommendations recomendaciones vigentes ordenadas por prioridad.
func (m *Monitor) Recommendations() []entity.ReplenishmentRecommendation {
	m.stateMu.RLock()
	out := make([]entity.ReplenishmentRecommendation, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r)
	}
	m.stateMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if out[i].BarID != out[j].BarID {
			return out[i].BarID < out[j].BarID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// ReportSnapshot estados en falta y recomendaciones para el reporte de reposición.
func (m *Monitor) ReportSnapshot() ([]entity.StockState, []entity.ReplenishmentRecommendation) {
	return m.LowStock(0), m.Recommendations()
}

func (m *Monitor) snapshot(keep func(entity.StockState) bool) []entity.StockState {
	m.stateMu.RLock()
	out := make([]entity.StockState, 0, len(m.states))
	for _, s := range m.states {
		if keep(s) {
			out = append(out, s)
		}
	}
	m.stateMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].BarID != out[j].BarID {
			return out[i].BarID < out[j].BarID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

func (m *Monitor) replaceCache(res stockalert.Result) {
	states := make(map[entity.StockKey]entity.StockState, len(res.All))
	for _, s := range res.All {
		states[s.Key()] = s
	}
	m.stateMu.Lock()
	m.states = states
	m.recs = recMap(res.Recommendations)
	m.stateMu.Unlock()
}

func (m *Monitor) mergeCache(keys []entity.StockKey, res stockalert.Result) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	for _, k := range keys {
		delete(m.states, k)
		delete(m.recs, k)
	}
	for _, s := range res.All {
		m.states[s.Key()] = s
	}
	for _, r := range res.Recommendations {
		m.recs[entity.StockKey{BarID: r.BarID, ProductID: r.ProductID}] = r
	}
}

// onConfigChange ajusta la ventana de velocidad y reinicia (o detiene) los timers en segundo
// plano si cambiaron los intervalos.
func (m *Monitor) onConfigChange(cfg entity.StockAlertConfig) {
	m.velocity.SetWindow(minutes(cfg.Monitoring.VelocityWindowMinutes))

	m.mu.Lock()
	running, src, changed := m.running, m.source, m.active != intervalsOf(cfg)
	m.mu.Unlock()
	if !running {
		return
	}
	if !cfg.Enabled {
		m.restarts.Go(m.Stop)
		return
	}
	if changed {
		m.restarts.Go(func() {
			if err := m.Start(context.Background(), src); err != nil {
				m.log.Error().Err(err).Msg("no se pudo reiniciar el monitoreo tras cambio de configuración")
			}
		})
	}
}

// notifiable: las alertas reconocidas solo se vuelven a notificar si subió la severidad.
func notifiable(tr TriggerResult) bool {
	return tr.Alert.Status == entity.AlertStatusActive || tr.SeverityIncreased
}

// tracker cuenta goroutines en curso. Admite Go concurrente con Wait.
type tracker struct {
	mu   sync.Mutex
	cond *sync.Cond
	n    int
}

func newTracker() *tracker {
	t := &tracker{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Go ejecuta fn en una goroutine contabilizada.
func (t *tracker) Go(fn func()) {
	t.mu.Lock()
	t.n++
	t.mu.Unlock()
	go func() {
		defer t.done()
		fn()
	}()
}

func (t *tracker) done() {
	t.mu.Lock()
	t.n--
	if t.n == 0 {
		t.cond.Broadcast()
	}
	t.mu.Unlock()
}

// Wait bloquea hasta que no queden goroutines en curso.
func (t *tracker) Wait() {
	t.mu.Lock()
	for t.n > 0 {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

func intervalsOf(cfg entity.StockAlertConfig) intervals {
	return intervals{
		check:         cfg.Monitoring.CheckIntervalMinutes,
		digest:        cfg.Monitoring.DigestIntervalMinutes,
		escalation:    cfg.Monitoring.EscalationCheckMinutes,
		digestEnabled: cfg.Notifications.DigestEnabled,
	}
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

func recMap(recs []entity.ReplenishmentRecommendation) map[entity.StockKey]entity.ReplenishmentRecommendation {
	out := make(map[entity.StockKey]entity.ReplenishmentRecommendation, len(recs))
	for _, r := range recs {
		out[entity.StockKey{BarID: r.BarID, ProductID: r.ProductID}] = r
	}
	return out
}

func validChangeType(t string) bool {
	switch t {
	case entity.StockChangeSale, entity.StockChangeAdjustment, entity.StockChangeWaste, entity.StockChangeRestock:
		return true
	}
	return false
}
