package stockalert

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// AlertFilter filtros de GetAlerts. Campos vacíos no filtran.
type AlertFilter struct {
	BarID       string
	Status      entity.AlertStatus
	Severity    entity.Severity
	ProductType string
}

// AlertStats conteos agregados.
type AlertStats struct {
	ActiveBySeverity map[entity.Severity]int
	ByStatus         map[entity.AlertStatus]int
	Total            int
	Escalated        int
}

// TriggerResult resultado de Trigger.
type TriggerResult struct {
	Alert             entity.Alert
	Created           bool
	SeverityIncreased bool
}

// AlertEngine ciclo de vida de alertas: como máximo una alerta no resuelta por
// (barra, producto, tipo). Todas las operaciones devuelven copias.
type AlertEngine struct {
	mu     sync.RWMutex
	alerts map[string]*entity.Alert   // por ID
	open   map[entity.AlertKey]string // clave → ID de la alerta no resuelta
	now    func() time.Time
}

// NewAlertEngine construye el motor vacío.
func NewAlertEngine() *AlertEngine {
	return &AlertEngine{
		alerts: make(map[string]*entity.Alert),
		open:   make(map[entity.AlertKey]string),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (e *AlertEngine) WithClock(now func() time.Time) *AlertEngine {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
	return e
}

// Trigger crea una alerta activa para el estado, o actualiza en sitio la alerta no resuelta
// existente de la misma clave (sin duplicar).
func (e *AlertEngine) Trigger(state entity.StockState) TriggerResult {
	key := entity.AlertKey{BarID: state.BarID, ProductID: state.ProductID, AlertType: state.AlertType}
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()

	if id, ok := e.open[key]; ok {
		a := e.alerts[id]
		increased := state.Severity.Rank() > a.Severity.Rank()
		applyState(a, state)
		a.UpdatedAt = now
		return TriggerResult{Alert: cloneAlert(a), SeverityIncreased: increased}
	}

	a := &entity.Alert{
		ID:        uuid.New().String(),
		AlertType: state.AlertType,
		Status:    entity.AlertStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyState(a, state)
	e.insertLocked(a)
	return TriggerResult{Alert: cloneAlert(a), Created: true, SeverityIncreased: true}
}

func (e *AlertEngine) insertLocked(a *entity.Alert) {
	key := a.Key()
	if a.IsOpen() {
		if existing, dup := e.open[key]; dup && existing != a.ID {
			panic(fmt.Sprintf("stockalert: dos alertas abiertas para %s (%s, %s)", key, existing, a.ID))
		}
		e.open[key] = a.ID
	}
	e.alerts[a.ID] = a
}

// Acknowledge reconoce una alerta activa. ok=false si no existe o no está activa.
func (e *AlertEngine) Acknowledge(alertID, userID, note string) (entity.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[alertID]
	if !ok || a.Status != entity.AlertStatusActive {
		return entity.Alert{}, false
	}
	now := e.now()
	a.Status = entity.AlertStatusAcknowledged
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = userID
	a.Note = note
	a.UpdatedAt = now
	return cloneAlert(a), true
}

// Resolve resuelve una alerta activa o reconocida. ok=false si no existe o ya estaba resuelta.
func (e *AlertEngine) Resolve(alertID, resolution, userID string) (entity.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[alertID]
	if !ok || !a.IsOpen() {
		return entity.Alert{}, false
	}
	e.resolveLocked(a, resolution, userID)
	return cloneAlert(a), true
}

func (e *AlertEngine) resolveLocked(a *entity.Alert, resolution, userID string) {
	now := e.now()
	a.Status = entity.AlertStatusResolved
	a.ResolvedAt = &now
	a.Resolution = resolution
	a.ResolvedBy = userID
	a.UpdatedAt = now
	delete(e.open, a.Key())
}

// BulkAcknowledge aplica Acknowledge a cada ID de forma independiente y devuelve las exitosas.
func (e *AlertEngine) BulkAcknowledge(alertIDs []string, userID string) []entity.Alert {
	out := make([]entity.Alert, 0, len(alertIDs))
	for _, id := range alertIDs {
		if a, ok := e.Acknowledge(id, userID, ""); ok {
			out = append(out, a)
		}
	}
	return out
}

// AutoResolve resuelve las alertas abiertas de un producto que volvió sobre el corte de advertencia.
func (e *AlertEngine) AutoResolve(barID, productID, resolution string) []entity.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []entity.Alert
	for key, id := range e.open {
		if key.BarID != barID || key.ProductID != productID {
			continue
		}
		a := e.alerts[id]
		e.resolveLocked(a, resolution, "")
		out = append(out, cloneAlert(a))
	}
	return out
}

// GetAlert obtiene una alerta por ID.
func (e *AlertEngine) GetAlert(alertID string) (entity.Alert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.alerts[alertID]
	if !ok {
		return entity.Alert{}, false
	}
	return cloneAlert(a), true
}

// GetAlerts lista alertas filtradas, más nuevas primero (desempate estable por ID).
func (e *AlertEngine) GetAlerts(f AlertFilter) []entity.Alert {
	e.mu.RLock()
	out := make([]entity.Alert, 0, len(e.alerts))
	for _, a := range e.alerts {
		if f.BarID != "" && a.BarID != f.BarID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.ProductType != "" && a.ProductType != f.ProductType {
			continue
		}
		out = append(out, cloneAlert(a))
	}
	e.mu.RUnlock()
	sortNewestFirst(out)
	return out
}

// GetAlertStats conteos por severidad (solo activas), por estado y totales.
func (e *AlertEngine) GetAlertStats() AlertStats {
	stats := AlertStats{
		ActiveBySeverity: map[entity.Severity]int{
			entity.SeverityInfo: 0, entity.SeverityWarning: 0,
			entity.SeverityCritical: 0, entity.SeverityEmergency: 0,
		},
		ByStatus: map[entity.AlertStatus]int{
			entity.AlertStatusActive: 0, entity.AlertStatusAcknowledged: 0, entity.AlertStatusResolved: 0,
		},
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.alerts {
		stats.Total++
		stats.ByStatus[a.Status]++
		if a.Status == entity.AlertStatusActive {
			stats.ActiveBySeverity[a.Severity]++
		}
		if a.Escalated {
			stats.Escalated++
		}
	}
	return stats
}

// OpenAlerts devuelve las alertas no resueltas.
func (e *AlertEngine) OpenAlerts() []entity.Alert {
	e.mu.RLock()
	out := make([]entity.Alert, 0, len(e.open))
	for _, id := range e.open {
		out = append(out, cloneAlert(e.alerts[id]))
	}
	e.mu.RUnlock()
	sortNewestFirst(out)
	return out
}

// EscalationCandidates alertas activas critical/emergency sin reconocer ni escalar,
// creadas hace al menos window respecto de now.
func (e *AlertEngine) EscalationCandidates(window time.Duration, now time.Time) []entity.Alert {
	e.mu.RLock()
	var out []entity.Alert
	for _, id := range e.open {
		if a := e.alerts[id]; escalationDue(a, window, now) {
			out = append(out, cloneAlert(a))
		}
	}
	e.mu.RUnlock()
	sortNewestFirst(out)
	return out
}

// MarkEscalated marca la alerta como escalada. Es irreversible: ok=false si ya lo estaba,
// si no existe o si no sigue activa.
func (e *AlertEngine) MarkEscalated(alertID string) (entity.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[alertID]
	if !ok || a.Escalated || a.Status != entity.AlertStatusActive {
		return entity.Alert{}, false
	}
	e.markEscalatedLocked(a, e.now())
	return cloneAlert(a), true
}

// EscalateDue marca como escaladas todas las candidatas y las devuelve.
// Cada alerta se escala una sola vez.
func (e *AlertEngine) EscalateDue(window time.Duration) []entity.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	var out []entity.Alert
	for _, id := range e.open {
		a := e.alerts[id]
		if !escalationDue(a, window, now) {
			continue
		}
		e.markEscalatedLocked(a, now)
		out = append(out, cloneAlert(a))
	}
	sortNewestFirst(out)
	return out
}

func (e *AlertEngine) markEscalatedLocked(a *entity.Alert, now time.Time) {
	a.Escalated = true
	at := now
	a.EscalatedAt = &at
	a.UpdatedAt = now
}

func escalationDue(a *entity.Alert, window time.Duration, now time.Time) bool {
	if a.Status != entity.AlertStatusActive || a.Escalated || !a.Severity.IsCritical() {
		return false
	}
	return now.Sub(a.CreatedAt) >= window
}

// PruneResolved elimina alertas resueltas antes de olderThan. Devuelve cuántas se borraron.
func (e *AlertEngine) PruneResolved(olderThan time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for id, a := range e.alerts {
		if a.Status == entity.AlertStatusResolved && a.ResolvedAt != nil && a.ResolvedAt.Before(olderThan) {
			delete(e.alerts, id)
			n++
		}
	}
	return n
}

// Len número de alertas (todas).
func (e *AlertEngine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.alerts)
}

func applyState(a *entity.Alert, s entity.StockState) {
	a.BarID = s.BarID
	a.BarName = s.BarName
	a.ProductID = s.ProductID
	a.ProductName = s.ProductName
	a.CategoryID = s.CategoryID
	a.ProductType = s.ProductType
	a.Severity = s.Severity
	a.StockPercentage = s.StockPercentage
	a.CurrentStock = s.CurrentStock.InexactFloat64()
	a.EstimatedMinutesToDepletion = nil
	if s.EstimatedMinutesToDepletion != nil {
		eta := *s.EstimatedMinutesToDepletion
		a.EstimatedMinutesToDepletion = &eta
	}
	a.Message = alertMessage(s)
}

func alertMessage(s entity.StockState) string {
	name := s.ProductName
	if name == "" {
		name = s.ProductID
	}
	bar := s.BarName
	if bar == "" {
		bar = s.BarID
	}
	msg := fmt.Sprintf("%s en %s: %.1f%% de stock (%s)", name, bar, s.StockPercentage, s.Severity)
	if s.EstimatedMinutesToDepletion != nil {
		msg += fmt.Sprintf(", se agota en ~%.0f min", *s.EstimatedMinutesToDepletion)
	}
	return msg
}

func cloneAlert(a *entity.Alert) entity.Alert {
	out := *a
	out.EstimatedMinutesToDepletion = clonePtr(a.EstimatedMinutesToDepletion)
	out.AcknowledgedAt = clonePtr(a.AcknowledgedAt)
	out.ResolvedAt = clonePtr(a.ResolvedAt)
	out.EscalatedAt = clonePtr(a.EscalatedAt)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sortNewestFirst(list []entity.Alert) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
