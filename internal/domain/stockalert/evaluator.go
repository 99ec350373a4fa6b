package stockalert

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// minVelocity por debajo de este valor (unidades/minuto) no se estima tiempo de agotamiento.
const minVelocity = 1e-9

// Factores de reposición por rotación (ajustables).
var rotationFactors = map[entity.RotationSpeed]float64{
	entity.RotationSlow:   1.0,
	entity.RotationMedium: 1.25,
	entity.RotationFast:   1.5,
}

var hundred = decimal.NewFromInt(100)

// VelocitySource entrega la velocidad de venta vigente de un producto en una barra.
type VelocitySource interface {
	Rate(barID, productID string, now time.Time) float64
}

// Result salida de una evaluación.
// States contiene solo los estados en o bajo el corte de advertencia; All contiene
// todos los productos monitoreados evaluados.
type Result struct {
	States          []entity.StockState
	All             []entity.StockState
	Recommendations []entity.ReplenishmentRecommendation
}

// Evaluator convierte stock + umbrales + velocidad en StockState y recomendaciones.
// No tiene efectos secundarios: la velocidad se consulta, nunca se modifica.
type Evaluator struct {
	velocity VelocitySource
}

// NewEvaluator construye el evaluador. velocity puede ser nil (velocidad cero).
func NewEvaluator(velocity VelocitySource) *Evaluator {
	return &Evaluator{velocity: velocity}
}

// EvaluateAll evalúa todos los productos.
func (e *Evaluator) EvaluateAll(products []entity.ProductStock, cfg entity.StockAlertConfig, now time.Time) Result {
	res := Result{
		States:          []entity.StockState{},
		All:             make([]entity.StockState, 0, len(products)),
		Recommendations: []entity.ReplenishmentRecommendation{},
	}
	for _, p := range products {
		state, rec, ok := e.Evaluate(p, cfg, now)
		if !ok {
			continue
		}
		res.All = append(res.All, state)
		if state.Breaching {
			res.States = append(res.States, state)
		}
		if rec != nil {
			res.Recommendations = append(res.Recommendations, *rec)
		}
	}
	return res
}

// EvaluateSubset evalúa solo los productos cuyas claves están en keys (llamadas por evento).
func (e *Evaluator) EvaluateSubset(products []entity.ProductStock, keys []entity.StockKey, cfg entity.StockAlertConfig, now time.Time) Result {
	wanted := make(map[entity.StockKey]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	subset := make([]entity.ProductStock, 0, len(keys))
	for _, p := range products {
		if _, ok := wanted[p.Key()]; ok {
			subset = append(subset, p)
		}
	}
	return e.EvaluateAll(subset, cfg, now)
}

// Evaluate calcula el estado de un producto. ok=false si el producto no está monitoreado
// (categoría listada y deshabilitada).
func (e *Evaluator) Evaluate(p entity.ProductStock, cfg entity.StockAlertConfig, now time.Time) (entity.StockState, *entity.ReplenishmentRecommendation, bool) {
	thresholds, rotation, monitored := EffectiveThresholds(cfg, p.CategoryID)
	if !monitored {
		return entity.StockState{}, nil, false
	}

	current := p.CurrentStock
	if current.IsNegative() {
		current = decimal.Zero
	}

	pct := StockPercentage(current, p.Capacity)
	severity := SeverityFor(pct, thresholds)
	if !p.Capacity.IsPositive() {
		severity = entity.SeverityEmergency
	}

	var velocity float64
	if e.velocity != nil {
		velocity = e.velocity.Rate(p.BarID, p.ProductID, now)
	}
	if velocity < 0 {
		velocity = 0
	}

	state := entity.StockState{
		BarID:             p.BarID,
		BarName:           p.BarName,
		ProductID:         p.ProductID,
		ProductName:       p.ProductName,
		CategoryID:        p.CategoryID,
		ProductType:       p.ProductType,
		CurrentStock:      current,
		Capacity:          p.Capacity,
		StockPercentage:   pct,
		Severity:          severity,
		AlertType:         entity.AlertTypeLowStock,
		VelocityPerMinute: velocity,
		Breaching:         severity != entity.SeverityInfo,
		LastUpdatedAt:     now,
	}
	if velocity > minVelocity {
		eta := current.InexactFloat64() / velocity
		state.EstimatedMinutesToDepletion = &eta
	}

	horizon := float64(cfg.Monitoring.DepletionHorizonMinutes)
	withinHorizon := state.EstimatedMinutesToDepletion != nil && horizon > 0 && *state.EstimatedMinutesToDepletion <= horizon
	if !state.Breaching && !withinHorizon {
		return state, nil, true
	}

	qty := SuggestedQty(current, p.Capacity, velocity, thresholds, cfg.Monitoring, rotation)
	rec := &entity.ReplenishmentRecommendation{
		BarID:        p.BarID,
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		SuggestedQty: qty,
		Priority:     PriorityFor(severity),
		Reason:       reasonFor(state, qty),
	}
	return state, rec, true
}

// EffectiveThresholds devuelve los umbrales de la categoría (si tiene propios) o los del local.
// monitored=false cuando la categoría está listada y deshabilitada.
func EffectiveThresholds(cfg entity.StockAlertConfig, categoryID string) (entity.Thresholds, entity.RotationSpeed, bool) {
	mc, ok := cfg.Category(categoryID)
	if !ok || categoryID == "" {
		return cfg.DefaultThresholds, entity.RotationMedium, true
	}
	if !mc.Enabled {
		return entity.Thresholds{}, "", false
	}
	rotation := mc.RotationSpeed
	if rotation == "" {
		rotation = entity.RotationMedium
	}
	if mc.Thresholds != nil {
		return *mc.Thresholds, rotation, true
	}
	return cfg.DefaultThresholds, rotation, true
}

// StockPercentage = current/capacity*100 acotado a [0,100] con 2 decimales. capacity <= 0 → 0.
func StockPercentage(current, capacity decimal.Decimal) float64 {
	if !capacity.IsPositive() || !current.IsPositive() {
		return 0
	}
	pct := current.Div(capacity).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		return 100
	}
	return pct.InexactFloat64()
}

// PriorityFor refleja la severidad: 1 critical/emergency, 2 warning, 3 info.
func PriorityFor(s entity.Severity) int {
	switch {
	case s.IsCritical():
		return entity.PriorityRestockNow
	case s == entity.SeverityWarning:
		return entity.PriorityRestockSoon
	}
	return entity.PriorityMonitor
}

// SuggestedQty cantidad sugerida (unidades enteras, redondeo hacia arriba):
//
//	objetivo = capacity * min(100, warning + buffer) / 100
//	qty      = (objetivo - current + velocidad*leadTime) * factorRotación
//
// acotada a [0, capacity-current]. Sin capacidad solo cubre el consumo del lead time.
func SuggestedQty(current, capacity decimal.Decimal, velocity float64, t entity.Thresholds, m entity.MonitoringPolicy, rotation entity.RotationSpeed) decimal.Decimal {
	factor, ok := rotationFactors[rotation]
	if !ok {
		factor = rotationFactors[entity.RotationMedium]
	}
	leadConsumption := decimal.NewFromFloat(velocity * float64(m.RestockLeadTimeMinutes))

	if !capacity.IsPositive() {
		qty := leadConsumption.Mul(decimal.NewFromFloat(factor)).Ceil()
		if qty.IsNegative() {
			return decimal.Zero
		}
		return qty
	}

	targetPct := math.Min(100, t.Warning+m.RestockBufferPercent)
	target := capacity.Mul(decimal.NewFromFloat(targetPct)).Div(hundred)
	qty := target.Sub(current).Add(leadConsumption).Mul(decimal.NewFromFloat(factor))

	room := capacity.Sub(current)
	if qty.GreaterThan(room) {
		qty = room
	}
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty.Ceil()
}

func reasonFor(s entity.StockState, qty decimal.Decimal) string {
	var base string
	switch s.Severity {
	case entity.SeverityEmergency:
		base = fmt.Sprintf("stock en %.1f%%: reponer de inmediato", s.StockPercentage)
	case entity.SeverityCritical:
		base = fmt.Sprintf("stock crítico (%.1f%%): reponer ahora", s.StockPercentage)
	case entity.SeverityWarning:
		base = fmt.Sprintf("stock bajo (%.1f%%): reponer pronto", s.StockPercentage)
	default:
		base = fmt.Sprintf("stock en %.1f%% con consumo acelerado: vigilar", s.StockPercentage)
	}
	if s.EstimatedMinutesToDepletion != nil {
		base += fmt.Sprintf(", se agota en ~%.0f min", *s.EstimatedMinutesToDepletion)
	}
	return base + fmt.Sprintf(" (sugerido: %s)", qty.String())
}
