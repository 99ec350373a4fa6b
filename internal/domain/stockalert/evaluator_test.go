package stockalert_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)

// fixedVelocity fuente de velocidad constante por producto.
type fixedVelocity map[string]float64

func (f fixedVelocity) Rate(_, productID string, _ time.Time) float64 { return f[productID] }

func testConfig() entity.StockAlertConfig {
	cfg := stockalert.DefaultConfig("venue-1")
	cfg.DefaultThresholds = entity.Thresholds{Warning: 25, Critical: 10, Emergency: 5}
	return cfg
}

func product(id string, current, capacity int64) entity.ProductStock {
	return entity.ProductStock{
		BarID:        "bar-1",
		ProductID:    id,
		ProductName:  "Producto " + id,
		CategoryID:   "cat-licores",
		CurrentStock: decimal.NewFromInt(current),
		Capacity:     decimal.NewFromInt(capacity),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Severidad y porcentaje
// ──────────────────────────────────────────────────────────────────────────────

func TestSeverityFor_TablaOrdenada(t *testing.T) {
	th := entity.Thresholds{Warning: 25, Critical: 10, Emergency: 5}

	cases := []struct {
		pct  float64
		want entity.Severity
	}{
		{100, entity.SeverityInfo},
		{25.01, entity.SeverityInfo},
		{25, entity.SeverityWarning},
		{10.5, entity.SeverityWarning},
		{10, entity.SeverityCritical},
		{5, entity.SeverityEmergency},
		{0, entity.SeverityEmergency},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stockalert.SeverityFor(c.pct, th), "pct=%v", c.pct)
	}
}

// Con cortes iguales gana la severidad más urgente.
func TestSeverityFor_EmpateEnLimite(t *testing.T) {
	th := entity.Thresholds{Warning: 10, Critical: 10, Emergency: 10}
	assert.Equal(t, entity.SeverityEmergency, stockalert.SeverityFor(10, th))
}

func TestStockPercentage_AcotadoYSinDivisionPorCero(t *testing.T) {
	assert.Equal(t, 8.0, stockalert.StockPercentage(decimal.NewFromInt(8), decimal.NewFromInt(100)))
	assert.Equal(t, 100.0, stockalert.StockPercentage(decimal.NewFromInt(150), decimal.NewFromInt(100)))
	assert.Equal(t, 0.0, stockalert.StockPercentage(decimal.NewFromInt(-3), decimal.NewFromInt(100)))
	assert.Equal(t, 0.0, stockalert.StockPercentage(decimal.NewFromInt(10), decimal.Zero))
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluate / EvaluateAll
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: capacity=100, currentStock=8, warning=25, critical=10 → 8%, critical.
func TestEvaluate_EscenarioCritico(t *testing.T) {
	ev := stockalert.NewEvaluator(nil)
	state, rec, ok := ev.Evaluate(product("p1", 8, 100), testConfig(), testNow)

	require.True(t, ok)
	assert.Equal(t, 8.0, state.StockPercentage)
	assert.Equal(t, entity.SeverityCritical, state.Severity)
	assert.True(t, state.Breaching)
	assert.Nil(t, state.EstimatedMinutesToDepletion, "sin velocidad no hay ETA")
	require.NotNil(t, rec)
	assert.Equal(t, entity.PriorityRestockNow, rec.Priority)
}

func TestEvaluate_CapacidadCeroEsEmergencia(t *testing.T) {
	ev := stockalert.NewEvaluator(nil)
	state, _, ok := ev.Evaluate(product("p1", 10, 0), testConfig(), testNow)

	require.True(t, ok)
	assert.Equal(t, 0.0, state.StockPercentage)
	assert.Equal(t, entity.SeverityEmergency, state.Severity)
}

func TestEvaluate_ETAConVelocidad(t *testing.T) {
	ev := stockalert.NewEvaluator(fixedVelocity{"p1": 0.25})
	state, _, ok := ev.Evaluate(product("p1", 50, 100), testConfig(), testNow)

	require.True(t, ok)
	require.NotNil(t, state.EstimatedMinutesToDepletion)
	assert.InDelta(t, 200.0, *state.EstimatedMinutesToDepletion, 1e-9)
}

func TestEvaluateAll_ExcluyeProductosSinRiesgo(t *testing.T) {
	ev := stockalert.NewEvaluator(nil)
	res := ev.EvaluateAll([]entity.ProductStock{
		product("ok", 80, 100),
		product("bajo", 20, 100),
	}, testConfig(), testNow)

	require.Len(t, res.States, 1)
	assert.Equal(t, "bajo", res.States[0].ProductID)
	assert.Equal(t, entity.SeverityWarning, res.States[0].Severity)
	assert.Len(t, res.All, 2)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, entity.PriorityRestockSoon, res.Recommendations[0].Priority)
}

// Un producto sano que se agota dentro del horizonte recibe recomendación "monitor".
func TestEvaluateAll_RecomendacionMonitorPorHorizonte(t *testing.T) {
	ev := stockalert.NewEvaluator(fixedVelocity{"rapido": 1})
	res := ev.EvaluateAll([]entity.ProductStock{product("rapido", 60, 100)}, testConfig(), testNow)

	assert.Empty(t, res.States)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, entity.PriorityMonitor, res.Recommendations[0].Priority)
}

func TestEvaluateSubset_SoloClavesAfectadas(t *testing.T) {
	ev := stockalert.NewEvaluator(nil)
	products := []entity.ProductStock{product("a", 1, 100), product("b", 1, 100)}
	res := ev.EvaluateSubset(products, []entity.StockKey{{BarID: "bar-1", ProductID: "b"}}, testConfig(), testNow)

	require.Len(t, res.States, 1)
	assert.Equal(t, "b", res.States[0].ProductID)
}

func TestEffectiveThresholds_CategoriaConUmbralesPropios(t *testing.T) {
	cfg := testConfig()
	cfg.MonitoredCategories = []entity.MonitoredCategory{
		{CategoryID: "cat-licores", Enabled: true, RotationSpeed: entity.RotationFast,
			Thresholds: &entity.Thresholds{Warning: 40, Critical: 20, Emergency: 10}},
		{CategoryID: "cat-snacks", Enabled: false},
	}
	ev := stockalert.NewEvaluator(nil)

	state, _, ok := ev.Evaluate(product("p1", 30, 100), cfg, testNow)
	require.True(t, ok)
	assert.Equal(t, entity.SeverityWarning, state.Severity, "30% <= 40% de la categoría")

	snack := product("s1", 1, 100)
	snack.CategoryID = "cat-snacks"
	_, _, ok = ev.Evaluate(snack, cfg, testNow)
	assert.False(t, ok, "categoría deshabilitada no se monitorea")

	other := product("o1", 30, 100)
	other.CategoryID = "cat-sin-listar"
	state, _, ok = ev.Evaluate(other, cfg, testNow)
	require.True(t, ok)
	assert.Equal(t, entity.SeverityInfo, state.Severity, "categoría no listada usa umbrales del local")
}

// ──────────────────────────────────────────────────────────────────────────────
// SuggestedQty
// ──────────────────────────────────────────────────────────────────────────────

func TestSuggestedQty_ObjetivoSobreWarning(t *testing.T) {
	th := entity.Thresholds{Warning: 25, Critical: 10, Emergency: 5}
	m := entity.MonitoringPolicy{RestockBufferPercent: 50, RestockLeadTimeMinutes: 60}

	// objetivo = 75; (75 - 8) * 1.0 = 67
	qty := stockalert.SuggestedQty(decimal.NewFromInt(8), decimal.NewFromInt(100), 0, th, m, entity.RotationSlow)
	assert.True(t, qty.Equal(decimal.NewFromInt(67)), "got %s", qty)

	// con consumo: (75 - 8 + 0.5*60) * 1.0 = 97
	qty = stockalert.SuggestedQty(decimal.NewFromInt(8), decimal.NewFromInt(100), 0.5, th, m, entity.RotationSlow)
	assert.True(t, qty.Equal(decimal.NewFromInt(92)), "acotado a capacity-current, got %s", qty)
}

func TestSuggestedQty_NuncaNegativa(t *testing.T) {
	th := entity.Thresholds{Warning: 25, Critical: 10, Emergency: 5}
	m := entity.MonitoringPolicy{RestockBufferPercent: 50, RestockLeadTimeMinutes: 60}
	qty := stockalert.SuggestedQty(decimal.NewFromInt(95), decimal.NewFromInt(100), 0, th, m, entity.RotationFast)
	assert.True(t, qty.IsZero())
}
