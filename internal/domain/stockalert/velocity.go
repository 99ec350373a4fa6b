package stockalert

import (
	"sync"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// DefaultVelocityWindow ventana por defecto para estimar la velocidad de venta.
const DefaultVelocityWindow = 60 * time.Minute

type saleSample struct {
	at  time.Time
	qty float64
}

// VelocityTracker mantiene la velocidad de venta (unidades/minuto) por (barra, producto)
// con una ventana fija: rate = Σ cantidades en la ventana / minutos de la ventana.
// Las muestras viejas se descartan al leer y en Sweep. Es seguro para uso concurrente.
type VelocityTracker struct {
	mu      sync.Mutex
	window  time.Duration
	samples map[entity.StockKey][]saleSample
	now     func() time.Time
}

// NewVelocityTracker construye el tracker. window <= 0 usa DefaultVelocityWindow.
func NewVelocityTracker(window time.Duration) *VelocityTracker {
	if window <= 0 {
		window = DefaultVelocityWindow
	}
	return &VelocityTracker{
		window:  window,
		samples: make(map[entity.StockKey][]saleSample),
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (v *VelocityTracker) WithClock(now func() time.Time) *VelocityTracker {
	v.mu.Lock()
	v.now = now
	v.mu.Unlock()
	return v
}

// SetWindow cambia la ventana (p. ej. tras un PATCH de configuración).
func (v *VelocityTracker) SetWindow(window time.Duration) {
	if window <= 0 {
		return
	}
	v.mu.Lock()
	v.window = window
	v.mu.Unlock()
}

// Window devuelve la ventana actual.
func (v *VelocityTracker) Window() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.window
}

// RecordSale registra un consumo con la hora actual. barID vacío = venta sin barra (global del local).
func (v *VelocityTracker) RecordSale(productID string, quantity float64, barID string) {
	v.mu.Lock()
	at := v.now()
	v.mu.Unlock()
	v.RecordSaleAt(productID, quantity, barID, at)
}

// RecordSaleAt registra un consumo en un instante dado y descarta las muestras de la misma
// clave que quedaron fuera de la ventana. Cantidades <= 0 se ignoran.
func (v *VelocityTracker) RecordSaleAt(productID string, quantity float64, barID string, at time.Time) {
	if productID == "" || quantity <= 0 {
		return
	}
	key := entity.StockKey{BarID: barID, ProductID: productID}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.samples[key] = append(v.samples[key], saleSample{at: at, qty: quantity})
	v.evictLocked(key, at)
}

// Rate devuelve la velocidad de (barra, producto) en unidades/minuto.
// Si la barra no tiene muestras se usa la velocidad global del producto (ventas sin barra).
func (v *VelocityTracker) Rate(barID, productID string, now time.Time) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := entity.StockKey{BarID: barID, ProductID: productID}
	if rate, ok := v.rateLocked(key, now); ok || barID == "" {
		return rate
	}
	rate, _ := v.rateLocked(entity.StockKey{ProductID: productID}, now)
	return rate
}

func (v *VelocityTracker) rateLocked(key entity.StockKey, now time.Time) (float64, bool) {
	kept := v.evictLocked(key, now)
	if kept == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range v.samples[key] {
		sum += s.qty
	}
	if sum <= 0 {
		return 0, true
	}
	return sum / v.window.Minutes(), true
}

// evictLocked descarta muestras anteriores a now-window y devuelve cuántas quedan.
func (v *VelocityTracker) evictLocked(key entity.StockKey, now time.Time) int {
	list, ok := v.samples[key]
	if !ok {
		return 0
	}
	cutoff := now.Add(-v.window)
	kept := list[:0]
	for _, s := range list {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(v.samples, key)
		return 0
	}
	v.samples[key] = kept
	return len(kept)
}

// Sweep descarta muestras vencidas de todas las claves y devuelve cuántas claves quedaron vacías.
func (v *VelocityTracker) Sweep(now time.Time) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	removed := 0
	for key := range v.samples {
		if v.evictLocked(key, now) == 0 {
			removed++
		}
	}
	return removed
}

// Len devuelve el número de claves con muestras.
func (v *VelocityTracker) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.samples)
}
