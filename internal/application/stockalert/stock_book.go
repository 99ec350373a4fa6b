package stockalert

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// StockBook stock conocido por (barra, producto). Lo alimentan el seed, la fuente de
// productos y los eventos del POS.
type StockBook struct {
	mu    sync.RWMutex
	items map[entity.StockKey]entity.ProductStock
}

// NewStockBook construye el libro vacío.
func NewStockBook() *StockBook {
	return &StockBook{items: make(map[entity.StockKey]entity.ProductStock)}
}

// Upsert agrega o reemplaza productos.
func (b *StockBook) Upsert(products ...entity.ProductStock) {
	b.mu.Lock()
	for _, p := range products {
		b.items[p.Key()] = p
	}
	b.mu.Unlock()
}

// Get obtiene un producto.
func (b *StockBook) Get(key entity.StockKey) (entity.ProductStock, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.items[key]
	return p, ok
}

// List devuelve todos los productos ordenados por barra y producto.
func (b *StockBook) List() []entity.ProductStock {
	b.mu.RLock()
	out := make([]entity.ProductStock, 0, len(b.items))
	for _, p := range b.items {
		out = append(out, p)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].BarID != out[j].BarID {
			return out[i].BarID < out[j].BarID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// Len número de productos seguidos.
func (b *StockBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// SetStock fija el stock actual. ok=false si el producto no está seguido.
func (b *StockBook) SetStock(key entity.StockKey, stock decimal.Decimal, at time.Time) (entity.ProductStock, bool) {
	return b.modify(key, at, func(decimal.Decimal) decimal.Decimal { return stock })
}

// AddStock suma (o resta, si qty es negativa) al stock actual sin bajar de cero.
func (b *StockBook) AddStock(key entity.StockKey, qty decimal.Decimal, at time.Time) (entity.ProductStock, bool) {
	return b.modify(key, at, func(cur decimal.Decimal) decimal.Decimal { return cur.Add(qty) })
}

// ApplySale descuenta una venta. Si newStock viene informado, prevalece sobre el descuento.
func (b *StockBook) ApplySale(key entity.StockKey, qty decimal.Decimal, newStock *decimal.Decimal, at time.Time) (entity.ProductStock, bool) {
	if newStock != nil {
		return b.SetStock(key, *newStock, at)
	}
	return b.AddStock(key, qty.Neg(), at)
}

func (b *StockBook) modify(key entity.StockKey, at time.Time, fn func(decimal.Decimal) decimal.Decimal) (entity.ProductStock, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.items[key]
	if !ok {
		return entity.ProductStock{}, false
	}
	next := fn(p.CurrentStock)
	if next.IsNegative() {
		next = decimal.Zero
	}
	p.CurrentStock = next
	p.UpdatedAt = at
	b.items[key] = p
	return p, true
}
