package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cambio de stock reportados por el POS.
const (
	StockChangeSale       = "sale"
	StockChangeAdjustment = "adjustment"
	StockChangeWaste      = "waste"
	StockChangeRestock    = "restock"
)

// ProductStock representa el stock actual de un producto en una barra (entrada del evaluador).
// Capacity es el stock máximo de referencia para calcular el porcentaje.
type ProductStock struct {
	BarID        string
	BarName      string
	ProductID    string
	ProductName  string
	CategoryID   string
	ProductType  string
	Unit         string
	CurrentStock decimal.Decimal
	Capacity     decimal.Decimal
	UpdatedAt    time.Time
}

// Key devuelve la clave (barra, producto).
func (p ProductStock) Key() StockKey {
	return StockKey{BarID: p.BarID, ProductID: p.ProductID}
}

// StockKey identifica un producto dentro de una barra.
type StockKey struct {
	BarID     string
	ProductID string
}

func (k StockKey) String() string {
	return k.BarID + "|" + k.ProductID
}

// StockState es el estado derivado de un producto en una barra. No se persiste:
// siempre se recalcula desde stock actual + velocidad + umbrales.
type StockState struct {
	BarID             string
	BarName           string
	ProductID         string
	ProductName       string
	CategoryID        string
	ProductType       string
	CurrentStock      decimal.Decimal
	Capacity          decimal.Decimal
	StockPercentage   float64
	Severity          Severity
	AlertType         AlertType
	VelocityPerMinute float64
	// EstimatedMinutesToDepletion es nil cuando no hay ventas recientes (sin ETA).
	EstimatedMinutesToDepletion *float64
	Breaching                   bool
	LastUpdatedAt               time.Time
}

// Key devuelve la clave (barra, producto) del estado.
func (s StockState) Key() StockKey {
	return StockKey{BarID: s.BarID, ProductID: s.ProductID}
}

// Prioridades de reposición (1 = más urgente).
const (
	PriorityRestockNow  = 1
	PriorityRestockSoon = 2
	PriorityMonitor     = 3
)

// ReplenishmentRecommendation sugerencia de reposición calculada junto al StockState.
type ReplenishmentRecommendation struct {
	BarID        string
	ProductID    string
	ProductName  string
	SuggestedQty decimal.Decimal
	Priority     int
	Reason       string
}

// SaleEvent venta (o consumo) reportado por el POS.
// NewStock es opcional: si viene, reemplaza el stock conocido; si no, se descuenta Quantity.
type SaleEvent struct {
	BarID      string
	ProductID  string
	Quantity   decimal.Decimal
	NewStock   *decimal.Decimal
	OccurredAt time.Time
}
