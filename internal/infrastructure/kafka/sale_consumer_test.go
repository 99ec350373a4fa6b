package kafka_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/kafka"
)

type recordingHandler struct {
	sales     []entity.SaleEvent
	inventory []decimal.Decimal
}

func (h *recordingHandler) OnSaleEvent(s entity.SaleEvent) { h.sales = append(h.sales, s) }

func (h *recordingHandler) OnInventoryChanged(_, _ string, newStock decimal.Decimal) {
	h.inventory = append(h.inventory, newStock)
}

func TestDecode_VentaPorDefecto(t *testing.T) {
	ev, err := kafka.Decode([]byte(`{"barId":"bar-1","productId":"p1","quantity":"2.5","occurredAt":"2026-10-15T22:00:00Z"}`))
	require.NoError(t, err)

	h := &recordingHandler{}
	kafka.Dispatch(ev, h)

	require.Len(t, h.sales, 1)
	assert.True(t, h.sales[0].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Nil(t, h.sales[0].NewStock)
	assert.Equal(t, 2026, h.sales[0].OccurredAt.Year())
}

func TestDecode_Inventario(t *testing.T) {
	ev, err := kafka.Decode([]byte(`{"type":"inventory","barId":"bar-1","productId":"p1","newStock":12}`))
	require.NoError(t, err)

	h := &recordingHandler{}
	kafka.Dispatch(ev, h)

	assert.Empty(t, h.sales)
	require.Len(t, h.inventory, 1)
	assert.True(t, h.inventory[0].Equal(decimal.NewFromInt(12)))
}

func TestDecode_Invalidos(t *testing.T) {
	cases := map[string]string{
		"json roto":          `{`,
		"sin producto":       `{"barId":"bar-1","quantity":1}`,
		"venta sin cantidad": `{"barId":"bar-1","productId":"p1"}`,
		"inventario vacío":   `{"type":"inventory","barId":"bar-1","productId":"p1"}`,
		"tipo desconocido":   `{"type":"refund","barId":"bar-1","productId":"p1","quantity":1}`,
	}
	for name, raw := range cases {
		_, err := kafka.Decode([]byte(raw))
		assert.Error(t, err, name)
	}
}
