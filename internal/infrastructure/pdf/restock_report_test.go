package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/pdf"
)

func TestRestockReport_GeneraPDF(t *testing.T) {
	eta := 32.0
	states := []entity.StockState{{
		BarID: "bar-1", BarName: "Barra Principal", ProductID: "p1", ProductName: "Ron Añejo",
		CurrentStock: decimal.NewFromInt(8), Capacity: decimal.NewFromInt(100),
		StockPercentage: 8, Severity: entity.SeverityCritical, EstimatedMinutesToDepletion: &eta,
	}}
	recs := []entity.ReplenishmentRecommendation{{
		BarID: "bar-1", ProductID: "p1", ProductName: "Ron Añejo",
		SuggestedQty: decimal.NewFromInt(67), Priority: entity.PriorityRestockNow, Reason: "reponer ya",
	}}

	g := pdf.NewRestockReportGenerator(nil)
	data, err := g.RenderRestockReport(context.Background(), "venue-1", states, recs, time.Now())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRestockReport_SinDatos(t *testing.T) {
	g := pdf.NewRestockReportGenerator(time.UTC)
	data, err := g.RenderRestockReport(context.Background(), "venue-1", nil, nil, time.Now())

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
