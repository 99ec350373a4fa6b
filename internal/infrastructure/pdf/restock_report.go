// Package pdf genera el reporte de reposición de stock por barra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Local + fecha de generación                        │
//	│  RESUMEN: productos bajo umbral por severidad               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA ESTADO: Barra | Producto | Stock | % | Sev. | ETA    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA REPOSICIÓN: Prio | Barra | Producto | Cant. | Motivo │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var _ stockalert.ReportRenderer = (*RestockReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 178, Green: 34, Blue: 34}
	colorOrange  = &props.Color{Red: 205, Green: 110, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// RestockReportGenerator implementa stockalert.ReportRenderer usando Maroto v2.
type RestockReportGenerator struct {
	loc *time.Location
}

// NewRestockReportGenerator construye el generador. loc nil usa UTC.
func NewRestockReportGenerator(loc *time.Location) *RestockReportGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &RestockReportGenerator{loc: loc}
}

// RenderRestockReport genera el PDF y devuelve sus bytes.
func (g *RestockReportGenerator) RenderRestockReport(
	_ context.Context,
	venueID string,
	states []entity.StockState,
	recs []entity.ReplenishmentRecommendation,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de reposición", true).
		WithAuthor(venueID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(venueID, generatedAt.In(g.loc)))
	m.AddRows(summaryRow(states))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("PRODUCTOS BAJO UMBRAL"))
	if len(states) == 0 {
		m.AddRows(emptyRow("Sin productos bajo el umbral de advertencia."))
	} else {
		m.AddRows(stateHeaderRow())
		m.AddRows(stateRows(states)...)
	}

	m.AddRows(line.NewRow(4, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("REPOSICIÓN SUGERIDA"))
	if len(recs) == 0 {
		m.AddRows(emptyRow("Sin recomendaciones de reposición."))
	} else {
		m.AddRows(recHeaderRow())
		m.AddRows(recRows(recs)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de reposición: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(venueID string, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("Reporte de reposición", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Local: "+nonEmpty(venueID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(at.Format("02/01/2006 15:04"), props.Text{
				Size: 10, Align: align.Right, Top: 7,
			}),
		),
	)
}

// summaryRow: conteo por severidad.
func summaryRow(states []entity.StockState) core.Row {
	counts := map[entity.Severity]int{}
	for _, s := range states {
		counts[s.Severity]++
	}
	summary := fmt.Sprintf("Emergencia: %d   |   Crítico: %d   |   Advertencia: %d",
		counts[entity.SeverityEmergency], counts[entity.SeverityCritical], counts[entity.SeverityWarning])
	return row.New(8).Add(col.New(12).Add(
		text.New(summary, props.Text{Size: 9, Top: 2, Color: colorGray}),
	))
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
	))
}

func emptyRow(msg string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(value string, size int, a align.Type, color *props.Color) core.Col {
	return col.New(size).Add(text.New(value, props.Text{
		Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: color,
	}))
}

func stateHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Barra", 2, align.Left),
		headerCell("Producto", 4, align.Left),
		headerCell("Stock", 2, align.Right),
		headerCell("%", 1, align.Right),
		headerCell("Severidad", 2, align.Center),
		headerCell("ETA", 1, align.Right),
	)
}

func stateRows(states []entity.StockState) []core.Row {
	rows := make([]core.Row, 0, len(states))
	for _, s := range states {
		eta := "—"
		if s.EstimatedMinutesToDepletion != nil {
			eta = fmt.Sprintf("%.0f min", *s.EstimatedMinutesToDepletion)
		}
		rows = append(rows, row.New(6).Add(
			cell(nonEmpty(s.BarName, s.BarID), 2, align.Left, nil),
			cell(nonEmpty(s.ProductName, s.ProductID), 4, align.Left, nil),
			cell(s.CurrentStock.StringFixed(1)+" / "+s.Capacity.StringFixed(0), 2, align.Right, nil),
			cell(fmt.Sprintf("%.1f", s.StockPercentage), 1, align.Right, nil),
			cell(strings.ToUpper(string(s.Severity)), 2, align.Center, severityColor(s.Severity)),
			cell(eta, 1, align.Right, colorGray),
		))
	}
	return rows
}

func recHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Prio.", 1, align.Center),
		headerCell("Barra", 2, align.Left),
		headerCell("Producto", 3, align.Left),
		headerCell("Cant.", 1, align.Right),
		headerCell("Motivo", 5, align.Left),
	)
}

func recRows(recs []entity.ReplenishmentRecommendation) []core.Row {
	rows := make([]core.Row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, row.New(6).Add(
			cell(fmt.Sprintf("%d", r.Priority), 1, align.Center, priorityColor(r.Priority)),
			cell(r.BarID, 2, align.Left, nil),
			cell(nonEmpty(r.ProductName, r.ProductID), 3, align.Left, nil),
			cell(r.SuggestedQty.StringFixed(0), 1, align.Right, nil),
			cell(r.Reason, 5, align.Left, colorGray),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func severityColor(s entity.Severity) *props.Color {
	switch s {
	case entity.SeverityEmergency, entity.SeverityCritical:
		return colorRed
	case entity.SeverityWarning:
		return colorOrange
	}
	return colorGray
}

func priorityColor(p int) *props.Color {
	if p == entity.PriorityRestockNow {
		return colorRed
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
