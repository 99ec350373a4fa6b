package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

const alertsSheet = "Alertas"

// AlertsHeader columnas del export de alertas.
var AlertsHeader = []string{
	"ID",
	"Barra",
	"Producto",
	"Tipo producto",
	"Severidad",
	"Estado",
	"% Stock",
	"Stock actual",
	"ETA (min)",
	"Escalada",
	"Creada",
	"Reconocida por",
	"Resuelta",
	"Resolución",
}

var alertsColumnWidths = []float64{38, 18, 26, 14, 12, 14, 9, 12, 10, 9, 18, 16, 18, 30}

// AlertsXLSX genera el libro Excel con una fila por alerta.
func AlertsXLSX(alerts []entity.Alert, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(alertsSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("xlsx: borrar hoja por defecto: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo de cabecera: %w", err)
	}

	for i, h := range AlertsHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(alertsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: cabecera %s: %w", cell, err)
		}
		if err := f.SetCellStyle(alertsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("xlsx: estilo %s: %w", cell, err)
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(alertsSheet, colName, colName, alertsColumnWidths[i]); err != nil {
			return nil, fmt.Errorf("xlsx: ancho de columna: %w", err)
		}
	}

	for r, a := range alerts {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		row := alertRow(a, loc)
		if err := f.SetSheetRow(alertsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", r+2, err)
		}
	}
	if err := f.SetPanes(alertsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("xlsx: congelar cabecera: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func alertRow(a entity.Alert, loc *time.Location) []interface{} {
	var eta interface{} = ""
	if a.EstimatedMinutesToDepletion != nil {
		eta = round1(*a.EstimatedMinutesToDepletion)
	}
	escalated := "No"
	if a.Escalated {
		escalated = "Sí"
	}
	return []interface{}{
		a.ID,
		nonEmpty(a.BarName, a.BarID),
		nonEmpty(a.ProductName, a.ProductID),
		a.ProductType,
		string(a.Severity),
		string(a.Status),
		round1(a.StockPercentage),
		a.CurrentStock,
		eta,
		escalated,
		formatTime(&a.CreatedAt, loc),
		a.AcknowledgedBy,
		formatTime(a.ResolvedAt, loc),
		a.Resolution,
	}
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
