package stockalert

import "github.com/jhoicas/stock-alerts/internal/domain/entity"

// severityTier par (severidad, corte). La tabla se recorre de la más urgente a la menos
// urgente y gana el primer corte que cumpla pct <= corte; así un empate en el límite
// siempre se resuelve hacia la severidad más alta.
type severityTier struct {
	severity entity.Severity
	cutoff   func(entity.Thresholds) float64
}

var severityTiers = []severityTier{
	{entity.SeverityEmergency, func(t entity.Thresholds) float64 { return t.Emergency }},
	{entity.SeverityCritical, func(t entity.Thresholds) float64 { return t.Critical }},
	{entity.SeverityWarning, func(t entity.Thresholds) float64 { return t.Warning }},
}

// SeverityFor devuelve la severidad del porcentaje de stock según los umbrales.
func SeverityFor(pct float64, t entity.Thresholds) entity.Severity {
	for _, tier := range severityTiers {
		if pct <= tier.cutoff(t) {
			return tier.severity
		}
	}
	return entity.SeverityInfo
}
