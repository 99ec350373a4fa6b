package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
)

// StockHandler maneja snapshots de stock, actualizaciones del POS, reporte y monitoreo.
type StockHandler struct {
	monitor *stockalert.Monitor
	source  stockalert.ProductSource
	report  stockalert.ReportRenderer
	venueID string
	log     zerolog.Logger
}

// NewStockHandler construye el handler. source y report pueden ser nil.
func NewStockHandler(
	monitor *stockalert.Monitor,
	source stockalert.ProductSource,
	report stockalert.ReportRenderer,
	venueID string,
	log zerolog.Logger,
) *StockHandler {
	return &StockHandler{monitor: monitor, source: source, report: report, venueID: venueID, log: log}
}

// CurrentStock estados vigentes de todas las barras.
func (h *StockHandler) CurrentStock(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"states": dto.StatesFromEntities(h.monitor.CurrentStock(""))})
}

// BarStock estados vigentes de una barra.
func (h *StockHandler) BarStock(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"states": dto.StatesFromEntities(h.monitor.CurrentStock(c.Params("barId")))})
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  number  false  "porcentaje máximo; sin valor usa el corte de advertencia"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stock-alerts/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryFloat("threshold", 0)
	if threshold < 0 || threshold > 100 {
		return badRequest(c, "threshold debe estar entre 0 y 100")
	}
	return c.JSON(fiber.Map{
		"states":          dto.StatesFromEntities(h.monitor.LowStock(threshold)),
		"recommendations": dto.RecommendationsFromEntities(h.monitor.Recommendations()),
	})
}

// Depleting productos que se agotan dentro del horizonte (minutos).
func (h *StockHandler) Depleting(c *fiber.Ctx) error {
	horizon := c.QueryInt("horizon", 0)
	if horizon < 0 {
		return badRequest(c, "horizon debe ser positivo")
	}
	return c.JSON(fiber.Map{"states": dto.StatesFromEntities(h.monitor.Depleting(horizon))})
}

// Report godoc
// @Summary      Reporte PDF de reposición
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/stock/report [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	if h.report == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "REPORT_UNAVAILABLE", Message: "generador de reportes no configurado"})
	}
	states, recs := h.monitor.ReportSnapshot()
	data, err := h.report.RenderRestockReport(c.UserContext(), h.venueID, states, recs, time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("generar reporte de reposición")
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reposicion.pdf"`)
	return c.Send(data)
}

// UpdateStock godoc
// @Summary      Informar un cambio de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockUpdateRequest  true  "changeType: sale | adjustment | waste | restock"
// @Success      200   {object}  dto.ProductStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/stock/update [post]
func (h *StockHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.StockUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.BarID == "" || in.ProductID == "" {
		return badRequest(c, "barId y productId son requeridos")
	}
	p, err := h.monitor.ApplyStockUpdate(in.ToDomain())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductStockFromEntity(p))
}

// Restock registra una reposición en una barra.
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.BarID == "" || len(in.Items) == 0 {
		return badRequest(c, "barId e items son requeridos")
	}
	staff := in.StaffID
	if staff == "" {
		staff = GetUserID(c)
	}
	updated, err := h.monitor.Restock(in.BarID, in.DomainItems(), staff)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProductStockResponse, 0, len(updated))
	for _, p := range updated {
		out = append(out, dto.ProductStockFromEntity(p))
	}
	return c.JSON(fiber.Map{"updated": out})
}

// ── Monitoreo ─────────────────────────────────────────────────────────────────

// StartMonitoring arranca (o reinicia) los timers.
func (h *StockHandler) StartMonitoring(c *fiber.Ctx) error {
	if err := h.monitor.Start(c.UserContext(), h.source); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MonitorStatusFromDomain(h.monitor.GetMonitorStatus()))
}

// StopMonitoring detiene los timers. Idempotente.
func (h *StockHandler) StopMonitoring(c *fiber.Ctx) error {
	h.monitor.Stop()
	return c.JSON(dto.MonitorStatusFromDomain(h.monitor.GetMonitorStatus()))
}

// ForceCheck ejecuta una verificación completa inmediata.
func (h *StockHandler) ForceCheck(c *fiber.Ctx) error {
	res, err := h.monitor.ForceStockCheck(c.UserContext(), nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CheckResultFromDomain(res))
}

// MonitoringStatus estado del planificador.
func (h *StockHandler) MonitoringStatus(c *fiber.Ctx) error {
	return c.JSON(dto.MonitorStatusFromDomain(h.monitor.GetMonitorStatus()))
}
