package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/export"
)

// AlertHistory historial persistido (opcional). Lo implementa postgres.AlertRepo.
type AlertHistory interface {
	ListByStatus(ctx context.Context, status entity.AlertStatus, limit int) ([]entity.Alert, error)
}

// StockAlertHandler maneja configuración, categorías y alertas del local (protegido).
type StockAlertHandler struct {
	configs *stockalert.ConfigStore
	engine  *stockalert.AlertEngine
	monitor *stockalert.Monitor
	history AlertHistory
	loc     *time.Location
	log     zerolog.Logger
}

// NewStockAlertHandler construye el handler. history puede ser nil.
func NewStockAlertHandler(
	configs *stockalert.ConfigStore,
	engine *stockalert.AlertEngine,
	monitor *stockalert.Monitor,
	history AlertHistory,
	loc *time.Location,
	log zerolog.Logger,
) *StockAlertHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StockAlertHandler{configs: configs, engine: engine, monitor: monitor, history: history, loc: loc, log: log}
}

// ── Configuración ─────────────────────────────────────────────────────────────

// GetConfig godoc
// @Summary      Configuración de alertas de stock del local
// @Tags         stock-alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.StockAlertConfig
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/config [get]
func (h *StockAlertHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.monitor.GetConfig()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// SetConfig godoc
// @Summary      Crear o reemplazar la configuración
// @Tags         stock-alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.StockAlertConfig  true  "configuración completa; los campos vacíos toman valores por defecto"
// @Success      200   {object}  entity.StockAlertConfig
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/config [post]
func (h *StockAlertHandler) SetConfig(c *fiber.Ctx) error {
	var in entity.StockAlertConfig
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cfg, err := h.monitor.SetConfig(in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// PatchConfig godoc
// @Summary      Actualizar parcialmente la configuración
// @Tags         stock-alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.StockAlertConfigPatch  true  "solo los campos presentes"
// @Success      200   {object}  entity.StockAlertConfig
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/config [patch]
func (h *StockAlertHandler) PatchConfig(c *fiber.Ctx) error {
	var in entity.StockAlertConfigPatch
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cfg, err := h.monitor.PatchConfig(in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// ── Categorías ────────────────────────────────────────────────────────────────

// AddCategory agrega o reemplaza una categoría monitoreada.
func (h *StockAlertHandler) AddCategory(c *fiber.Ctx) error {
	var in entity.MonitoredCategory
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cfg, err := h.configs.UpsertCategory(in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// PatchCategory actualiza parcialmente una categoría.
func (h *StockAlertHandler) PatchCategory(c *fiber.Ctx) error {
	var in entity.MonitoredCategoryPatch
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cfg, err := h.configs.PatchCategory(c.Params("categoryId"), in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// DeleteCategory quita una categoría del monitoreo.
func (h *StockAlertHandler) DeleteCategory(c *fiber.Ctx) error {
	cfg, err := h.configs.DeleteCategory(c.Params("categoryId"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// ── Alertas ───────────────────────────────────────────────────────────────────

// ListAlerts godoc
// @Summary      Listar alertas con filtros y paginación
// @Tags         stock-alerts
// @Security     Bearer
// @Produce      json
// @Param        barId        query  string  false  "barra"
// @Param        status       query  string  false  "active | acknowledged | resolved"
// @Param        severity     query  string  false  "info | warning | critical | emergency"
// @Param        productType  query  string  false  "tipo de producto"
// @Param        page         query  int     false  "página (1..)"
// @Param        pageSize     query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.AlertListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/alerts [get]
func (h *StockAlertHandler) ListAlerts(c *fiber.Ctx) error {
	var q dto.AlertListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros de consulta inválidos")
	}
	filter, ok := alertFilter(q)
	if !ok {
		return badRequest(c, "status o severity desconocido")
	}
	all := h.engine.GetAlerts(filter)
	page := q.PageRequest()
	from, to := page.Bounds(len(all))
	return c.JSON(dto.AlertListResponse{
		Alerts:  dto.AlertsFromEntities(all[from:to]),
		Page:    dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: len(all)},
		Summary: dto.SummarizeAlerts(all),
	})
}

// AlertStats conteos agregados de alertas.
func (h *StockAlertHandler) AlertStats(c *fiber.Ctx) error {
	return c.JSON(dto.StatsFromDomain(h.engine.GetAlertStats()))
}

// ExportAlerts godoc
// @Summary      Exportar alertas a Excel
// @Tags         stock-alerts
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/stock-alerts/alerts/export [get]
func (h *StockAlertHandler) ExportAlerts(c *fiber.Ctx) error {
	var q dto.AlertListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros de consulta inválidos")
	}
	filter, ok := alertFilter(q)
	if !ok {
		return badRequest(c, "status o severity desconocido")
	}
	data, err := export.AlertsXLSX(h.engine.GetAlerts(filter), h.loc)
	if err != nil {
		h.log.Error().Err(err).Msg("exportar alertas")
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="alertas-stock.xlsx"`)
	return c.Send(data)
}

// ListHistory historial persistido por estado. Solo se registra con base de datos.
func (h *StockAlertHandler) ListHistory(c *fiber.Ctx) error {
	status := entity.AlertStatus(c.Query("status", string(entity.AlertStatusResolved)))
	if !status.Valid() {
		return badRequest(c, "status desconocido")
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	list, err := h.history.ListByStatus(c.UserContext(), status, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("historial de alertas")
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"alerts": dto.AlertsFromEntities(list)})
}

// GetAlert detalle de una alerta.
func (h *StockAlertHandler) GetAlert(c *fiber.Ctx) error {
	a, ok := h.engine.GetAlert(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alerta no encontrada"})
	}
	return c.JSON(dto.AlertFromEntity(a))
}

// AcknowledgeAlert godoc
// @Summary      Reconocer una alerta activa
// @Tags         stock-alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "alert id"
// @Param        body  body  dto.AcknowledgeRequest  false  "nota opcional"
// @Success      200   {object}  dto.AlertResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/alerts/{id}/acknowledge [post]
func (h *StockAlertHandler) AcknowledgeAlert(c *fiber.Ctx) error {
	var in dto.AcknowledgeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	a, err := h.monitor.AcknowledgeAlert(c.UserContext(), c.Params("id"), GetUserID(c), in.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertFromEntity(a))
}

// ResolveAlert resuelve manualmente una alerta abierta.
func (h *StockAlertHandler) ResolveAlert(c *fiber.Ctx) error {
	var in dto.ResolveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if in.Resolution == "" {
		in.Resolution = "resuelta manualmente"
	}
	a, err := h.monitor.ResolveAlert(c.UserContext(), c.Params("id"), in.Resolution, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AlertFromEntity(a))
}

// BulkAcknowledge reconoce varias alertas; la respuesta trae solo las que cambiaron.
func (h *StockAlertHandler) BulkAcknowledge(c *fiber.Ctx) error {
	var in dto.BulkAcknowledgeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if len(in.AlertIDs) == 0 {
		return badRequest(c, "alertIds requerido")
	}
	done := h.monitor.BulkAcknowledge(c.UserContext(), in.AlertIDs, GetUserID(c))
	return c.JSON(dto.BulkAcknowledgeResponse{
		Acknowledged: dto.AlertsFromEntities(done),
		Requested:    len(in.AlertIDs),
	})
}

func alertFilter(q dto.AlertListQuery) (stockalert.AlertFilter, bool) {
	f := stockalert.AlertFilter{
		BarID:       q.BarID,
		Status:      entity.AlertStatus(q.Status),
		Severity:    entity.Severity(q.Severity),
		ProductType: q.ProductType,
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, false
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return f, false
	}
	return f, true
}
