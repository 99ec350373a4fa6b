package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Configs    *stockalert.ConfigStore
	Engine     *stockalert.AlertEngine
	Monitor    *stockalert.Monitor
	Recipients *stockalert.RecipientRegistry
	Source     stockalert.ProductSource  // nil = libro de stock en memoria
	Report     stockalert.ReportRenderer // nil deshabilita /stock/report
	History    AlertHistory              // nil deshabilita /alerts/history
	Location   *time.Location
	VenueID    string
	JWTSecret  string
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	readers := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleSupervisor)
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)
	needConfig := RequireConfig(deps.Configs)

	// Todas las rutas requieren Bearer Token de un rol que recibe alertas.
	api := app.Group("/api/stock-alerts", AuthMiddleware(deps.JWTSecret), RequireVenue(deps.VenueID), readers)

	alertHandler := NewStockAlertHandler(deps.Configs, deps.Engine, deps.Monitor, deps.History, deps.Location, deps.Log)
	stockHandler := NewStockHandler(deps.Monitor, deps.Source, deps.Report, deps.VenueID, deps.Log)
	recipientHandler := NewRecipientHandler(deps.Recipients)

	// Configuración
	api.Get("/config", needConfig, alertHandler.GetConfig)
	api.Post("/config", managers, alertHandler.SetConfig)
	api.Patch("/config", managers, needConfig, alertHandler.PatchConfig)

	// Categorías monitoreadas
	categories := api.Group("/categories", managers)
	categories.Post("/", alertHandler.AddCategory)
	categories.Patch("/:categoryId", alertHandler.PatchCategory)
	categories.Delete("/:categoryId", alertHandler.DeleteCategory)

	// Alertas (las rutas fijas antes de /:id)
	alerts := api.Group("/alerts")
	alerts.Get("/", alertHandler.ListAlerts)
	alerts.Get("/stats", alertHandler.AlertStats)
	alerts.Get("/export", alertHandler.ExportAlerts)
	if deps.History != nil {
		alerts.Get("/history", alertHandler.ListHistory)
	}
	alerts.Post("/bulk-acknowledge", alertHandler.BulkAcknowledge)
	alerts.Get("/:id", alertHandler.GetAlert)
	alerts.Post("/:id/acknowledge", alertHandler.AcknowledgeAlert)
	alerts.Post("/:id/resolve", alertHandler.ResolveAlert)

	// Stock
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.CurrentStock)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/depleting", stockHandler.Depleting)
	stock.Get("/report", stockHandler.Report)
	stock.Post("/update", stockHandler.UpdateStock)
	stock.Post("/restock", stockHandler.Restock)
	stock.Get("/:barId", stockHandler.BarStock)

	// Destinatarios
	recipients := api.Group("/recipients", managers)
	recipients.Post("/", recipientHandler.Register)
	recipients.Get("/", recipientHandler.List)
	recipients.Delete("/:userId", recipientHandler.Remove)

	// Monitoreo
	monitoring := api.Group("/monitoring")
	monitoring.Get("/status", stockHandler.MonitoringStatus)
	monitoring.Post("/start", managers, stockHandler.StartMonitoring)
	monitoring.Post("/stop", managers, stockHandler.StopMonitoring)
	monitoring.Post("/check", managers, stockHandler.ForceCheck)
}
