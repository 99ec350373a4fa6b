package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// ── Alertas ───────────────────────────────────────────────────────────────────

// AlertResponse alerta expuesta por la API.
type AlertResponse struct {
	ID                          string     `json:"id"`
	BarID                       string     `json:"barId"`
	BarName                     string     `json:"barName,omitempty"`
	ProductID                   string     `json:"productId"`
	ProductName                 string     `json:"productName,omitempty"`
	CategoryID                  string     `json:"categoryId,omitempty"`
	ProductType                 string     `json:"productType,omitempty"`
	AlertType                   string     `json:"alertType"`
	Status                      string     `json:"status"`
	Severity                    string     `json:"severity"`
	Message                     string     `json:"message"`
	StockPercentage             float64    `json:"stockPercentage"`
	CurrentStock                float64    `json:"currentStock"`
	EstimatedMinutesToDepletion *float64   `json:"estimatedMinutesToDepletion"`
	CreatedAt                   time.Time  `json:"createdAt"`
	UpdatedAt                   time.Time  `json:"updatedAt"`
	AcknowledgedAt              *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy              string     `json:"acknowledgedBy,omitempty"`
	Note                        string     `json:"note,omitempty"`
	ResolvedAt                  *time.Time `json:"resolvedAt,omitempty"`
	Resolution                  string     `json:"resolution,omitempty"`
	ResolvedBy                  string     `json:"resolvedBy,omitempty"`
	Escalated                   bool       `json:"escalated"`
	EscalatedAt                 *time.Time `json:"escalatedAt,omitempty"`
}

// AlertFromEntity mapea una alerta de dominio.
func AlertFromEntity(a entity.Alert) AlertResponse {
	return AlertResponse{
		ID:                          a.ID,
		BarID:                       a.BarID,
		BarName:                     a.BarName,
		ProductID:                   a.ProductID,
		ProductName:                 a.ProductName,
		CategoryID:                  a.CategoryID,
		ProductType:                 a.ProductType,
		AlertType:                   string(a.AlertType),
		Status:                      string(a.Status),
		Severity:                    string(a.Severity),
		Message:                     a.Message,
		StockPercentage:             a.StockPercentage,
		CurrentStock:                a.CurrentStock,
		EstimatedMinutesToDepletion: a.EstimatedMinutesToDepletion,
		CreatedAt:                   a.CreatedAt,
		UpdatedAt:                   a.UpdatedAt,
		AcknowledgedAt:              a.AcknowledgedAt,
		AcknowledgedBy:              a.AcknowledgedBy,
		Note:                        a.Note,
		ResolvedAt:                  a.ResolvedAt,
		Resolution:                  a.Resolution,
		ResolvedBy:                  a.ResolvedBy,
		Escalated:                   a.Escalated,
		EscalatedAt:                 a.EscalatedAt,
	}
}

// AlertsFromEntities mapea una lista (nunca nil).
func AlertsFromEntities(list []entity.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, AlertFromEntity(a))
	}
	return out
}

// AlertListQuery filtros de GET /alerts.
type AlertListQuery struct {
	BarID       string `query:"barId"`
	Status      string `query:"status"`
	Severity    string `query:"severity"`
	ProductType string `query:"productType"`
	Page        int    `query:"page"`
	PageSize    int    `query:"pageSize"`
}

// PageRequest página normalizada.
func (q AlertListQuery) PageRequest() PageRequest {
	p := PageRequest{Page: q.Page, PageSize: q.PageSize}
	p.DefaultPage()
	return p
}

// AlertSummary conteos del conjunto filtrado.
type AlertSummary struct {
	BySeverity map[string]int `json:"bySeverity"`
	ByStatus   map[string]int `json:"byStatus"`
}

// AlertListResponse respuesta paginada de GET /alerts.
type AlertListResponse struct {
	Alerts  []AlertResponse `json:"alerts"`
	Page    PageResponse    `json:"page"`
	Summary AlertSummary    `json:"summary"`
}

// SummarizeAlerts cuenta por severidad y estado.
func SummarizeAlerts(list []entity.Alert) AlertSummary {
	s := AlertSummary{BySeverity: map[string]int{}, ByStatus: map[string]int{}}
	for _, a := range list {
		s.BySeverity[string(a.Severity)]++
		s.ByStatus[string(a.Status)]++
	}
	return s
}

// AlertStatsResponse GET /alerts/stats.
type AlertStatsResponse struct {
	Total            int            `json:"total"`
	Escalated        int            `json:"escalated"`
	ActiveBySeverity map[string]int `json:"activeBySeverity"`
	ByStatus         map[string]int `json:"byStatus"`
}

// StatsFromDomain mapea AlertStats.
func StatsFromDomain(s stockalert.AlertStats) AlertStatsResponse {
	out := AlertStatsResponse{
		Total:            s.Total,
		Escalated:        s.Escalated,
		ActiveBySeverity: make(map[string]int, len(s.ActiveBySeverity)),
		ByStatus:         make(map[string]int, len(s.ByStatus)),
	}
	for k, v := range s.ActiveBySeverity {
		out.ActiveBySeverity[string(k)] = v
	}
	for k, v := range s.ByStatus {
		out.ByStatus[string(k)] = v
	}
	return out
}

// AcknowledgeRequest cuerpo de POST /alerts/:id/acknowledge.
type AcknowledgeRequest struct {
	Note string `json:"note"`
}

// ResolveRequest cuerpo de POST /alerts/:id/resolve.
type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

// BulkAcknowledgeRequest cuerpo de POST /alerts/bulk-acknowledge.
type BulkAcknowledgeRequest struct {
	AlertIDs []string `json:"alertIds"`
}

// BulkAcknowledgeResponse solo las alertas efectivamente reconocidas.
type BulkAcknowledgeResponse struct {
	Acknowledged []AlertResponse `json:"acknowledged"`
	Requested    int             `json:"requested"`
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// StockStateResponse estado derivado de un producto en una barra.
type StockStateResponse struct {
	BarID                       string          `json:"barId"`
	BarName                     string          `json:"barName,omitempty"`
	ProductID                   string          `json:"productId"`
	ProductName                 string          `json:"productName,omitempty"`
	CategoryID                  string          `json:"categoryId,omitempty"`
	ProductType                 string          `json:"productType,omitempty"`
	CurrentStock                decimal.Decimal `json:"currentStock"`
	Capacity                    decimal.Decimal `json:"capacity"`
	StockPercentage             float64         `json:"stockPercentage"`
	Severity                    string          `json:"severity"`
	AlertType                   string          `json:"alertType,omitempty"`
	VelocityPerMinute           float64         `json:"velocityPerMinute"`
	EstimatedMinutesToDepletion *float64        `json:"estimatedMinutesToDepletion"`
	Breaching                   bool            `json:"breaching"`
	LastUpdatedAt               time.Time       `json:"lastUpdatedAt"`
}

// StatesFromEntities mapea estados (nunca nil).
func StatesFromEntities(list []entity.StockState) []StockStateResponse {
	out := make([]StockStateResponse, 0, len(list))
	for _, s := range list {
		out = append(out, StockStateResponse{
			BarID:                       s.BarID,
			BarName:                     s.BarName,
			ProductID:                   s.ProductID,
			ProductName:                 s.ProductName,
			CategoryID:                  s.CategoryID,
			ProductType:                 s.ProductType,
			CurrentStock:                s.CurrentStock,
			Capacity:                    s.Capacity,
			StockPercentage:             s.StockPercentage,
			Severity:                    string(s.Severity),
			AlertType:                   string(s.AlertType),
			VelocityPerMinute:           s.VelocityPerMinute,
			EstimatedMinutesToDepletion: s.EstimatedMinutesToDepletion,
			Breaching:                   s.Breaching,
			LastUpdatedAt:               s.LastUpdatedAt,
		})
	}
	return out
}

// RecommendationResponse sugerencia de reposición.
type RecommendationResponse struct {
	BarID        string          `json:"barId"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName,omitempty"`
	SuggestedQty decimal.Decimal `json:"suggestedQty"`
	Priority     int             `json:"priority"`
	Reason       string          `json:"reason"`
}

// RecommendationsFromEntities mapea recomendaciones (nunca nil).
func RecommendationsFromEntities(list []entity.ReplenishmentRecommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, RecommendationResponse{
			BarID:        r.BarID,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SuggestedQty: r.SuggestedQty,
			Priority:     r.Priority,
			Reason:       r.Reason,
		})
	}
	return out
}

// ProductStockResponse fila del libro de stock tras una actualización.
type ProductStockResponse struct {
	BarID        string          `json:"barId"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName,omitempty"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	Capacity     decimal.Decimal `json:"capacity"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProductStockFromEntity mapea una fila del libro.
func ProductStockFromEntity(p entity.ProductStock) ProductStockResponse {
	return ProductStockResponse{
		BarID:        p.BarID,
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		CurrentStock: p.CurrentStock,
		Capacity:     p.Capacity,
		UpdatedAt:    p.UpdatedAt,
	}
}

// StockUpdateRequest cuerpo de POST /stock/update.
type StockUpdateRequest struct {
	BarID         string           `json:"barId"`
	ProductID     string           `json:"productId"`
	PreviousStock *decimal.Decimal `json:"previousStock"`
	NewStock      decimal.Decimal  `json:"newStock"`
	ChangeType    string           `json:"changeType"`
	Quantity      decimal.Decimal  `json:"quantity"`
}

// ToDomain convierte al comando del monitor.
func (r StockUpdateRequest) ToDomain() stockalert.StockUpdate {
	return stockalert.StockUpdate{
		BarID:         r.BarID,
		ProductID:     r.ProductID,
		PreviousStock: r.PreviousStock,
		NewStock:      r.NewStock,
		ChangeType:    r.ChangeType,
		Quantity:      r.Quantity,
	}
}

// RestockItemRequest línea de reposición.
type RestockItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RestockRequest cuerpo de POST /stock/restock.
type RestockRequest struct {
	BarID   string               `json:"barId"`
	Items   []RestockItemRequest `json:"items"`
	StaffID string               `json:"staffId"`
}

// DomainItems convierte las líneas.
func (r RestockRequest) DomainItems() []stockalert.RestockItem {
	out := make([]stockalert.RestockItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, stockalert.RestockItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// ── Destinatarios ─────────────────────────────────────────────────────────────

// RecipientRequest cuerpo de POST /recipients.
type RecipientRequest struct {
	UserID    string           `json:"userId"`
	Name      string           `json:"name"`
	Role      string           `json:"role"`
	Channels  []entity.Channel `json:"channels"`
	Email     string           `json:"email,omitempty"`
	PushToken string           `json:"pushToken,omitempty"`
	BarIDs    []string         `json:"barIds,omitempty"`
}

// ToEntity convierte al destinatario de dominio.
func (r RecipientRequest) ToEntity() entity.Recipient {
	return entity.Recipient{
		UserID:    r.UserID,
		Name:      r.Name,
		Role:      r.Role,
		Channels:  r.Channels,
		Email:     r.Email,
		PushToken: r.PushToken,
		BarIDs:    r.BarIDs,
	}
}

// RecipientResponse destinatario registrado (sin push token).
type RecipientResponse struct {
	UserID    string           `json:"userId"`
	Name      string           `json:"name"`
	Role      string           `json:"role"`
	Channels  []entity.Channel `json:"channels"`
	Email     string           `json:"email,omitempty"`
	HasPush   bool             `json:"hasPushToken"`
	BarIDs    []string         `json:"barIds,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// RecipientsFromEntities mapea destinatarios (nunca nil).
func RecipientsFromEntities(list []entity.Recipient) []RecipientResponse {
	out := make([]RecipientResponse, 0, len(list))
	for _, r := range list {
		out = append(out, RecipientResponse{
			UserID:    r.UserID,
			Name:      r.Name,
			Role:      r.Role,
			Channels:  r.Channels,
			Email:     r.Email,
			HasPush:   r.PushToken != "",
			BarIDs:    r.BarIDs,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// ── Monitoreo ─────────────────────────────────────────────────────────────────

// MonitorStatusResponse GET /monitoring/status.
type MonitorStatusResponse struct {
	Running                bool       `json:"running"`
	LastCheckAt            *time.Time `json:"lastCheckAt"`
	NextCheckAt            *time.Time `json:"nextCheckAt"`
	AlertCount             int        `json:"alertCount"`
	CriticalCount          int        `json:"criticalCount"`
	TrackedProducts        int        `json:"trackedProducts"`
	PendingDigest          int        `json:"pendingDigest"`
	CheckIntervalMinutes   int        `json:"checkIntervalMinutes"`
	DigestIntervalMinutes  int        `json:"digestIntervalMinutes"`
	EscalationCheckMinutes int        `json:"escalationCheckMinutes"`
}

// MonitorStatusFromDomain mapea MonitorStatus.
func MonitorStatusFromDomain(s stockalert.MonitorStatus) MonitorStatusResponse {
	return MonitorStatusResponse{
		Running:                s.Running,
		LastCheckAt:            s.LastCheckAt,
		NextCheckAt:            s.NextCheckAt,
		AlertCount:             s.AlertCount,
		CriticalCount:          s.CriticalCount,
		TrackedProducts:        s.TrackedProducts,
		PendingDigest:          s.PendingDigest,
		CheckIntervalMinutes:   s.CheckIntervalMinutes,
		DigestIntervalMinutes:  s.DigestIntervalMinutes,
		EscalationCheckMinutes: s.EscalationCheckMinutes,
	}
}

// CheckResultResponse POST /monitoring/check.
type CheckResultResponse struct {
	CheckedAt       time.Time                `json:"checkedAt"`
	Evaluated       int                      `json:"evaluated"`
	States          []StockStateResponse     `json:"states"`
	Recommendations []RecommendationResponse `json:"recommendations"`
	Alerts          []AlertResponse          `json:"alerts"`
	Resolved        []AlertResponse          `json:"resolved"`
	Notifications   BatchSummaryResponse     `json:"notifications"`
}

// BatchSummaryResponse resultado del despacho de un lote.
type BatchSummaryResponse struct {
	Sent       int `json:"sent"`
	Digested   int `json:"digested"`
	Suppressed int `json:"suppressed"`
	Skipped    int `json:"skipped"`
}

// CheckResultFromDomain mapea CheckResult.
func CheckResultFromDomain(r stockalert.CheckResult) CheckResultResponse {
	return CheckResultResponse{
		CheckedAt:       r.CheckedAt,
		Evaluated:       r.Evaluated,
		States:          StatesFromEntities(r.States),
		Recommendations: RecommendationsFromEntities(r.Recommendations),
		Alerts:          AlertsFromEntities(r.Alerts),
		Resolved:        AlertsFromEntities(r.Resolved),
		Notifications: BatchSummaryResponse{
			Sent:       r.Notifications.Sent,
			Digested:   r.Notifications.Digested,
			Suppressed: r.Notifications.Suppressed,
			Skipped:    r.Notifications.Skipped,
		},
	}
}
