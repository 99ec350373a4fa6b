package stockalert

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

const defaultSendTimeout = 10 * time.Second

// DispatchOutcome resultado de orquestar una alerta.
type DispatchOutcome string

const (
	OutcomeSent       DispatchOutcome = "sent"
	OutcomeDigested   DispatchOutcome = "digested"
	OutcomeSuppressed DispatchOutcome = "suppressed"
	OutcomeSkipped    DispatchOutcome = "skipped"
)

// DispatchResult detalle de un envío.
type DispatchResult struct {
	AlertID   string
	Outcome   DispatchOutcome
	Attempts  int
	Delivered int
}

// BatchSummary resumen de ProcessBatchAlerts.
type BatchSummary struct {
	Sent       int
	Digested   int
	Suppressed int
	Skipped    int
}

// NotificationOrchestrator decide a quién y por qué canal notificar cada alerta:
// deduplicación, digest de alertas no críticas y escalamiento de críticas sin reconocer.
// Los envíos son best-effort: un canal que falla se registra y no bloquea a los demás.
type NotificationOrchestrator struct {
	engine     *AlertEngine
	configs    *ConfigStore
	recipients *RecipientRegistry
	dedup      DedupLedger
	log        zerolog.Logger
	now        func() time.Time

	sendersMu sync.RWMutex
	senders   map[entity.Channel]ChannelSender

	report       ReportRenderer
	reportSource func() ([]entity.StockState, []entity.ReplenishmentRecommendation)
	sendTimeout  time.Duration

	digestMu sync.Mutex
	digest   map[string]entity.Alert // alertID → última versión
}

// NewNotificationOrchestrator construye el orquestador con ledger de deduplicación en memoria.
func NewNotificationOrchestrator(
	engine *AlertEngine,
	configs *ConfigStore,
	recipients *RecipientRegistry,
	log zerolog.Logger,
) *NotificationOrchestrator {
	return &NotificationOrchestrator{
		engine:      engine,
		configs:     configs,
		recipients:  recipients,
		dedup:       NewMemoryDedupLedger(),
		log:         log.With().Str("component", "notification_orchestrator").Logger(),
		now:         time.Now,
		senders:     make(map[entity.Channel]ChannelSender),
		sendTimeout: defaultSendTimeout,
		digest:      make(map[string]entity.Alert),
	}
}

// RegisterSender registra (o reemplaza) el sender de un canal.
func (o *NotificationOrchestrator) RegisterSender(s ChannelSender) {
	o.sendersMu.Lock()
	o.senders[s.Channel()] = s
	o.sendersMu.Unlock()
}

// SetDedupLedger reemplaza el ledger (p. ej. Redis compartido entre réplicas).
func (o *NotificationOrchestrator) SetDedupLedger(l DedupLedger) { o.dedup = l }

// SetReportRenderer habilita el adjunto PDF del digest.
func (o *NotificationOrchestrator) SetReportRenderer(r ReportRenderer) { o.report = r }

// SetSendTimeout límite por envío individual. d <= 0 conserva el valor actual.
func (o *NotificationOrchestrator) SetSendTimeout(d time.Duration) {
	if d > 0 {
		o.sendTimeout = d
	}
}

// SetClock reemplaza el reloj (tests).
func (o *NotificationOrchestrator) SetClock(now func() time.Time) { o.now = now }

func (o *NotificationOrchestrator) setReportSource(fn func() ([]entity.StockState, []entity.ReplenishmentRecommendation)) {
	o.reportSource = fn
}

// OrchestrateNotification despacho inmediato de una alerta (o al digest si no es crítica
// y el digest está habilitado).
func (o *NotificationOrchestrator) OrchestrateNotification(ctx context.Context, alert entity.Alert, rec *entity.ReplenishmentRecommendation) DispatchResult {
	res := DispatchResult{AlertID: alert.ID, Outcome: OutcomeSkipped}
	cfg, err := o.configs.Get()
	if err != nil || !alert.IsOpen() {
		return res
	}

	window := time.Duration(cfg.Notifications.DedupWindowMinutes) * time.Minute
	notify, err := o.dedup.ShouldNotify(ctx, alert.Key().String(), alert.Severity, o.now(), window)
	if err != nil {
		o.log.Warn().Err(err).Str("alert_id", alert.ID).Msg("ledger de deduplicación no disponible, se notifica igual")
		notify = true
	}
	if !notify {
		res.Outcome = OutcomeSuppressed
		return res
	}

	if cfg.Notifications.DigestEnabled && !alert.Severity.IsCritical() {
		o.digestMu.Lock()
		o.digest[alert.ID] = alert
		o.digestMu.Unlock()
		res.Outcome = OutcomeDigested
		return res
	}

	subject, body := immediateMessage(alert, rec)
	res.Attempts, res.Delivered = o.deliver(ctx, cfg, entity.NotificationImmediate, o.recipients.List(""), []entity.Alert{alert}, subject, body, alert.Severity, nil)
	res.Outcome = OutcomeSent
	return res
}

// ProcessBatchAlerts orquesta un lote de alertas (barrido periódico).
func (o *NotificationOrchestrator) ProcessBatchAlerts(ctx context.Context, alerts []entity.Alert, recs map[entity.StockKey]entity.ReplenishmentRecommendation) BatchSummary {
	var sum BatchSummary
	for _, a := range alerts {
		var rec *entity.ReplenishmentRecommendation
		if r, ok := recs[entity.StockKey{BarID: a.BarID, ProductID: a.ProductID}]; ok {
			rec = &r
		}
		switch o.OrchestrateNotification(ctx, a, rec).Outcome {
		case OutcomeSent:
			sum.Sent++
		case OutcomeDigested:
			sum.Digested++
		case OutcomeSuppressed:
			sum.Suppressed++
		default:
			sum.Skipped++
		}
	}
	return sum
}

// PendingDigest devuelve las alertas acumuladas para el próximo digest (sin vaciarlas).
func (o *NotificationOrchestrator) PendingDigest() []entity.Alert {
	o.digestMu.Lock()
	out := make([]entity.Alert, 0, len(o.digest))
	for _, a := range o.digest {
		out = append(out, a)
	}
	o.digestMu.Unlock()
	sortNewestFirst(out)
	return out
}

// DrainDigest vacía el buffer del digest y devuelve las alertas que siguen abiertas.
func (o *NotificationOrchestrator) DrainDigest() []entity.Alert {
	o.digestMu.Lock()
	pending := o.digest
	o.digest = make(map[string]entity.Alert)
	o.digestMu.Unlock()

	out := make([]entity.Alert, 0, len(pending))
	for id, a := range pending {
		if o.engine != nil {
			current, ok := o.engine.GetAlert(id)
			if !ok || !current.IsOpen() {
				continue
			}
			a = current
		}
		out = append(out, a)
	}
	sortNewestFirst(out)
	return out
}

// FlushDigest vacía el buffer y envía el digest. Devuelve cuántas entregas tuvieron éxito.
func (o *NotificationOrchestrator) FlushDigest(ctx context.Context) int {
	return o.SendDigest(ctx, o.DrainDigest())
}

// SendDigest envía un resumen por destinatario/canal con las alertas indicadas.
func (o *NotificationOrchestrator) SendDigest(ctx context.Context, alerts []entity.Alert) int {
	if len(alerts) == 0 {
		return 0
	}
	cfg, err := o.configs.Get()
	if err != nil {
		return 0
	}
	highest := entity.SeverityInfo
	for _, a := range alerts {
		if a.Severity.Rank() > highest.Rank() {
			highest = a.Severity
		}
	}
	attachments := o.digestAttachments(ctx, cfg.VenueID)
	subject, body := digestMessage(alerts)
	_, delivered := o.deliver(ctx, cfg, entity.NotificationDigest, o.recipients.List(""), alerts, subject, body, highest, attachments)
	o.log.Info().Int("alerts", len(alerts)).Int("delivered", delivered).Msg("digest de stock enviado")
	return delivered
}

// CheckForEscalation escala (una sola vez) las alertas critical/emergency activas sin reconocer
// más allá de la ventana configurada, notificando a admin y manager.
func (o *NotificationOrchestrator) CheckForEscalation(ctx context.Context) []entity.Alert {
	cfg, err := o.configs.Get()
	if err != nil || cfg.Notifications.EscalationDisabled {
		return nil
	}
	window := time.Duration(cfg.Notifications.EscalationWindowMinutes) * time.Minute
	due := o.engine.EscalateDue(window)
	if len(due) == 0 {
		return due
	}

	recipients := append(o.recipients.List(entity.RoleAdmin), o.recipients.List(entity.RoleManager)...)
	for _, a := range due {
		subject, body := escalationMessage(a, window)
		_, delivered := o.deliver(ctx, cfg, entity.NotificationEscalation, recipients, []entity.Alert{a}, subject, body, a.Severity, nil)
		o.log.Warn().
			Str("alert_id", a.ID).
			Str("bar_id", a.BarID).
			Str("product_id", a.ProductID).
			Str("severity", string(a.Severity)).
			Int("delivered", delivered).
			Msg("alerta escalada")
	}
	return due
}

// deliver envía a cada par destinatario/canal habilitado. Devuelve intentos y entregas exitosas.
func (o *NotificationOrchestrator) deliver(
	ctx context.Context,
	cfg entity.StockAlertConfig,
	kind string,
	recipients []entity.Recipient,
	alerts []entity.Alert,
	subject, body string,
	severity entity.Severity,
	attachments []entity.Attachment,
) (attempts, delivered int) {
	enabled := make(map[entity.Channel]bool, len(cfg.Notifications.Channels))
	for _, ch := range cfg.Notifications.Channels {
		enabled[ch] = true
	}
	o.sendersMu.RLock()
	senders := make(map[entity.Channel]ChannelSender, len(o.senders))
	for ch, s := range o.senders {
		senders[ch] = s
	}
	o.sendersMu.RUnlock()

	now := o.now()
	for _, rcpt := range recipients {
		scoped := alertsForRecipient(rcpt, alerts)
		if len(scoped) == 0 {
			continue
		}
		for _, ch := range rcpt.Channels {
			sender, ok := senders[ch]
			if !enabled[ch] || !ok {
				continue
			}
			n := entity.Notification{
				Kind:      kind,
				Recipient: rcpt,
				Channel:   ch,
				Subject:   subject,
				Body:      body,
				Severity:  severity,
				Alerts:    scoped,
				CreatedAt: now,
			}
			if ch == entity.ChannelEmail {
				n.Attachments = attachments
			}
			attempts++
			sendCtx, cancel := context.WithTimeout(ctx, o.sendTimeout)
			err := sender.Send(sendCtx, n)
			cancel()
			if err != nil {
				o.log.Warn().Err(err).
					Str("user_id", rcpt.UserID).
					Str("channel", string(ch)).
					Str("kind", kind).
					Msg("fallo entrega de notificación")
				continue
			}
			delivered++
		}
	}
	return attempts, delivered
}

func (o *NotificationOrchestrator) digestAttachments(ctx context.Context, venueID string) []entity.Attachment {
	if o.report == nil || o.reportSource == nil {
		return nil
	}
	states, recs := o.reportSource()
	data, err := o.report.RenderRestockReport(ctx, venueID, states, recs, o.now())
	if err != nil {
		o.log.Warn().Err(err).Msg("no se pudo generar el reporte PDF del digest")
		return nil
	}
	return []entity.Attachment{{Name: "reposicion.pdf", ContentType: "application/pdf", Data: data}}
}

func alertsForRecipient(r entity.Recipient, alerts []entity.Alert) []entity.Alert {
	if len(r.BarIDs) == 0 {
		return alerts
	}
	out := make([]entity.Alert, 0, len(alerts))
	for _, a := range alerts {
		if r.CoversBar(a.BarID) {
			out = append(out, a)
		}
	}
	return out
}

var printer = message.NewPrinter(language.Spanish)

func immediateMessage(a entity.Alert, rec *entity.ReplenishmentRecommendation) (string, string) {
	subject := printer.Sprintf("[%s] Stock bajo: %s", strings.ToUpper(string(a.Severity)), displayProduct(a))
	var b strings.Builder
	b.WriteString(a.Message)
	if rec != nil {
		b.WriteString(printer.Sprintf("\nSugerido: reponer %s unidades (%s)", rec.SuggestedQty.String(), rec.Reason))
	}
	return subject, b.String()
}

func digestMessage(alerts []entity.Alert) (string, string) {
	sorted := append([]entity.Alert(nil), alerts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity.Rank() != sorted[j].Severity.Rank() {
			return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
		}
		return sorted[i].StockPercentage < sorted[j].StockPercentage
	})
	subject := printer.Sprintf("Resumen de stock: %d alertas pendientes", len(sorted))
	var b strings.Builder
	for _, a := range sorted {
		b.WriteString(printer.Sprintf("- [%s] %s en %s: %.1f%%\n", a.Severity, displayProduct(a), displayBar(a), a.StockPercentage))
	}
	return subject, b.String()
}

func escalationMessage(a entity.Alert, window time.Duration) (string, string) {
	subject := printer.Sprintf("[ESCALADA] %s sin reconocer", displayProduct(a))
	body := printer.Sprintf("%s\nLa alerta sigue activa sin reconocer después de %d minutos.", a.Message, int(window.Minutes()))
	return subject, body
}

func displayProduct(a entity.Alert) string {
	if a.ProductName != "" {
		return a.ProductName
	}
	return a.ProductID
}

func displayBar(a entity.Alert) string {
	if a.BarName != "" {
		return a.BarName
	}
	return a.BarID
}
