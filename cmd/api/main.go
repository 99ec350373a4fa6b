package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	domainstock "github.com/jhoicas/stock-alerts/internal/domain/stockalert"
	infrakafka "github.com/jhoicas/stock-alerts/internal/infrastructure/kafka"
	infrapdf "github.com/jhoicas/stock-alerts/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-alerts/internal/infrastructure/redis"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/stock-alerts/internal/interfaces/http"
	"github.com/jhoicas/stock-alerts/pkg/config"
	"github.com/jhoicas/stock-alerts/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("venue_id", cfg.App.VenueID).
		Msg("iniciando aplicación")

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.App.Timezone).Msg("zona horaria inválida, se usa UTC")
		loc = time.UTC
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Núcleo: configuración, motor de alertas, destinatarios, notificaciones y monitor.
	configs := stockalert.NewConfigStore(cfg.App.VenueID)
	engine := stockalert.NewAlertEngine()
	registry := stockalert.NewRecipientRegistry()
	notifier := stockalert.NewNotificationOrchestrator(engine, configs, registry, log.Zerolog())
	notifier.SetSendTimeout(time.Duration(cfg.Monitor.SendTimeoutSeconds) * time.Second)
	notifier.SetReportRenderer(infrapdf.NewRestockReportGenerator(loc))

	velocity := domainstock.NewVelocityTracker(domainstock.DefaultVelocityWindow)
	monitor := stockalert.NewMonitor(configs, engine, notifier, velocity, log.Zerolog())
	monitor.SetRetention(time.Duration(cfg.Monitor.RetentionHours) * time.Hour)

	closeSenders := registerSenders(cfg, notifier, log)
	defer closeSenders()

	// Dedup compartido en Redis; si no responde se mantiene el ledger en memoria.
	if cfg.Redis.Enabled {
		client := infraredis.NewClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := infraredis.Ping(pingCtx, client)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, dedup en memoria")
			_ = client.Close()
		} else {
			notifier.SetDedupLedger(infraredis.NewDedupLedger(client, cfg.Redis.KeyPrefix+":"+cfg.App.VenueID))
			defer client.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("dedup de notificaciones en redis")
		}
	}

	// Seed de arranque: configuración, barras y destinatarios.
	if cfg.Monitor.SeedFile != "" {
		f, err := seed.Load(cfg.Monitor.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Monitor.SeedFile).Msg("cargar seed")
		}
		sum, err := seed.Apply(f, configs, monitor, registry, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar seed")
		}
		log.Info().
			Bool("config", sum.ConfigLoaded).
			Int("products", sum.Products).
			Int("recipients", sum.Recipients).
			Strs("rejected_recipients", sum.RejectedRecipients).
			Msg("seed aplicado")
	}
	if !configs.Initialized() {
		if _, err := configs.Replace(domainstock.DefaultConfig(cfg.App.VenueID), "system"); err != nil {
			log.Fatal().Err(err).Msg("configuración por defecto")
		}
	}

	// PostgreSQL opcional: fuente de stock e historial de alertas.
	var source stockalert.ProductSource
	var history httpRouter.AlertHistory
	if cfg.DB.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		source = postgres.NewBarStockRepository(pool, cfg.App.VenueID)
		alertRepo := postgres.NewAlertRepository(pool, cfg.App.VenueID)
		monitor.SetAlertStore(alertRepo)
		history = alertRepo
	}

	// Eventos del POS por Kafka.
	var consumer *infrakafka.SaleConsumer
	if cfg.Kafka.Enabled {
		consumer = infrakafka.NewSaleConsumer(cfg.Kafka, monitor, log.Zerolog())
		consumer.Start(ctx)
	}

	if cfg.Monitor.AutoStart {
		if err := monitor.Start(ctx, source); err != nil {
			log.Error().Err(err).Msg("arranque del monitoreo")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Alerts API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    cfg.App.Name,
			"monitoring": monitor.Running(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Configs:    configs,
		Engine:     engine,
		Monitor:    monitor,
		Recipients: registry,
		Source:     source,
		Report:     infrapdf.NewRestockReportGenerator(loc),
		History:    history,
		Location:   loc,
		VenueID:    cfg.App.VenueID,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	monitor.Stop()
	monitor.Wait()
	stop()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del consumidor kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
