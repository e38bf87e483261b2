package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autolavado/internal/config"
	"autolavado/internal/infra"
	"autolavado/internal/router"
	"autolavado/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "autolavado-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := infra.SetupTracing(ctx, serviceName, cfg.OTELEndpoint, cfg.OTELInsecure)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Side channels ────────────────────────────────────────────────────────
	// Worker handlers are wired here (composition root) so the pool has the
	// SMTP and Telegram clients behind their circuit breakers.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	telegramCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("telegram"))

	mailer := infra.NewMailer(cfg)
	if !mailer.Configurado() {
		log.Warn().Msg("SMTP_HOST vacio: los recordatorios por email iran a la DLQ")
	}
	handlers := &worker.WorkerHandlers{Email: worker.NewEmailWorker(mailer, smtpCB)}

	alertas := false
	if cfg.TelegramBotToken != "" {
		bot, err := infra.NewTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram deshabilitado")
		} else {
			handlers.Telegram = worker.NewTelegramWorker(bot, telegramCB)
			alertas = true
		}
	}
	if !alertas {
		cfg.TelegramBotToken = ""
	}

	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		RDB:       rdb,
		Intervalo: time.Duration(cfg.DLQReintentoMin) * time.Minute,
		Breakers: map[string]*infra.CircuitBreaker{
			worker.QueueEmail:    smtpCB,
			worker.QueueTelegram: telegramCB,
		},
	})

	svcs := router.NuevosServicios(cfg, db, rdb, worker.NewCola(rdb))

	// Dispatch failures never reach the transition; surface them here.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-svcs.Dispatcher.Errores():
				log.Warn().Err(err).Msg("notificacion no entregada")
			}
		}
	}()

	worker.StartRecordatorioCron(ctx, svcs.Citas, time.Duration(cfg.RecordatorioIntervaloMin)*time.Minute)

	r := router.New(cfg, db, rdb, svcs, smtpCB, telegramCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(r, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Autolavado backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
