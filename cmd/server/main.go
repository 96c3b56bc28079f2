package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"accshift/internal/config"
	"accshift/internal/handler"
	"accshift/internal/i18n"
	"accshift/internal/notify"
	"accshift/internal/service"
	"accshift/internal/store"
	"accshift/internal/weather"
)

func main() {
	cfg := config.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	i18n.Init(cfg.DefaultLocale)

	// Persistence: Mongo-backed key-value store, memory fallback for
	// development without a database.
	var kv store.KeyValueStore
	db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		if cfg.Env == "development" {
			log.Warn().Err(err).Msg("mongodb unavailable, using in-memory store")
			kv = store.NewMemoryStore()
		} else {
			log.Fatal().Err(err).Msg("connect to mongodb")
		}
	} else {
		defer db.Close(context.Background())
		kv = store.NewMongoStore(db)
		log.Info().Str("database", cfg.MongoDB).Msg("connected to mongodb")
	}

	// Repositories
	logs := store.NewLogRepository(kv)
	statuses := store.NewStatusRepository(kv)
	shifts := store.NewShiftRepository(kv)
	notes := store.NewNoteRepository(kv)
	settings := store.NewSettingsRepository(kv)

	// Notifications
	notifier := notify.NewLocalNotifier(nil, log.Logger)
	jobs := notify.NewRegistry(notifier)

	// Services
	sched := service.NewReminderScheduler(jobs, shifts, notes, settings, log.Logger)
	button := service.NewButtonService(logs, statuses, shifts, settings, sched, log.Logger)
	status := service.NewStatusService(logs, statuses, shifts)
	shiftSvc := service.NewShiftService(shifts, settings, sched, log.Logger)
	noteSvc := service.NewNoteService(notes, sched, log.Logger)
	settingsSvc := service.NewSettingsService(settings, shifts, sched, log.Logger)
	weatherClient := weather.NewClient(cfg.ForecastURL, cfg.GeocodeURL)

	// Rebuild note and weather reminder jobs from storage; safe to repeat.
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sched.Resync(startCtx); err != nil {
		log.Warn().Err(err).Msg("reminder resync")
	}
	cancelStart()

	// Routes
	mux := http.NewServeMux()
	handler.NewAttendanceHandler(button, status).RegisterRoutes(mux)
	handler.NewShiftHandler(shiftSvc, noteSvc, settingsSvc, weatherClient).RegisterRoutes(mux)

	// Health checks
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.LoggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("accshift service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
