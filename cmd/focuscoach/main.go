package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"focuscoach/internal/config"
	"focuscoach/internal/httpapi"
	"focuscoach/internal/planner"
	"focuscoach/internal/provider"
	"focuscoach/internal/push"
	"focuscoach/internal/repository"
	"focuscoach/internal/service"
	"focuscoach/internal/store"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:          "focuscoach",
		Short:        "Daily planning backend with voice input, flame streaks and push reminders",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(), newVAPIDKeygenCmd())
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newVAPIDKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keygen",
		Short: "Generate a VAPID key pair for Web Push",
		RunE: func(cmd *cobra.Command, args []string) error {
			private, public, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)
			return nil
		},
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	if err := categoryRepo.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	plans, err := store.NewPlanStore(cfg.PlanStorePath)
	if err != nil {
		return fmt.Errorf("plan store: %w", err)
	}

	var (
		generator service.PlanGenerator
		whisperT  service.Transcriber
		geminiT   service.Transcriber
		impulse   service.ImpulseWriter
	)
	if cfg.GoogleAPIKey != "" {
		gemini, err := provider.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("gemini: %w", err)
		}
		generator, geminiT, impulse = gemini, gemini, gemini
	} else {
		log.Warn("GOOGLE_API_KEY missing, plan generation disabled")
	}
	if cfg.OpenAIAPIKey != "" {
		whisper, err := provider.NewWhisper(cfg.OpenAIAPIKey)
		if err != nil {
			return fmt.Errorf("whisper: %w", err)
		}
		whisperT = whisper
	}

	var sender service.PushSender
	if cfg.HasPushCredentials() {
		s, err := push.NewSender(cfg.VAPIDSubject, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		if err != nil {
			return fmt.Errorf("push sender: %w", err)
		}
		sender = s
	} else {
		log.Warn("VAPID keys missing, push delivery disabled")
	}

	plannerSvc := service.NewPlannerService(service.PlannerDeps{
		Generator:  generator,
		Whisper:    whisperT,
		Gemini:     geminiT,
		Plans:      plans,
		Events:     eventRepo,
		Categories: categoryRepo,
		Defaults: planner.Options{
			Timezone:  cfg.DefaultTimezone,
			StartHour: cfg.DayStartHour,
			EndHour:   cfg.DayEndHour,
		},
		Log: log,
	})
	eventSvc := service.NewEventService(eventRepo, categoryRepo, log)
	flameSvc := service.NewFlameService(categoryRepo, eventRepo, cfg.GraceHours, log)
	dispatchSvc := service.NewDispatchService(prefRepo, subRepo, impulse, sender, cfg.DefaultTimezone, log)

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		loc = time.Local
	}
	scheduler := service.NewSchedulerService(loc)
	if _, err := scheduler.ScheduleEveryMinute(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		dispatchSvc.Run(jobCtx, time.Now())
	}); err != nil {
		return fmt.Errorf("schedule dispatch: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	api := httpapi.NewServer(httpapi.Deps{
		Planner: plannerSvc,
		Events:  eventSvc,
		Flames:  flameSvc,
		Prefs:   prefRepo,
		Subs:    subRepo,
		Sender:  sender,
		Config:  cfg,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("shutdown complete")
	return nil
}
