package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/metrics"
	"github.com/gokatarajesh/quiz-bank/internal/quiz"
	"github.com/gokatarajesh/quiz-bank/internal/server"
	ws "github.com/gokatarajesh/quiz-bank/pkg/http/ws"
)

// Application aggregates shared infrastructure (store, services, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	backend *Backend
	bank    *bank.Repository
	http    *http.Server
}

// New bootstraps the store, the bank, the quiz service and the HTTP server.
func New(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Application, error) {
	logger.Info().Msg("starting application bootstrap")

	backend, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	collectors := metrics.New(prometheus.DefaultRegisterer)
	wsHub := ws.NewHub(logger)

	repo := bank.NewRepository(backend.Store, bank.Options{
		Key:              cfg.Store.Key,
		Observers:        []bank.CountObserver{collectors, wsHub},
		OnMerge:          collectors.ObserveMerge,
		OnImportRejected: collectors.ObserveImportRejected,
	}, logger)

	var sessions quiz.SessionStore = quiz.NewMemorySessions(cfg.Quiz.SessionTTL)
	if backend.Redis != nil {
		sessions = quiz.NewRedisSessions(backend.Redis, cfg.Quiz.SessionTTL)
	}
	quizSvc := quiz.NewService(
		repo,
		quiz.NewGenerator(quiz.GeneratorOptions{MaxQuestions: cfg.Quiz.MaxQuestions}),
		sessions,
		quiz.ServiceOptions{OnGraded: collectors.ObserveResult},
		logger,
	)

	// Seed the gauge so /metrics is right before the first write.
	if n, err := repo.Count(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial bank count failed")
	} else {
		collectors.BankCountChanged(ctx, n)
		logger.Info().Int("questions", n).Msg("bank loaded")
	}

	apiServer := server.NewHTTPServer(cfg, logger, server.Deps{
		Bank:  repo,
		Quiz:  quizSvc,
		Store: backend.Store,
		Hub:   wsHub,
	})

	return &Application{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		bank:    repo,
		http:    apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error().Err(err).Msg("store shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}
