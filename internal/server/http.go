package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/kv"
	"github.com/gokatarajesh/quiz-bank/internal/logging"
	"github.com/gokatarajesh/quiz-bank/internal/quiz"
	httperrors "github.com/gokatarajesh/quiz-bank/pkg/http/errors"
	"github.com/gokatarajesh/quiz-bank/pkg/http/ws"
)

// WSUpgrader handles WebSocket upgrades. Origins are already filtered by the CORS layer
// for browsers that send preflights; the count feed carries no private data.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Bank  *bank.Repository
	Quiz  *quiz.Service
	Store kv.Store
	Hub   *ws.Hub
	// Metrics serves /metrics; defaults to the promhttp default handler.
	Metrics http.Handler
}

// NewHTTPServer wires every route of the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, logger, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the chi router; split out so tests can drive it with httptest.
func NewRouter(cfg *config.App, logger zerolog.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "No route for "+r.Method+" "+r.URL.Path)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Get("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingStore(r.Context(), deps.Store); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("store ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "store unreachable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	bh := NewBankHandlers(deps.Bank)
	r.Route("/v1/questions", func(r chi.Router) {
		r.Get("/", bh.List)
		r.Delete("/", bh.Clear)
		r.Get("/count", bh.Count)
		r.Post("/parse", bh.Parse)
		r.Post("/import", bh.Import)
		r.Get("/export", bh.Export)
		r.Put("/{index}", bh.Update)
		r.Delete("/{index}", bh.Delete)
	})

	th := NewTestHandlers(deps.Quiz)
	r.Route("/v1/tests", func(r chi.Router) {
		r.Post("/", th.Start)
		r.Post("/{id}/submit", th.Submit)
	})

	if deps.Hub != nil {
		r.Get("/ws/bank", BankFeedHandler(deps.Hub, deps.Bank, logger))
	}

	return r
}

func pingStore(ctx context.Context, store kv.Store) error {
	if p, ok := store.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// requestLogger stores a request-scoped logger in the context and logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))

			reqLogger.Debug().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request served")
		})
	}
}
