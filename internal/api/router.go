// Package api serves the bot's HTTP surface: health, metrics, symbol
// snapshots and user overrides.
package api

import (
	"context"
	"net/http"
	"time"

	"trailingbot/internal/logger"
	"trailingbot/internal/metrics"
	"trailingbot/internal/models"
	"trailingbot/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type SnapshotLister interface {
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
}

// OverrideSubmitter hands user overrides to the symbol queues.
type OverrideSubmitter interface {
	SubmitOverride(symbol string, job queue.Job) error
}

type Router struct {
	snapshots SnapshotLister
	overrides OverrideSubmitter
	log       *logger.Logger
}

func NewRouter(snapshots SnapshotLister, overrides OverrideSubmitter, log *logger.Logger) *Router {
	return &Router{snapshots: snapshots, overrides: overrides, log: log}
}

func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/symbols", func(r chi.Router) {
		r.Get("/", rt.listSymbols)
		r.Route("/{symbol}", func(r chi.Router) {
			r.Post("/trigger-buy", rt.triggerBuy)
			r.Post("/trigger-sell", rt.triggerSell)
			r.Post("/cancel-order", rt.cancelOrder)
			r.Post("/manual-trade", rt.manualTrade)
		})
	})
	return r
}

func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		rt.log.WithComponent("api").WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Request served.")
	})
}
