package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/9seconds/relaymap/export"
	"github.com/9seconds/relaymap/relaylib"
)

type handler struct {
	set   relaylib.ClusterSet
	stats *relaylib.Stats
}

func (h *handler) clusters(w http.ResponseWriter, r *http.Request) {
	h.write(w, export.FormatJSON)
}

func (h *handler) geojson(w http.ResponseWriter, r *http.Request) {
	h.write(w, export.FormatGeoJSON)
}

func (h *handler) runStats(w http.ResponseWriter, r *http.Request) {
	encoded, err := json.Marshal(h.stats)
	if err != nil {
		abort(w, http.StatusInternalServerError, err.Error())

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(encoded) // nolint: errcheck
}

func (h *handler) write(w http.ResponseWriter, format string) {
	buf := &bytes.Buffer{}

	if err := export.Write(buf, format, h.set); err != nil {
		abort(w, http.StatusInternalServerError, err.Error())

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes()) // nolint: errcheck
}

// MakeServer returns a router which serves clusters of a finished run.
func MakeServer(set relaylib.ClusterSet, stats *relaylib.Stats) *chi.Mux {
	router := chi.NewRouter()
	registry := prometheus.NewRegistry()
	h := &handler{set: set, stats: stats}

	registerMetrics(registry, set, stats)

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Recoverer)

	router.Get("/", h.clusters)
	router.Get("/geojson", h.geojson)
	router.Get("/stats", h.runStats)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return router
}

func abort(w http.ResponseWriter, code int, message string) {
	msg, _ := json.Marshal(map[string]string{"error": message})
	http.Error(w, string(msg), code)
}
