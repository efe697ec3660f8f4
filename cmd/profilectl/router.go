package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

// newRouter serves health, metrics, profile views and version rollback.
func newRouter(svc *profile.Service, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Get("/traits", func(w http.ResponseWriter, req *http.Request) {
			rec, err := svc.Traits(req.Context(), chi.URLParam(req, "userID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"user_id":    rec.UserID,
				"version_id": rec.VersionID,
				"traits":     rec.Traits,
			})
		})
		r.Get("/layers", func(w http.ResponseWriter, req *http.Request) {
			view, err := svc.Layers(req.Context(), chi.URLParam(req, "userID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, view)
		})
		r.Get("/history", func(w http.ResponseWriter, req *http.Request) {
			limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
			records, err := svc.History(req.Context(), chi.URLParam(req, "userID"), limit)
			if err != nil {
				writeError(w, err)
				return
			}
			rows := make([]map[string]any, 0, len(records))
			for _, rec := range records {
				rows = append(rows, map[string]any{
					"version_id": rec.VersionID,
					"parent_id":  rec.ParentID,
					"created_at": rec.CreatedAt,
					"traits":     rec.Traits,
				})
			}
			writeJSON(w, http.StatusOK, rows)
		})
		r.Post("/rollback/{versionID}", func(w http.ResponseWriter, req *http.Request) {
			userID := chi.URLParam(req, "userID")
			if err := svc.Rollback(req.Context(), userID, chi.URLParam(req, "versionID")); err != nil {
				writeError(w, err)
				return
			}
			rec, err := svc.Traits(req.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"user_id":    rec.UserID,
				"version_id": rec.VersionID,
				"traits":     rec.Traits,
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, profile.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, traitstore.ErrNotFound):
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
