// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"restoreviews/internal/app"
	"restoreviews/internal/domain"
)

type Handlers struct {
	Q      *app.QueryService
	Loader *app.Loader
	// RefreshTimeout bounds refreshes triggered over HTTP.
	RefreshTimeout time.Duration
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type refreshResponse struct {
	Status     string `json:"status"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Reviews    int    `json:"reviews,omitempty"`
	Dropped    int    `json:"dropped,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/dashboard", h.getDashboard)
	s.mux.Post("/v1/dashboard/refresh", h.refresh)
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/export.csv", h.exportCSV)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any, what string) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msgf("failed to write %s body", what)
	}
}

func noSnapshot(w http.ResponseWriter, err error) bool {
	if errors.Is(err, domain.ErrNoSnapshot) {
		w.Header().Set("Retry-After", "5")
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "no snapshot loaded yet")
		return true
	}
	return false
}

func (h *Handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	policy, ok := domain.ParseSortPolicy(r.URL.Query().Get("sort"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid sort", "sort must be one of rating, likes, recent")
		return
	}
	view, err := h.Q.Dashboard(r.Context(), policy)
	if err != nil {
		if noSnapshot(w, err) {
			return
		}
		log.Error().Err(err).Msg("dashboard query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, r, view, "dashboard")
}

// refresh starts a new generation. By default it returns 202 right away;
// ?wait=true blocks until the snapshot is published.
func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	if h.Loader == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "refresh disabled")
		return
	}
	timeout := h.RefreshTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if _, err := h.Loader.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrSuperseded) {
				log.Warn().Err(err).Msg("async refresh failed")
			}
		}()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(refreshResponse{Status: "accepted"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	snap, err := h.Loader.Refresh(ctx)
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		writeProblem(w, http.StatusConflict, "Superseded", "a newer refresh started")
		return
	case err != nil:
		writeProblem(w, http.StatusBadGateway, "Refresh Failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(refreshResponse{Status: "ready", SnapshotID: snap.ID, Reviews: len(snap.Reviews), Dropped: snap.Dropped})
}

func parseFilter(r *http.Request) (domain.ReviewFilter, bool) {
	q := r.URL.Query()
	f := domain.ReviewFilter{Restaurant: strings.TrimSpace(q.Get("restaurant"))}
	if rs := q.Get("responded"); rs != "" {
		b, err := strconv.ParseBool(rs)
		if err != nil {
			return f, false
		}
		f.Responded = &b
	}
	return f, true
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid responded", "responded must be true or false")
		return
	}
	out, err := h.Q.Reviews(r.Context(), f)
	if err != nil {
		if noSnapshot(w, err) {
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, r, map[string]any{"total": len(out), "reviews": out}, "listReviews")
}

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid responded", "responded must be true or false")
		return
	}
	out, err := h.Q.Reviews(r.Context(), f)
	if err != nil {
		if noSnapshot(w, err) {
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reviews.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := app.WriteCSV(w, out); err != nil {
		log.Error().Err(err).Msg("failed to write csv export")
	}
}
