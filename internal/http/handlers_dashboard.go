package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"treasurydash/internal/core"
	"treasurydash/internal/services"
)

// handlerTimeout bounds sheet-backed requests so a slow upstream cannot hang
// the client.
const handlerTimeout = 15 * time.Second

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboards.Companies())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	payload, err := s.getDashboard(r.Context(), slug)
	if err != nil {
		s.writeDashboardError(w, r, slug, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	payload, err := s.getDashboard(r.Context(), slug)
	if err != nil {
		s.writeDashboardError(w, r, slug, err)
		return
	}
	writeJSON(w, http.StatusOK, payload.Stats)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	payload, err := s.getDashboard(r.Context(), slug)
	if err != nil {
		s.writeDashboardError(w, r, slug, err)
		return
	}
	writeJSON(w, http.StatusOK, payload.Actions)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	snapshotID, err := s.dashboards.Refresh(ctx, slug)
	if err != nil {
		s.writeDashboardError(w, r, slug, err)
		return
	}

	// The next read must rebuild from the fresh snapshot.
	s.payloadCache.Delete(slug)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"company":     slug,
		"snapshot_id": snapshotID,
	})
}

// getDashboard serves a company payload from the LRU cache, building it on miss.
func (s *Server) getDashboard(ctx context.Context, slug string) (*services.DashboardPayload, error) {
	if payload, found := s.payloadCache.Get(slug); found {
		slog.DebugContext(ctx, "Dashboard cache hit", "company", slug)
		return payload, nil
	}

	cctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	payload, err := s.dashboards.Dashboard(cctx, slug)
	if err != nil {
		return nil, err
	}

	s.payloadCache.Set(slug, payload)
	slog.DebugContext(ctx, "Dashboard cached", "company", slug, "source", payload.Source)
	return payload, nil
}

func (s *Server) writeDashboardError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	if errors.Is(err, core.ErrNoData) {
		writeJSONError(w, http.StatusNotFound, "unknown company: "+slug)
		return
	}
	slog.ErrorContext(r.Context(), "Dashboard request failed",
		"company", slug,
		"url", r.URL.Path,
		"error", err)
	writeJSONError(w, http.StatusBadGateway, "dashboard data unavailable")
}
