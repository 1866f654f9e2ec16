package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/registry"
	"github.com/lucentlabs/lens/pkg/view"
)

const (
	defaultPreviewLimit = 100
	maxPreviewLimit     = 1000
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// paginatedResponse wraps a row window for tabular display.
type paginatedResponse struct {
	Dataset string           `json:"dataset"`
	Columns []dataset.Column `json:"columns"`
	Rows    [][]string       `json:"rows"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type viewSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.log.Error("failed to write healthz response", "error", err)
	}
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.snapshot() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte("datasets not loaded\n")); err != nil {
			s.log.Error("failed to write readyz response", "error", err)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.log.Error("failed to write readyz response", "error", err)
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cfg.VersionInfo)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	defs := view.Definitions()
	out := make([]viewSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, viewSummary{ID: d.ID, Title: d.Title})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleRenderView(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		s.respondError(w, http.StatusServiceUnavailable, "not_ready", "datasets not loaded yet")
		return
	}

	id := chi.URLParam(r, "id")
	result, err := s.renderer.Render(id, snap)
	if err != nil {
		if errors.Is(err, view.ErrViewNotFound) {
			s.respondError(w, http.StatusNotFound, "view_not_found", "unknown view: "+id)
			return
		}
		s.log.Error("server: render failed", "view", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDatasetReport(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		s.respondError(w, http.StatusServiceUnavailable, "not_ready", "datasets not loaded yet")
		return
	}
	s.respondJSON(w, http.StatusOK, snap.Outcomes())
}

func (s *Server) handleDatasetPreview(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		s.respondError(w, http.StatusServiceUnavailable, "not_ready", "datasets not loaded yet")
		return
	}

	name := chi.URLParam(r, "name")
	if _, ok := registry.Spec(name); !ok {
		s.respondError(w, http.StatusNotFound, "dataset_not_found", "unknown dataset: "+name)
		return
	}
	ds, ok := snap.Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "dataset_unavailable", "dataset failed to load: "+name)
		return
	}

	limit, offset := parsePagination(r)
	rows := ds.Rows
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	s.respondJSON(w, http.StatusOK, paginatedResponse{
		Dataset: ds.Name,
		Columns: ds.Columns,
		Rows:    rows[offset:end],
		Total:   ds.RowCount(),
		Limit:   limit,
		Offset:  offset,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.loader.Invalidate()
	s.renderer.Invalidate()

	snap, err := s.loader.LoadAll(r.Context(), s.sources)
	if err != nil {
		// Keep serving the previous snapshot rather than going dark.
		s.log.Error("server: reload failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.Info("server: reloaded datasets", "loaded", snap.LoadedCount(), "declared", len(s.sources))
	s.respondJSON(w, http.StatusOK, snap.Outcomes())
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPreviewLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxPreviewLimit {
				limit = maxPreviewLimit
			}
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write json response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{Error: code, Message: message})
}
