package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// MoveResponse is returned by the undo, redo and goto endpoints.
type MoveResponse struct {
	Moved   bool                  `json:"moved"`
	History types.HistorySnapshot `json:"history"`
}

func (s *Server) snapshot() types.HistorySnapshot {
	snap := s.service.History().Snapshot()
	if snap.Entries == nil {
		snap.Entries = []types.HistoryEntry{}
	}
	return snap
}

// getHistory handles GET /history.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// clearHistory handles DELETE /history.
func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	s.service.ClearHistory(r.Context())
	writeSuccess(w)
}

// undo handles POST /history/undo.
func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	moved := s.service.Undo(r.Context())
	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, History: s.snapshot()})
}

// redo handles POST /history/redo.
func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	moved := s.service.Redo(r.Context())
	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, History: s.snapshot()})
}

// goTo handles POST /history/goto/{index}. Index -1 moves before the
// first entry.
func (s *Server) goTo(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "index must be an integer")
		return
	}
	snap := s.snapshot()
	if index < -1 || index >= len(snap.Entries) {
		writeErrorWithDetails(w, http.StatusNotFound, ErrCodeNotFound, "History entry not found", map[string]any{
			"index": index,
			"size":  len(snap.Entries),
		})
		return
	}

	moved := s.service.GoTo(r.Context(), index)
	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, History: s.snapshot()})
}

// exportHistory handles GET /history/export.
func (s *Server) exportHistory(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export()
	if err != nil {
		logging.Error().Err(err).Msg("history export failed")
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to export history")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="action-history.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// importHistory handles POST /history/import. The body must be a JSON
// array of history entries; a rejected payload leaves the log unchanged.
func (s *Server) importHistory(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if err := s.service.Import(r.Context(), body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}
