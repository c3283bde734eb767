package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// MaxBodySize bounds command and import payloads.
const MaxBodySize = 4 << 20

// ValidateResponse is returned by POST /actions/validate.
type ValidateResponse struct {
	Valid    bool             `json:"valid"`
	Commands []action.Command `json:"commands"`
	Errors   []string         `json:"errors"`
}

// SchemaResponse is returned by GET /actions/schema.
type SchemaResponse struct {
	Commands    []action.Spec `json:"commands"`
	Modes       []string      `json:"modes"`
	EditorTones []string      `json:"editorTones"`
	MinStep     int           `json:"minStep"`
	MaxStep     int           `json:"maxStep"`
}

// readBody reads the request body, writing the error response itself when
// it fails.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Failed to read request body")
		return nil, false
	}
	return data, true
}

// runOptions overlays the skipErrors and silent query parameters onto the
// server defaults.
func (s *Server) runOptions(r *http.Request) (executor.Options, error) {
	opts := s.defaultOptions()
	q := r.URL.Query()
	for name, dst := range map[string]*bool{"skipErrors": &opts.SkipErrors, "silent": &opts.Silent} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid " + name + " parameter")
		}
		*dst = b
	}
	return opts, nil
}

// runActions handles POST /actions. The body is the raw command payload as
// produced by the model.
func (s *Server) runActions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.runOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	report := s.service.Run(r.Context(), string(body), opts)
	writeJSON(w, http.StatusOK, report)
}

// validateActions handles POST /actions/validate. Nothing is executed.
func (s *Server) validateActions(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	result := action.ParseCommands(string(body))
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:    result.OK() && len(result.Commands) > 0,
		Commands: result.Commands,
		Errors:   result.Errors,
	})
}

// getSchema handles GET /actions/schema.
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{
		Commands:    action.Specs(),
		Modes:       action.Modes,
		EditorTones: action.EditorTones,
		MinStep:     action.MinStep,
		MaxStep:     action.MaxStep,
	})
}

// getState handles GET /state.
func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.host.State())
}

// getStats handles GET /stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Executor().Stats())
}

// listReports handles GET /reports.
func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	reports := s.service.Executor().Reports()
	if reports == nil {
		reports = []*types.ExecutionReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// clearReports handles DELETE /reports.
func (s *Server) clearReports(w http.ResponseWriter, r *http.Request) {
	s.service.Executor().ClearHistory()
	writeSuccess(w)
}
