// Package api exposes the dispatcher over HTTP: POST /run dispatches one
// instruction, GET /read returns a file from the data directory, and
// GET /tasks lists the registered task catalog.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/dataworks/internal/dispatch"
	"github.com/harrison/dataworks/internal/logger"
	"github.com/harrison/dataworks/internal/registry"
)

// Runner is the dispatching surface the server forwards instructions to.
type Runner interface {
	Dispatch(ctx context.Context, instruction string) (*dispatch.Result, error)
}

// Server routes HTTP requests to the dispatcher and the data directory.
type Server struct {
	runner   Runner
	registry *registry.Registry
	root     string
	log      logger.Logger
}

// NewServer creates a Server over a populated registry and dispatcher.
func NewServer(runner Runner, reg *registry.Registry, root string, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		runner:   runner,
		registry: reg,
		root:     root,
		log:      log,
	}
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("GET /read", s.handleRead)
	mux.HandleFunc("GET /tasks", s.handleTasks)
	return mux
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	instruction := r.URL.Query().Get("task")
	if strings.TrimSpace(instruction) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing task query parameter"})
		return
	}

	result, err := s.runner.Dispatch(r.Context(), instruction)
	if err != nil {
		status := classify(err)
		s.log.LogWarn(fmt.Sprintf("run failed (%d): %v", status, err))
		writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing path query parameter"})
		return
	}

	path, ok := s.confine(rel)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("path %q escapes the data directory", rel)})
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("file %s does not exist", rel)})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fmt.Sprintf("cannot read %s", rel)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// taskEntry is one row of the GET /tasks listing.
type taskEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  registry.Schema `json:"parameters"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	descs := s.registry.Descriptors()
	entries := make([]taskEntry, 0, len(descs))
	for _, desc := range descs {
		entries = append(entries, taskEntry{
			Name:        desc.Name,
			Description: desc.Description,
			Parameters:  desc.Parameters,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// confine resolves rel against the data root, refusing anything that
// escapes it.
func (s *Server) confine(rel string) (string, bool) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", false
	}
	pathAbs, err := filepath.Abs(filepath.Clean(filepath.Join(s.root, rel)))
	if err != nil {
		return "", false
	}
	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", false
	}
	return pathAbs, true
}

// classify maps the error taxonomy onto HTTP statuses: bad input is the
// caller's fault (400), unknown names are 404, everything else is 500.
func classify(err error) int {
	if registry.IsArgumentError(err) {
		return http.StatusBadRequest
	}
	if registry.IsUnknownTaskError(err) {
		return http.StatusNotFound
	}
	var te *registry.TaskError
	if errors.As(err, &te) {
		switch te.Kind {
		case registry.KindInvalidInput:
			return http.StatusBadRequest
		case registry.KindNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure here has nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}
