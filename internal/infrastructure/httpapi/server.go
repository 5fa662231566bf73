package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/export"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const shutdownTimeout = 5 * time.Second

// RunSource returns the run currently owned by the process, or nil.
type RunSource func() *entity.RunState

type Server struct {
	store  output.ResultStore
	logger output.LoggerPort
	run    RunSource
	router chi.Router
}

func NewServer(store output.ResultStore, logger output.LoggerPort, run RunSource) *Server {
	if run == nil {
		run = func() *entity.RunState { return nil }
	}
	s := &Server{store: store, logger: logger, run: run}

	reqLogger := httplog.NewLogger("chat-harvester", httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(reqLogger))
	r.Use(middleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Post("/stop", s.handleStop)
	r.Get("/results.csv", s.handleExport(export.FormatCSV))
	r.Get("/results.json", s.handleExport(export.FormatJSON))
	r.Delete("/results", s.handleClear)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Control server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("control server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("control server shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

type statusResponse struct {
	Running bool             `json:"running"`
	RunID   string           `json:"run_id,omitempty"`
	Stats   *entity.RunStats `json:"stats,omitempty"`
	Stored  int              `json:"stored"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.LoadAll(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	resp := statusResponse{Stored: len(records)}
	if state := s.run(); state != nil {
		stats := state.Snapshot()
		resp.Running = !stats.Stopped && stats.Next < stats.Total
		resp.RunID = state.ID
		resp.Stats = &stats
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	state := s.run()
	if state == nil {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "no active run"})
		return
	}
	state.Stop()
	s.logger.Info("Stop requested over HTTP", "run_id", state.ID)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping", "run_id": state.ID})
}

func (s *Server) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.store.LoadAll(r.Context())
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", export.ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="qa_results.%s"`, format))
		if err := export.Write(w, format, records); err != nil {
			s.logger.Error("Export failed", "format", format, "error", err)
		}
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("Results cleared over HTTP")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Error("Request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Response encode failed", "error", err)
	}
}
