package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agentloop/agentloop/internal/agentlog"
)

var (
	resultOK        = map[string]string{"result": "ok"}
	errQueueFull    = map[string]string{"error": "Command queue is full, try again later"}
	errInvalidPath  = map[string]string{"error": "not found"}
	errInvalidMethod = map[string]string{"error": "method not allowed"}
	errInternal     = map[string]string{"error": "internal server error"}
)

// Handler is the HTTP control plane: one status endpoint plus four command
// endpoints, routed with gorilla/mux (tabular/server/server.go's router
// construction, generalized from view routes to control routes).
type Handler struct {
	status *SystemStatusProvider
	queue  *CommandQueue
	router *mux.Router
	log    *agentlog.Logger
}

// NewHandler builds the router and registers all endpoints from spec §4.13.
func NewHandler(status *SystemStatusProvider, queue *CommandQueue, log *agentlog.Logger) *Handler {
	h := &Handler{status: status, queue: queue, log: agentlog.Named(log, "httpapi")}

	r := mux.NewRouter()
	r.HandleFunc("/api/status", h.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/pause", h.handleCommand(CommandPause)).Methods(http.MethodPost)
	r.HandleFunc("/api/resume", h.handleCommand(CommandResume)).Methods(http.MethodPost)
	r.HandleFunc("/api/shutdown", h.handleCommand(CommandShutdown)).Methods(http.MethodPost)
	r.HandleFunc("/api/save-state", h.handleCommand(CommandSaveCheckpoint)).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(h.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.handleMethodNotAllowed)
	h.router = r

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Err().Interface("panic", rec).Log("panic handling http request")
			writeJSON(w, http.StatusInternalServerError, errInternal)
		}
	}()
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": string(h.status.CurrentStatus())})
}

func (h *Handler) handleCommand(cmd ControlCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.queue.TryPut(cmd) {
			writeJSON(w, http.StatusServiceUnavailable, errQueueFull)
			return
		}
		writeJSON(w, http.StatusOK, resultOK)
	}
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errInvalidPath)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errInvalidMethod)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Server wraps an *http.Server configured with Handler, started and stopped
// from the control thread's on_start/on_finally hooks. Log level is
// error-only, matching spec §6's "server log level is error-only by default".
type Server struct {
	httpServer *http.Server
	log        *agentlog.Logger
}

// NewServer constructs a server bound to addr.
func NewServer(addr string, handler *Handler, log *agentlog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: handler},
		log:        agentlog.Named(log, "httpapi"),
	}
}

// RunInBackground starts the server on its own goroutine, logging (not
// panicking) on failure, the way ControlThread.on_start spawns the web API
// handler as a daemon thread.
func (s *Server) RunInBackground() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Err().Err(err).Log("http control plane stopped unexpectedly")
		}
	}()
}

// Shutdown gracefully stops the server, bounded by the given timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
