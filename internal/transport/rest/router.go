package rest

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"futurecustomer/docs"
	"futurecustomer/internal/metrics"
	"futurecustomer/internal/service"
	"futurecustomer/internal/transport/rest/handler"
	"futurecustomer/internal/transport/rest/middleware"
	"futurecustomer/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	WorkflowService *service.WorkflowService
	WSHub           *ws.Hub
	Metrics         *metrics.Metrics
	CORSOrigins     []string
	Logger          *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.WorkflowService)
	workflowHandler := handler.NewWorkflowHandler(c.WorkflowService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.WorkflowService, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(requestLogger(logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Open).Methods("POST", "OPTIONS")
	v1.HandleFunc("/swagger.json", swaggerJSON).Methods("GET")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/session", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", health).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	// Session routes (require session auth)
	sessionRoutes := v1.PathPrefix("/session").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("", sessionHandler.Close).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/reset", sessionHandler.Reset).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/agents", workflowHandler.CreateAgents).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/questions", workflowHandler.UploadQuestions).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/scenario", workflowHandler.SubmitScenario).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/gates", workflowHandler.Gates).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/export", workflowHandler.Export).Methods("GET", "OPTIONS")

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func swaggerJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowedOrigins := strings.Join(origins, ", ")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps WebSocket upgrades working behind the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func requestLogger(logger *slog.Logger) mux.MiddlewareFunc {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
		})
	}
}
