// Package rest exposes the todokeeper services over HTTP/JSON. Session
// credentials travel in HttpOnly cookies.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const APIPrefix = "/api/v1"

type Server struct {
	address         string
	shutdownTimeout time.Duration

	users       *services.UserService
	todos       *services.TodoService
	attachments *services.AttachmentService

	cookies  cookieSettings
	validate *validator.Validate
	logger   logging.Logger
	handler  http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ts *services.TodoService, as *services.AttachmentService) *Server {
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	s := &Server{
		address:         cfg.EndpointAddrHTTP,
		shutdownTimeout: shutdownTimeout,
		users:           us,
		todos:           ts,
		attachments:     as,
		cookies:         newCookieSettings(cfg),
		validate:        newValidator(),
		logger:          l.With("module", "http_server"),
	}

	router := s.routes()
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
	})

	s.handler = c.Handler(s.correlationID(s.accessLog(s.recoverPanic(router))))
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found", common.CodeNotFound, nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "", nil)
	})

	router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := router.PathPrefix(APIPrefix).Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", s.register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", s.login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	authRoutes.Handle("/logout", s.requireAuth(http.HandlerFunc(s.logout))).Methods(http.MethodPost)
	authRoutes.Handle("/logout-all", s.requireAuth(http.HandlerFunc(s.logoutAll))).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireAuth)
	protected.HandleFunc("/users/me", s.me).Methods(http.MethodGet)

	protected.HandleFunc("/todos", s.createTodo).Methods(http.MethodPost)
	protected.HandleFunc("/todos", s.listTodos).Methods(http.MethodGet)
	protected.HandleFunc("/todos/stats", s.todoStats).Methods(http.MethodGet)
	protected.HandleFunc("/todos/{id}", s.getTodo).Methods(http.MethodGet)
	protected.HandleFunc("/todos/{id}", s.updateTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id}", s.deleteTodo).Methods(http.MethodDelete)
	protected.HandleFunc("/todos/{id}/complete", s.completeTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id}/attachment", s.uploadAttachment).Methods(http.MethodPost)
	protected.HandleFunc("/todos/{id}/attachment", s.downloadAttachment).Methods(http.MethodGet)

	return router
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
