// Package server contains the web interface and the JSON API.
package server

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/bookio"
	"github.com/mateconpizza/sbm/pkg/db"
)

var (
	ErrServerAlreadyRunning = errors.New("server already running")
	ErrServerNotRunning     = errors.New("server not running")
	ErrDBIsRequired         = errors.New("database is required")
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

type OptFn func(*Options)

type Options struct {
	DB          *db.SQLite
	addr        string
	sessions    *auth.Sessions
	metrics     *Metrics
	corsOrigins []string
	svcOpts     []service.OptFn
}

func WithDB(r *db.SQLite) OptFn {
	return func(o *Options) {
		o.DB = r
	}
}

func WithAddr(addr string) OptFn {
	return func(o *Options) {
		o.addr = addr
	}
}

// WithSessions sets the session store.
func WithSessions(s *auth.Sessions) OptFn {
	return func(o *Options) {
		o.sessions = s
	}
}

// WithMetrics sets the collectors exposed on /metrics.
func WithMetrics(m *Metrics) OptFn {
	return func(o *Options) {
		o.metrics = m
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) OptFn {
	return func(o *Options) {
		o.corsOrigins = origins
	}
}

// WithServiceOpts passes options to the services backing the handlers.
func WithServiceOpts(opts ...service.OptFn) OptFn {
	return func(o *Options) {
		o.svcOpts = append(o.svcOpts, opts...)
	}
}

// Server serves the web interface and the API.
type Server struct {
	*http.Server
	*Options
	isActive  int32
	router    *mux.Router
	pages     map[string]*template.Template
	bookmarks *service.Bookmarks
	port      *service.Port
	auth      *service.Auth
	keys      *service.APIKeys
}

// New returns a server backed by the database given with WithDB.
func New(opts ...OptFn) (*Server, error) {
	o := &Options{}
	for _, fn := range opts {
		fn(o)
	}

	if o.DB == nil {
		return nil, ErrDBIsRequired
	}

	if o.sessions == nil {
		o.sessions = auth.NewSessions(1024, 7*24*time.Hour, false)
	}

	if o.metrics == nil {
		o.metrics = NewMetrics()
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	svcOpts := append([]service.OptFn{
		service.WithObserver(bookio.MultiObserver{bookio.NewLogObserver(slog.Default()), o.metrics}),
	}, o.svcOpts...)

	s := &Server{
		Options:   o,
		pages:     pages,
		bookmarks: service.NewBookmarks(o.DB, svcOpts...),
		port:      service.NewPort(o.DB, svcOpts...),
		auth:      service.NewAuth(o.DB, o.sessions, svcOpts...),
		keys:      service.NewAPIKeys(o.DB, svcOpts...),
	}

	s.router = s.routes()
	s.Server = &http.Server{
		Addr:         o.addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s, nil
}

// Auth returns the auth service used by the server.
func (s *Server) Auth() *service.Auth {
	return s.auth
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	if !atomic.CompareAndSwapInt32(&s.isActive, 0, 1) {
		return ErrServerAlreadyRunning
	}

	slog.Info("server listening", "addr", s.Addr)

	err := s.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.isActive, 1, 0) {
		return ErrServerNotRunning
	}

	slog.Info("server shutting down")

	return s.Server.Shutdown(ctx)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests, s.instrument)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/login", s.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodGet)

	// docs live under /api but are a page for logged in users
	r.Handle("/api/docs/help", s.requireSession(http.HandlerFunc(s.apiDocs))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.corsHandler(), s.requireAPIKey)
	api.HandleFunc("/bookmarks", s.apiListBookmarks).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookmarks", s.apiAddBookmark).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bookmarks/{id:[0-9]+}", s.apiDeleteBookmark).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/tags", s.apiTags).Methods(http.MethodGet, http.MethodOptions)

	pages := r.NewRoute().Subrouter()
	pages.Use(s.requireSession)
	pages.HandleFunc("/", s.index).Methods(http.MethodGet)
	pages.HandleFunc("/tags/{tag}", s.tagPage).Methods(http.MethodGet)
	pages.HandleFunc("/bookmarks/add", s.addBookmark).Methods(http.MethodPost)
	pages.HandleFunc("/bookmarks/{id:[0-9]+}/delete", s.deleteBookmark).Methods(http.MethodPost)
	pages.HandleFunc("/admin", s.admin).Methods(http.MethodGet)
	pages.HandleFunc("/admin/export/netscape", s.exportNetscape).Methods(http.MethodGet)
	pages.HandleFunc("/admin/import/netscape", s.importNetscape).Methods(http.MethodPost)
	pages.HandleFunc("/admin/change-password", s.changePassword).Methods(http.MethodPost)
	pages.HandleFunc("/admin/api-keys/generate", s.generateAPIKey).Methods(http.MethodPost)
	pages.HandleFunc("/admin/api-keys/{id:[0-9]+}/delete", s.deleteAPIKey).Methods(http.MethodPost)
	pages.HandleFunc("/admin/bookmarks/delete-all", s.deleteAllBookmarks).Methods(http.MethodPost)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.DB.DB.PingContext(r.Context()); err != nil {
		slog.Error("health check", "error", err)
		encodeErr(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	encode(w, http.StatusOK, map[string]string{"status": "healthy"})
}
