package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/config"
	"github.com/hongminglow/carrot/internal/http/handlers"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/metrics"
	"github.com/hongminglow/carrot/internal/middleware"
	"github.com/hongminglow/carrot/internal/models"
	"github.com/hongminglow/carrot/internal/service"
	"github.com/hongminglow/carrot/internal/storage/gormstore"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Store    *gormstore.Store
	Tokens   *auth.TokenManager
	Resolver *auth.Resolver
	Verifier *auth.Verifier
	Metrics  *metrics.Metrics
}

// NewDeps builds the auth pipeline over store from configuration.
func NewDeps(cfg config.Config, store *gormstore.Store, m *metrics.Metrics) Deps {
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL(), auth.WithTokenMetrics(m))
	return Deps{
		Store:    store,
		Tokens:   tokens,
		Resolver: auth.NewResolver(store),
		Verifier: auth.NewVerifier(store, tokens, cfg.Auth.DefaultRole, m),
		Metrics:  m,
	}
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return &Server{inner: httpServer}
}

// NewRouter builds the request pipeline: request id, logging, recovery, CORS,
// authentication, authorization, then the route table.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	expose := cfg.Errors.ExposeDetails
	policy := auth.NewPolicy(auth.DefaultRules(cfg.API.BasePath)...)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Authenticate(deps.Tokens, deps.Resolver))
	r.Use(middleware.Authorize(policy, deps.Metrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found", "uri="+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "uri="+r.URL.Path)
	})

	handlers.NewHealthHandler(time.Now(), deps.Store).Register(r)

	api := func(api chi.Router) {
		handlers.NewAuthHandler(deps.Verifier, expose).Register(api)
		handlers.NewUserHandler(deps.Store, deps.Verifier, expose).Register(api)
		registerCRUD[models.Role](api, "/roles", deps.Store, expose)
		registerCRUD[models.Barn](api, "/barns", deps.Store, expose)
		registerCRUD[models.BarnSetting](api, "/barns-settings", deps.Store, expose)
		registerCRUD[models.Bazaar](api, "/bazaars", deps.Store, expose)
		registerCRUD[models.BazaarItem](api, "/bazaars-items", deps.Store, expose)
		registerCRUD[models.Reward](api, "/rewards", deps.Store, expose)
		registerCRUD[models.ShareType](api, "/sharing-types", deps.Store, expose)
		registerCRUD[models.SharingLevel](api, "/sharing-levels", deps.Store, expose)
		registerCRUD[models.Transaction](api, "/transactions", deps.Store, expose)
	}
	if cfg.API.BasePath == "" {
		api(r)
	} else {
		r.Route(cfg.API.BasePath, api)
	}
	return r
}

func registerCRUD[T any, PT service.EntityPtr[T]](r chi.Router, path string, store *gormstore.Store, expose bool) {
	svc := service.NewCRUD[T, PT](gormstore.NewRepository[T](store))
	handlers.NewCRUDHandler(path, svc, expose).Register(r)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
