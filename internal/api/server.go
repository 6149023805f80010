package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/servak/fabric-manager/internal/api/handler"
	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/logger"
)

// Server exposes the fabric model over a read-only REST API
type Server struct {
	api    huma.API
	router chi.Router
	repo   fabric.Repository
	logger *logger.Logger
}

func NewServer(repo fabric.Repository, builder *clos.Builder, renderer clos.Renderer, appLogger *logger.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestID)

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	config := huma.DefaultConfig("Fabric Manager API", "1.0.0")
	config.DocsPath = "/docs"
	config.Info.Description = "Read-only API over generated Clos fabrics and their device configurations"
	api := humachi.New(router, config)

	server := &Server{
		api:    api,
		router: router,
		repo:   repo,
		logger: appLogger,
	}

	fabricHandler := handler.NewFabricHandler(repo, builder, renderer, appLogger)
	fabricHandler.Register(api)

	healthHandler := handler.NewHealthHandler(repo, appLogger)
	healthHandler.Register(api)

	return server
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.repo.Close()
}
