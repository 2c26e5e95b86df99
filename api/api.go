package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// Server is the API server in front of the answerer and the rebuild pipeline.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if config.Answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if config.Rebuilder == nil {
		return nil, errors.New("rebuilder is required")
	}
	if config.Store == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/intercom", s.handleQuery)
	app.Post("/rebuild_vectorstore", s.handleRebuild)
	app.Get("/stats", s.handleStats)
	app.Get("/snapshot", s.handleSnapshot)
	app.Get("/supplemental", s.handleListSupplemental)
	app.Post("/supplemental", s.handleAddSupplemental)
	app.Get("/search", s.handleSearchEndpoint)

	if config.MCPServer != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
