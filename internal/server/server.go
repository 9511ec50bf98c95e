package server

import (
	"net/http"

	"todo-records/internal/config"
	"todo-records/internal/database"
	"todo-records/internal/service"
)

type Server struct {
	cfg         config.Config
	todoService service.TodoService
	db          database.Service
}

// NewServer builds the http.Server with the configured port and timeouts.
func NewServer(cfg config.Config, todoService service.TodoService, dbService database.Service) *http.Server {
	appServer := &Server{
		cfg:         cfg,
		todoService: todoService,
		db:          dbService,
	}

	return &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
}
