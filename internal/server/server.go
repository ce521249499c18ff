package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/database"
	"github.com/Tomlord1122/taskhub/internal/service"
)

// Services bundles the application services the HTTP layer calls into.
type Services struct {
	Users    service.UserService
	Todos    service.TodoService
	Projects service.ProjectService
	Reports  service.ReportService
}

type Server struct {
	port     int
	services Services
	db       database.Service
	logger   *zap.Logger
}

func NewServer(port int, services Services, dbService database.Service, logger *zap.Logger) *http.Server {
	appServer := &Server{
		port:     port,
		services: services,
		db:       dbService,
		logger:   logger.Named("http"),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(appServer.logger),
	}

	return server
}
