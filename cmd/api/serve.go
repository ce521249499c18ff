package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/auth"
	"github.com/Tomlord1122/taskhub/internal/database"
	"github.com/Tomlord1122/taskhub/internal/repository"
	"github.com/Tomlord1122/taskhub/internal/server"
	"github.com/Tomlord1122/taskhub/internal/service"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), *configPath, true)
			if err != nil {
				return err
			}
			if err := a.cfg.ValidateServe(); err != nil {
				a.close()
				return err
			}

			tokens, err := auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
			if err != nil {
				a.close()
				return err
			}

			gormDB := a.db.GetDB()
			services := server.Services{
				Users:    service.NewUserService(repository.NewGormUserRepository(gormDB), tokens, a.logger),
				Todos:    service.NewTodoService(repository.NewGormTodoRepository(gormDB), a.cfg.Todos.PageSize, a.logger),
				Projects: service.NewProjectService(repository.NewGormProjectRepository(gormDB), a.logger),
				Reports:  service.NewReportService(repository.NewSqlxReportRepository(a.db.SQLX()), a.logger),
			}

			apiServer := server.NewServer(a.cfg.Port, services, a.db, a.logger)

			done := make(chan struct{})
			go gracefulShutdown(apiServer, a.db, a.logger, done)

			a.logger.Info("starting server", zap.String("addr", apiServer.Addr))
			if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.close()
				return err
			}

			<-done
			a.logger.Info("graceful shutdown complete")
			_ = a.logger.Sync()
			return nil
		},
	}
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, logger *zap.Logger, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight requests get five seconds to finish.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("closing database connection pool")
	if err := dbService.Close(); err != nil {
		logger.Error("closing database connection pool", zap.Error(err))
	}

	close(done)
}
