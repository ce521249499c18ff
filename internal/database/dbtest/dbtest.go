// Package dbtest starts a throwaway PostgreSQL container for integration tests.
package dbtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tomlord1122/taskhub/internal/database"
)

var (
	once      sync.Once
	container *postgres.PostgresContainer
	shared    database.Service
	startErr  error
)

// New returns a migrated database shared by every test in the package, with
// all tables emptied. The test is skipped under -short or without Docker.
func New(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(start)
	if startErr != nil {
		t.Fatalf("start postgres container: %v", startErr)
	}

	err := shared.GetDB().Exec(
		"TRUNCATE project_memberships, todos, projects, users RESTART IDENTITY CASCADE",
	).Error
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return shared
}

// Terminate stops the container, if one was started. Call it from TestMain.
func Terminate() {
	if shared != nil {
		_ = shared.Close()
	}
	if container != nil {
		_ = testcontainers.TerminateContainer(container)
	}
}

func start() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, startErr = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("taskhub"),
		postgres.WithUsername("taskhub"),
		postgres.WithPassword("taskhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if startErr != nil {
		return
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		startErr = err
		return
	}

	shared, startErr = database.Open(dsn, "taskhub", database.Options{
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		GormLogger:   gormlogger.Default.LogMode(gormlogger.Silent),
	}, zap.NewNop())
	if startErr != nil {
		return
	}
	startErr = shared.Migrate(ctx)
}
