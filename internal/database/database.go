package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tomlord1122/taskhub/internal/config"
	"github.com/Tomlord1122/taskhub/internal/domain"
)

// Service exposes the shared connection pool to repositories and the health endpoint.
type Service interface {
	Health() map[string]string
	Close() error
	// GetDB returns the GORM handle used for writes and model reads.
	GetDB() *gorm.DB
	// SQLX returns an sqlx handle on the same pool, used by reporting queries.
	SQLX() *sqlx.DB
	Migrate(ctx context.Context) error
}

type service struct {
	db      *gorm.DB
	sqlx    *sqlx.DB
	name    string
	maxIdle int
	logger  *zap.Logger
}

// connMaxLifetime bounds how long a pooled connection is reused.
const connMaxLifetime = time.Hour

// Options tune an Open call.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	GormLogger   gormlogger.Interface
}

// New connects using the database section of the configuration.
func New(cfg config.DatabaseConfig, gormLog gormlogger.Interface, logger *zap.Logger) (Service, error) {
	return Open(cfg.DSN(), cfg.Database, Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		GormLogger:   gormLog,
	}, logger)
}

// Open connects to the given DSN. name is only used in log lines.
func Open(dsn, name string, opts Options, logger *zap.Logger) (Service, error) {
	gormCfg := &gorm.Config{}
	if opts.GormLogger != nil {
		gormCfg.Logger = opts.GormLogger
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return &service{
		db:      db,
		sqlx:    sqlx.NewDb(sqlDB, "pgx"),
		name:    name,
		maxIdle: opts.MaxIdleConns,
		logger:  logger.Named("db"),
	}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) SQLX() *sqlx.DB {
	return s.sqlx
}

// Migrate creates or updates every table the application uses.
func (s *service) Migrate(ctx context.Context) error {
	s.logger.Info("running auto-migration", zap.String("database", s.name))
	err := s.db.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Todo{},
		&domain.ProjectMembership{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	s.logger.Info("auto-migration complete")
	return nil
}

// Health pings the pool and reports its statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		s.logger.Error("health check: get underlying DB", zap.Error(err))
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Warn("db down", zap.Error(err))
		return stats
	}

	dbStats := sqlDB.Stats()
	stats["status"] = "up"
	stats["message"] = poolMessage(dbStats, s.maxIdle)
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["max_open_connections"] = strconv.Itoa(dbStats.MaxOpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	return stats
}

// poolMessage judges pool pressure against the configured limits: the
// max_open_conns cap reported in st and the max_idle_conns setting.
func poolMessage(st sql.DBStats, maxIdle int) string {
	maxOpen := st.MaxOpenConnections
	switch {
	case maxOpen > 0 && st.InUse >= maxOpen && st.WaitCount > 0:
		return fmt.Sprintf("All %d connections are in use and callers waited %s for one; consider raising max_open_conns.",
			maxOpen, st.WaitDuration)
	case maxOpen > 0 && st.InUse*10 >= maxOpen*8:
		return fmt.Sprintf("The database is experiencing heavy load: %d of %d connections in use.", st.InUse, maxOpen)
	case maxIdle > 0 && st.MaxIdleClosed > int64(maxIdle):
		return fmt.Sprintf("%d connections were closed above the max_idle_conns limit of %d; consider raising it.",
			st.MaxIdleClosed, maxIdle)
	case maxOpen > 0 && st.MaxLifetimeClosed > int64(maxOpen):
		return fmt.Sprintf("%d connections were recycled after the %s lifetime; the pool is churning.",
			st.MaxLifetimeClosed, connMaxLifetime)
	}
	return "It's healthy"
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB for closing: %w", err)
	}
	s.logger.Info("closing connection pool", zap.String("database", s.name))
	return sqlDB.Close()
}
