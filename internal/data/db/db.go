package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/bidgate-backend/internal/platform/envutil"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

type Config struct {
	Driver        string
	DSN           string
	SlowThreshold time.Duration
	MaxOpenConns  int
	MaxIdleConns  int
}

// ConfigFromEnv reads DB_DRIVER (postgres or sqlite) and the connection
// settings. With no DATABASE_URL the POSTGRES_* parts are assembled.
func ConfigFromEnv(log *logger.Logger) Config {
	cfg := Config{
		Driver:        strings.ToLower(envutil.String("DB_DRIVER", "postgres", log)),
		DSN:           envutil.String("DATABASE_URL", "", log),
		SlowThreshold: envutil.Duration("DB_SLOW_THRESHOLD", time.Second, log),
		MaxOpenConns:  envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
		MaxIdleConns:  envutil.Int("DB_MAX_IDLE_CONNS", 5, log),
	}
	if cfg.DSN != "" {
		return cfg
	}
	if cfg.Driver == "sqlite" {
		cfg.DSN = envutil.String("SQLITE_PATH", "file:bidgate.db?_busy_timeout=5000", log)
		return cfg
	}
	cfg.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.String("POSTGRES_USER", "postgres", log),
		envutil.String("POSTGRES_PASSWORD", "", log),
		envutil.String("POSTGRES_HOST", "localhost", log),
		envutil.String("POSTGRES_PORT", "5432", log),
		envutil.String("POSTGRES_NAME", "bidgate", log),
		envutil.String("POSTGRES_SSLMODE", "disable", log),
	)
	return cfg
}

// Open connects with the configured driver.
func Open(cfg Config, logg *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "postgresql", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	logg.With("service", "DB").Info("database connected", "driver", cfg.Driver)
	return db, nil
}
