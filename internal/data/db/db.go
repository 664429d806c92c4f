package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type DatabaseService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewDatabaseService(cfg config.DBConfig, logg *logger.Logger) (*DatabaseService, error) {
	serviceLog := logg.With("service", "DatabaseService", "driver", cfg.Driver)

	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   NewGormLogger(serviceLog, cfg.SlowQueryThreshold),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	switch cfg.Driver {
	case config.DriverSQLite:
		// a single writer avoids SQLITE_BUSY under concurrent handlers
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec(`PRAGMA foreign_keys = ON;`).Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	default:
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.MaxOpenConns / 2)
		}
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	serviceLog.Info("Database connected")
	return &DatabaseService{db: db, driver: cfg.Driver, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB { return s.db }

func (s *DatabaseService) Driver() string { return s.driver }

func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.SugaredLogger.Warnf(format, args...)
}

// NewGormLogger routes gorm's warnings and slow queries into zap.
func NewGormLogger(log *logger.Logger, slow time.Duration) gormLogger.Interface {
	if slow <= 0 {
		slow = time.Second
	}
	return gormLogger.New(
		gormWriter{log: log.With("component", "gorm")},
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
