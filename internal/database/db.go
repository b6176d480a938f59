// Package database keeps an optional log of answered exchanges.
package database

import (
	"fmt"
	"sync"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/database/model"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Driver       string
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	// MaxLifetime in minutes
	MaxLifetime int
}

var (
	DB     *gorm.DB
	dbCfg  Config
	dbLock sync.Mutex
)

func dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, status.New(status.ConfigurationUnsupported,
			fmt.Errorf("%v: unsupported driver %q", config.ModuleDatabase, cfg.Driver))
	}
}

// connect opens the DB and applies pool configuration
func connect(cfg Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxLifetime > 0 {
		lifetime := time.Duration(cfg.MaxLifetime) * time.Minute
		sqlDB.SetConnMaxIdleTime(lifetime)
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	return db, nil
}

// Init connects and migrates the exchange table.
func Init(cfg Config) error {
	dbLock.Lock()
	defer dbLock.Unlock()

	db, err := connect(cfg)
	if err != nil {
		logger.Error(err, "%v: failed to connect to database", config.ModuleDatabase)
		return err
	}
	if err := db.AutoMigrate(&model.Exchange{}); err != nil {
		logger.Error(err, "%v: failed to migrate", config.ModuleDatabase)
		return err
	}
	DB, dbCfg = db, cfg
	logger.Info("%v: exchange log ready (%s)", config.ModuleDatabase, cfg.Driver)
	return nil
}

// ensureConnection verifies DB connectivity and reconnects if needed
func ensureConnection() error {
	dbLock.Lock()
	defer dbLock.Unlock()

	if DB == nil {
		return fmt.Errorf("%v: not initialised", config.ModuleDatabase)
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Error(err, "%v: failed to get database connection", config.ModuleDatabase)
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		newDB, err := connect(dbCfg)
		if err != nil {
			logger.Error(err, "%v: failed to reconnect", config.ModuleDatabase)
			return err
		}
		DB = newDB
	}
	return nil
}

// GetDB returns a healthy *gorm.DB, attempting reconnect if necessary
func GetDB() (*gorm.DB, error) {
	if err := ensureConnection(); err != nil {
		return nil, err
	}
	return DB, nil
}

// Close releases the pool.
func Close() error {
	dbLock.Lock()
	defer dbLock.Unlock()
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}
