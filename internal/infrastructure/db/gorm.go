package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options tunes the gorm session; the zero value logs warnings to the standard logrus logger.
type Options struct {
	Log      logrus.FieldLogger
	LogLevel logger.LogLevel
	// MaxOpenConns overrides the pool size; sqlite always uses a single connection.
	MaxOpenConns int
}

// Dialector picks the gorm driver for DB_DRIVER.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case DriverMySQL, "":
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func OpenGorm(driver, dsn string, opts Options) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(driver, DriverSQLite) {
		opts.MaxOpenConns = 1
	}
	return OpenGormWithDialector(dial, opts)
}

// OpenGormWithDialector opens, sizes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Options) (*gorm.DB, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}
	if o.MaxOpenConns == 0 {
		o.MaxOpenConns = 30
	}

	cfg := &gorm.Config{
		Logger: logger.New(o.Log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  o.LogLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// pinged below, after the pool is sized
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(min(10, o.MaxOpenConns))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	o.Log.WithField("dialect", dial.Name()).Info("gorm: connected")
	return db, nil
}

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&borrower.Borrower{}, &contract.Contract{}, &schedule.Entry{})
}

// Ping is the health check for the database.
func Ping(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// LogLevel maps the application log level onto gorm's.
func LogLevel(l logrus.Level) logger.LogLevel {
	switch {
	case l >= logrus.DebugLevel:
		return logger.Info
	case l >= logrus.WarnLevel:
		return logger.Warn
	case l >= logrus.ErrorLevel:
		return logger.Error
	default:
		return logger.Silent
	}
}
