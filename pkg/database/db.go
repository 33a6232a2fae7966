package database

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options describes how to reach Postgres.
type Options struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	Debug    bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	DB      *gorm.DB
	once    sync.Once
	openErr error
)

func (o Options) DSN() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		o.Host, o.User, o.Password, o.Name, o.Port, sslMode,
	)
}

// Connect opens the shared connection pool once. Unique-constraint violations
// are translated to gorm.ErrDuplicatedKey so repositories can detect them.
func Connect(opts Options) (*gorm.DB, error) {
	once.Do(func() {
		DB, openErr = Open(postgres.Open(opts.DSN()), opts)
	})
	return DB, openErr
}

// Open builds a gorm handle over any dialector. Tests use it with a mocked
// sql.DB behind the postgres dialector.
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
