package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the board's persistent state.
type Store struct {
	DB *gorm.DB
}

// New opens and migrates the SQLite database at path. quiet silences gorm's
// own query logging.
func New(path string, quiet bool) (*Store, error) {
	cfg := &gorm.Config{}
	if quiet {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	tunePool(sqlDB, path)

	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{DB: db}, nil
}

// tunePool pins in-memory databases to one connection: every SQLite
// connection would otherwise see its own empty database.
func tunePool(db *sql.DB, path string) {
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(32)
	db.SetConnMaxLifetime(time.Hour)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
