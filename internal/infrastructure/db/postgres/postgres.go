package postgres

import (
	"context"
	"fmt"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to open the relational store.
type Config struct {
	DSN     string
	Timeout time.Duration
	// Debug logs every statement through gorm's logger.
	Debug bool
}

// Connect opens a gorm handle on PostgreSQL and verifies connectivity with a
// ping. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	return Open(ctx, pgdriver.Open(cfg.DSN), cfg)
}

// Open is Connect for an arbitrary dialector.
func Open(ctx context.Context, dialector gorm.Dialector, cfg Config) (*gorm.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql handle: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables. Projects reference clients with a
// restricting foreign key: removing a client's projects is the caller's job.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&userModel{},
		&clientModel{},
		&projectModel{},
		&credentialModel{},
	)
}

// Store bundles the repositories that share one gorm handle.
type Store struct {
	db *gorm.DB

	Tx          *Transactor
	Users       *UserRepository
	Clients     *ClientRepository
	Projects    *ProjectRepository
	Credentials *CredentialRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Tx:          NewTransactor(db),
		Users:       NewUserRepository(db),
		Clients:     NewClientRepository(db),
		Projects:    NewProjectRepository(db),
		Credentials: NewCredentialRepository(db),
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
