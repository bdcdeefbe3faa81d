package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/noah-isme/maintenance-tracker-api/pkg/config"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLStorage keeps documents as rows of a single table. Works with Postgres and SQLite.
type SQLStorage struct {
	db     *sqlx.DB
	driver Driver
}

// NewPostgres opens a PostgreSQL-backed document store.
func NewPostgres(cfg config.DatabaseConfig) (*SQLStorage, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return open(db, DriverPostgres)
}

// NewSQLite opens (creating if needed) a SQLite-backed document store.
func NewSQLite(path string) (*SQLStorage, error) {
	if path == "" {
		path = "collections.db"
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return open(db, DriverSQLite)
}

// NewSQLStorage wraps an existing handle; the documents table must already exist.
func NewSQLStorage(db *sqlx.DB, driver Driver) *SQLStorage {
	return &SQLStorage{db: db, driver: driver}
}

func open(db *sqlx.DB, driver Driver) (*SQLStorage, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(createDocumentsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLStorage{db: db, driver: driver}, nil
}

func (s *SQLStorage) Driver() Driver { return s.driver }

func (s *SQLStorage) Read(ctx context.Context, name string) ([]byte, error) {
	var body string
	query := s.db.Rebind(`SELECT body FROM documents WHERE name = ?`)
	if err := s.db.GetContext(ctx, &body, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", name, err)
	}
	return []byte(body), nil
}

func (s *SQLStorage) Write(ctx context.Context, name string, data []byte) error {
	query := s.db.Rebind(`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, name, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert document %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}
