package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"practo-scraper/models"
)

// PostgresWriter mirrors clinic records into PostgreSQL. Optional sink:
// created only when DATABASE_URL is configured. The UNIQUE (clinic,
// location) constraint makes the table a durable dedup boundary as well.
type PostgresWriter struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(connStr string, log zerolog.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	log.Info().Msg("connected to PostgreSQL")
	return &PostgresWriter{db: db, log: log}, nil
}

// CreateTable creates the clinics table if it doesn't exist, with indexes
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS clinics (
		id         SERIAL PRIMARY KEY,
		city       VARCHAR(100) NOT NULL,
		clinic     TEXT         NOT NULL,
		location   TEXT         NOT NULL,
		fee        VARCHAR(20),
		experience VARCHAR(50),
		phone      VARCHAR(20),
		scraped_at VARCHAR(30),
		UNIQUE (clinic, location)
	);

	CREATE INDEX IF NOT EXISTS idx_clinics_city ON clinics (city);
	`
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.log.Info().Msg("table 'clinics' is ready")
	return nil
}

// Append inserts a batch of records in a single transaction, skipping
// rows that collide with an already stored (clinic, location) pair.
func (w *PostgresWriter) Append(records []*models.ClinicRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO clinics (city, clinic, location, fee, experience, phone, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (clinic, location) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, execErr := stmt.Exec(r.City, r.Clinic, r.Location, r.Fee, r.Experience, r.Phone, r.Timestamp); execErr != nil {
			w.log.Warn().Err(execErr).Str("clinic", r.Clinic).Msg("skipping insert")
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.log.Info().Int("inserted", inserted).Int("batch", len(records)).Msg("records mirrored to PostgreSQL")
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}
