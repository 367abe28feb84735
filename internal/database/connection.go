package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection backing the local progress cache.
var DB *sqlx.DB

// Connect establishes the cache database connection. When DATABASE_URL is
// set the cache lives in Postgres (shared-host deployments); otherwise a
// SQLite file under STUDY_DATA_DIR (default "data") is used.
func Connect() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
		DB = db
		return initializeSchema()
	}

	dataDir := os.Getenv("STUDY_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "studycore.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// ConnectMemory opens an in-memory SQLite cache. Used by tests.
func ConnectMemory() error {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Per-card review state, namespaced by user and pack
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS card_states (
			user_id TEXT NOT NULL,
			pack_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			seen INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			wrong INTEGER NOT NULL DEFAULT 0,
			level TEXT NOT NULL DEFAULT 'new',
			difficulty TEXT NOT NULL DEFAULT 'medium',
			interval_days INTEGER NOT NULL DEFAULT 0,
			last_review_date TEXT NOT NULL DEFAULT '',
			next_review_date TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, pack_id, card_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create card_states table: %v", err)
	}

	// Consecutive-day streak and daily progress counter
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS streaks (
			user_id TEXT PRIMARY KEY,
			last_study_date TEXT NOT NULL DEFAULT '',
			current_streak INTEGER NOT NULL DEFAULT 0,
			daily_progress_date TEXT NOT NULL DEFAULT '',
			daily_progress_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create streaks table: %v", err)
	}

	// Per-user preferences: goal, timezone, session algorithm, device id
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY,
			daily_goal INTEGER NOT NULL DEFAULT 20,
			timezone TEXT NOT NULL DEFAULT '',
			algorithm TEXT NOT NULL DEFAULT '',
			algo_preset TEXT NOT NULL DEFAULT 'balanced',
			device_id TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_settings table: %v", err)
	}

	return nil
}
