package database

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// InitDB opens the database and migrates it to the latest schema. A local
// SQLite file (or ":memory:") is used when primaryUrl is empty, otherwise the
// remote Turso database. The returned teardown closes the connection.
func InitDB(dbPath string, primaryUrl string, authToken string, migrationsDir string) (*sql.DB, func(), error) {
	if primaryUrl == "" {
		log.Info("Initializing local-only SQLite database", "path", dbPath)
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local database: %w", err)
		}
		// Every connection to ":memory:" is a fresh database.
		db.SetMaxOpenConns(1)
		if err = applyPragmas(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err = migrate(db, "sqlite3", migrationsDir); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate local db: %w", err)
		}
		return db, teardown(db), nil
	}

	log.Info("Initializing Turso database", "url", primaryUrl)
	db, err := sql.Open("libsql", primaryUrl+"?authToken="+authToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db %s: %w", primaryUrl, err)
	}
	if err = migrate(db, "turso", migrationsDir); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate remote db: %w", err)
	}
	return db, teardown(db), nil
}

func teardown(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
}

func applyPragmas(db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"foreign_keys", "ON"},
		{"busy_timeout", "5000"},
		{"synchronous", "NORMAL"},
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)); err != nil {
			log.Error("Failed to set pragma", "pragma", pragma.name, "error", err)
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
		log.Debug("SQLite pragma set", "pragma", pragma.name, "value", pragma.value)
	}
	return nil
}

func migrate(db *sql.DB, dialect string, dir string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}
	log.Info("Database initialized successfully", "dialect", dialect)
	return nil
}
