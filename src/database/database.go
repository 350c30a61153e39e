package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/investfolio/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the schema exists.
// Uniqueness of asset symbols and of (asset_id, date) price entries is
// enforced here by the engine, so racing duplicate inserts resolve to
// exactly one success.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	_, err = DB.Exec(Schema)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// Schema creates the three ledger tables. Kept as a constant so tests
// can build a throwaway database with the production schema.
const Schema = `
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		currency TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_id INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		date TEXT NOT NULL,
		quantity REAL NOT NULL,
		price_per_unit REAL NOT NULL,
		fees REAL DEFAULT 0.0,
		FOREIGN KEY (asset_id) REFERENCES assets (id)
	);

	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		price REAL NOT NULL,
		FOREIGN KEY (asset_id) REFERENCES assets (id),
		UNIQUE(asset_id, date)
	);
	`
