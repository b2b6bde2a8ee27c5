package repository

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB wraps the activity database connection
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection with connection pool settings
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite serialises writers, a small pool is enough
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// InitSchema creates the database tables and runs migrations
func (s *SQLiteDB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor_id INTEGER NOT NULL,
		actor_name TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log(created_at);
	CREATE INDEX IF NOT EXISTS idx_activity_actor ON activity_log(actor_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.runMigrations()
}

// runMigrations executes pending database migrations
func (s *SQLiteDB) runMigrations() error {
	// Early databases had no error column
	var result string
	err := s.db.QueryRow("SELECT error FROM activity_log LIMIT 1").Scan(&result)
	if err != nil && err != sql.ErrNoRows {
		_, err = s.db.Exec(`ALTER TABLE activity_log ADD COLUMN error TEXT NOT NULL DEFAULT ''`)
		return err
	}
	return nil
}
