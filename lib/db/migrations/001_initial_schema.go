package migrations

import (
	"database/sql"
)

// GetMigrations returns all available migrations
func GetMigrations() []Migration {
	return []Migration{
		migration001InitialSchema(),
		migration002LatestIndex(),
	}
}

func migration001InitialSchema() Migration {
	return Migration{
		Version:     1,
		Description: "Initial schema - revision metadata",
		Up: func(db *sql.DB, dialect Dialect) error {
			// Dates are split into unix seconds and the nanosecond remainder so
			// that every year an RFC 3339 date can carry fits and orders the
			// same across dialects.
			_, err := db.Exec(`CREATE TABLE IF NOT EXISTS revision_metadata (
				application TEXT NOT NULL,
				revision TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				date_unix BIGINT DEFAULT NULL,
				date_nanos INTEGER DEFAULT NULL,
				tags TEXT DEFAULT NULL,
				message TEXT NOT NULL DEFAULT '',
				updated_at BIGINT NOT NULL DEFAULT 0,
				PRIMARY KEY (application, revision)
			)`)
			return err
		},
	}
}

func migration002LatestIndex() Migration {
	return Migration{
		Version:     2,
		Description: "Index for latest revision lookups",
		Up: func(db *sql.DB, dialect Dialect) error {
			_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_revision_metadata_latest
				ON revision_metadata (application, date_unix, date_nanos, updated_at)`)
			return err
		},
	}
}
