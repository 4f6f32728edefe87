package db

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ether/revpanel/lib/db/migrations"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	sqlStore
	path string
}

// NewSQLiteDB creates a new SQLiteDB and returns a pointer to it.
func NewSQLiteDB(path string, logger *zap.SugaredLogger) (*SQLiteDB, error) {
	if path == ":memory" || path == ":memory:" {
		path = "file::memory:?cache=shared"
	}

	sqlDb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if strings.Contains(path, ":memory:") {
		sqlDb.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err = sqlDb.Exec(pragma); err != nil {
			sqlDb.Close()
			return nil, err
		}
	}

	migrationManager := migrations.NewMigrationManager(sqlDb, migrations.DialectSQLite, logger)
	if err := migrationManager.Run(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteDB{
		sqlStore: newSQLStore(sqlDb, sq.Question),
		path:     path,
	}, nil
}

var _ DataStore = (*SQLiteDB)(nil)
