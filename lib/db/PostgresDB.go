package db

import (
	"database/sql"
	"fmt"
	"net/url"

	sq "github.com/Masterminds/squirrel"
	"github.com/ether/revpanel/lib/db/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresDB struct {
	sqlStore
}

type PostgresOptions struct {
	Username string
	Password string
	Port     int
	Host     string
	Database string
}

func (o PostgresOptions) dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.Username, o.Password),
		Host:     fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:     "/" + o.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewPostgresDB This function creates a new PostgresDB and returns a pointer to it.
func NewPostgresDB(options PostgresOptions, logger *zap.SugaredLogger) (*PostgresDB, error) {
	sqlDb, err := sql.Open("postgres", options.dsn())
	if err != nil {
		return nil, err
	}
	if err := sqlDb.Ping(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	migrationManager := migrations.NewMigrationManager(sqlDb, migrations.DialectPostgres, logger)
	if err := migrationManager.Run(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresDB{sqlStore: newSQLStore(sqlDb, sq.Dollar)}, nil
}

var _ DataStore = (*PostgresDB)(nil)
