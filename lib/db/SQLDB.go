package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ether/revpanel/lib/models/revision"
)

var revisionColumns = []string{
	"application", "revision", "author", "date_unix", "date_nanos", "tags", "message", "updated_at",
}

// sqlStore implements DataStore on top of database/sql. SQLiteDB and
// PostgresDB only differ in how they open the connection and in the
// placeholder format.
type sqlStore struct {
	sqlDB   *sql.DB
	builder sq.StatementBuilderType
	clock   *updateClock
}

func newSQLStore(sqlDB *sql.DB, placeholder sq.PlaceholderFormat) sqlStore {
	return sqlStore{
		sqlDB:   sqlDB,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		clock:   newUpdateClock(),
	}
}

func (d sqlStore) SaveRevisionMetadata(rev revision.StoredRevision) error {
	var tags any
	if rev.Metadata.HasTags() {
		marshalled, err := json.Marshal(rev.Metadata.Tags)
		if err != nil {
			return fmt.Errorf("error marshaling tags: %w", err)
		}
		tags = string(marshalled)
	}

	var dateUnix, dateNanos any
	if seconds, nanos, ok := splitDate(rev.Metadata.Date); ok {
		dateUnix, dateNanos = seconds, nanos
	}

	resultedSQL, args, err := d.builder.
		Insert("revision_metadata").
		Columns(revisionColumns...).
		Values(rev.ApplicationName, rev.Revision, rev.Metadata.Author, dateUnix, dateNanos, tags,
			rev.Metadata.Message, d.clock.next()).
		Suffix(`ON CONFLICT(application, revision) DO UPDATE SET
			author = excluded.author,
			date_unix = excluded.date_unix,
			date_nanos = excluded.date_nanos,
			tags = excluded.tags,
			message = excluded.message,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = d.sqlDB.Exec(resultedSQL, args...)
	return err
}

func (d sqlStore) GetRevisionMetadata(applicationName string, rev string) (*revision.StoredRevision, error) {
	resultedSQL, args, err := d.builder.
		Select(revisionColumns...).
		From("revision_metadata").
		Where(sq.Eq{"application": applicationName, "revision": rev}).
		ToSql()
	if err != nil {
		return nil, err
	}

	stored, err := readStoredRevision(d.sqlDB.QueryRow(resultedSQL, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRevisionNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (d sqlStore) newestFirst(applicationName string) sq.SelectBuilder {
	return d.builder.
		Select(revisionColumns...).
		From("revision_metadata").
		Where(sq.Eq{"application": applicationName}).
		OrderBy("date_unix IS NULL", "date_unix DESC", "date_nanos DESC", "updated_at DESC")
}

func (d sqlStore) GetLatestRevisionMetadata(applicationName string) (*revision.StoredRevision, error) {
	resultedSQL, args, err := d.newestFirst(applicationName).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	stored, err := readStoredRevision(d.sqlDB.QueryRow(resultedSQL, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRevisionNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (d sqlStore) GetRevisionsOfApplication(applicationName string) ([]revision.StoredRevision, error) {
	resultedSQL, args, err := d.newestFirst(applicationName).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := d.sqlDB.Query(resultedSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revs := make([]revision.StoredRevision, 0)
	for rows.Next() {
		stored, err := readStoredRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, *stored)
	}
	return revs, rows.Err()
}

func (d sqlStore) RemoveRevisionMetadata(applicationName string, rev string) error {
	resultedSQL, args, err := d.builder.
		Delete("revision_metadata").
		Where(sq.Eq{"application": applicationName, "revision": rev}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := d.sqlDB.Exec(resultedSQL, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRevisionNotFound
	}
	return nil
}

func (d sqlStore) Ping() error {
	return d.sqlDB.Ping()
}

func (d sqlStore) Close() error {
	return d.sqlDB.Close()
}
