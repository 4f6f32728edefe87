package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ether/revpanel/lib/models/revision"
)

// splitDate returns the unix seconds and nanosecond remainder of date.
// UnixNano only covers the years 1678 to 2262.
func splitDate(date *time.Time) (int64, int64, bool) {
	if date == nil || date.IsZero() {
		return 0, 0, false
	}
	return date.Unix(), int64(date.Nanosecond()), true
}

func joinDate(seconds int64, nanos int64) *time.Time {
	t := time.Unix(seconds, nanos).UTC()
	return &t
}

// compareNewestFirst orders dated revisions before undated ones, later dates
// first, and falls back to the save time.
func compareNewestFirst(a, b revision.StoredRevision) int {
	aDated, bDated := a.Metadata.HasDate(), b.Metadata.HasDate()
	switch {
	case aDated && !bDated:
		return -1
	case !aDated && bDated:
		return 1
	case aDated && bDated && !a.Metadata.Date.Equal(*b.Metadata.Date):
		if a.Metadata.Date.After(*b.Metadata.Date) {
			return -1
		}
		return 1
	}
	switch {
	case a.UpdatedAt > b.UpdatedAt:
		return -1
	case a.UpdatedAt < b.UpdatedAt:
		return 1
	}
	return 0
}

func sortNewestFirst(revs []revision.StoredRevision) {
	slices.SortStableFunc(revs, compareNewestFirst)
}

func copyStoredRevision(rev revision.StoredRevision) revision.StoredRevision {
	out := rev
	if rev.Metadata.Tags != nil {
		out.Metadata.Tags = slices.Clone(rev.Metadata.Tags)
	}
	if rev.Metadata.Date != nil {
		d := *rev.Metadata.Date
		out.Metadata.Date = &d
	}
	return out
}

type Reader interface {
	Scan(dest ...any) error
}

func readStoredRevision(reader Reader) (*revision.StoredRevision, error) {
	var rev revision.StoredRevision
	var dateUnix, dateNanos sql.NullInt64
	var tags sql.NullString

	if err := reader.Scan(&rev.ApplicationName, &rev.Revision, &rev.Metadata.Author,
		&dateUnix, &dateNanos, &tags, &rev.Metadata.Message, &rev.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if dateUnix.Valid {
		rev.Metadata.Date = joinDate(dateUnix.Int64, dateNanos.Int64)
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &rev.Metadata.Tags); err != nil {
			return nil, fmt.Errorf("error unmarshaling tags: %w", err)
		}
	}
	return &rev, nil
}

// updateClock hands out strictly increasing save stamps so that revisions
// saved in quick succession still order deterministically.
type updateClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newUpdateClock() *updateClock {
	return &updateClock{now: time.Now}
}

func (c *updateClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.now().UnixNano()
	if n <= c.last {
		n = c.last + 1
	}
	c.last = n
	return n
}
