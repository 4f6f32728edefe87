package db

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ether/revpanel/lib/models/revision"
)

func CreateRandomRevision(applicationName string) revision.StoredRevision {
	date := gofakeit.Date().UTC().Truncate(time.Second)
	return revision.StoredRevision{
		ApplicationName: applicationName,
		Revision:        gofakeit.UUID(),
		Metadata: revision.RevisionMetadata{
			Author:  gofakeit.Name(),
			Date:    &date,
			Tags:    []string{gofakeit.AppVersion(), gofakeit.Word()},
			Message: gofakeit.HackerPhrase(),
		},
	}
}
