package metadata

import (
	"context"
	"errors"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/models/revision"
	"go.uber.org/zap"
)

// StoreFetcher serves metadata that was saved into a DataStore.
type StoreFetcher struct {
	store  db.DataStore
	logger *zap.SugaredLogger
}

func NewStoreFetcher(store db.DataStore, logger *zap.SugaredLogger) *StoreFetcher {
	return &StoreFetcher{store: store, logger: logger}
}

func (s *StoreFetcher) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored *revision.StoredRevision
	var err error
	if rev == "" {
		stored, err = s.store.GetLatestRevisionMetadata(applicationName)
	} else {
		stored, err = s.store.GetRevisionMetadata(applicationName, rev)
	}

	if err != nil {
		if errors.Is(err, db.ErrRevisionNotFound) {
			return nil, exception.NewRevisionNotFoundError(applicationName, rev, err)
		}
		s.logger.Errorw("error reading revision metadata", "application", applicationName, "revision", rev, "error", err)
		return nil, exception.NewDatabaseError("error reading revision metadata", err)
	}
	return &stored.Metadata, nil
}
