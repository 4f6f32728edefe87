// Package metadata looks up revision metadata for applications.
//
// Every Fetcher treats an empty revision as "the latest revision" of the
// application and reports unknown revisions with
// exception.RevisionNotFoundError.
package metadata

import (
	"context"
	"errors"

	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/models/revision"
)

type Fetcher interface {
	RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error)
}

// Invalidator is implemented by fetchers that keep lookups around and must be
// told when stored metadata changes.
type Invalidator interface {
	Invalidate(applicationName string, rev string)
}

type FetcherFunc func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error)

func (f FetcherFunc) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	return f(ctx, applicationName, rev)
}

// IsNotFound reports whether err means the application or revision is unknown.
func IsNotFound(err error) bool {
	var revErr *exception.RevisionNotFoundError
	var appErr *exception.ApplicationNotFoundError
	return errors.As(err, &revErr) || errors.As(err, &appErr)
}
