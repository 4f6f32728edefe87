package db

import "github.com/ether/revpanel/lib/models/revision"

type RevisionMethods interface {
	SaveRevisionMetadata(rev revision.StoredRevision) error
	GetRevisionMetadata(applicationName string, revision string) (*revision.StoredRevision, error)
	// GetLatestRevisionMetadata returns the most recently dated revision of the
	// application. Undated revisions rank behind dated ones; ties go to the
	// most recently saved.
	GetLatestRevisionMetadata(applicationName string) (*revision.StoredRevision, error)
	GetRevisionsOfApplication(applicationName string) ([]revision.StoredRevision, error)
	RemoveRevisionMetadata(applicationName string, revision string) error
}

type DataStore interface {
	RevisionMethods
	Ping() error
	Close() error
}
