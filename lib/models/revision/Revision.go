package revision

import "time"

// RevisionMetadata describes a single revision of an application's source.
// Author, Date and Tags are optional: an empty Author, a nil Date and an empty
// Tags slice all mean the field is absent.
type RevisionMetadata struct {
	Author  string     `json:"author,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Tags    []string   `json:"tags,omitempty"`
	Message string     `json:"message"`
}

func (m RevisionMetadata) HasAuthor() bool {
	return m.Author != ""
}

func (m RevisionMetadata) HasDate() bool {
	return m.Date != nil && !m.Date.IsZero()
}

func (m RevisionMetadata) HasTags() bool {
	return len(m.Tags) > 0
}

// StoredRevision is the persisted form of a revision's metadata.
type StoredRevision struct {
	ApplicationName string           `json:"applicationName"`
	Revision        string           `json:"revision"`
	Metadata        RevisionMetadata `json:"metadata"`
	UpdatedAt       int64            `json:"updatedAt"`
}
