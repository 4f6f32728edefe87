package panel

import (
	"strings"
	"time"

	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/timestamp"
)

const (
	authoredByPrefix = "Authored by "
	taggedPrefix     = "Tagged "
	tagsPrefix       = "Tags: "
	tagSeparator     = ", "
)

func authoredBy(m revision.RevisionMetadata) string {
	return authoredByPrefix + m.Author
}

func joinTags(m revision.RevisionMetadata) string {
	return strings.Join(m.Tags, tagSeparator)
}

// CompactLines is the label text: the author line and the tag line when
// present, then the message verbatim.
func CompactLines(m revision.RevisionMetadata) []string {
	lines := make([]string, 0, 3)
	if m.HasAuthor() {
		lines = append(lines, authoredBy(m))
	}
	if m.HasTags() {
		lines = append(lines, taggedPrefix+joinTags(m))
	}
	return append(lines, m.Message)
}

// TooltipLines is the expanded text: author and timestamp share the first
// line, followed by the tags and the message.
func TooltipLines(m revision.RevisionMetadata, now time.Time) []string {
	lines := make([]string, 0, 3)

	var first []string
	if m.HasAuthor() {
		first = append(first, authoredBy(m))
	}
	if m.HasDate() {
		first = append(first, timestamp.Format(*m.Date, now))
	}
	if len(first) > 0 {
		lines = append(lines, strings.Join(first, " "))
	}
	if m.HasTags() {
		lines = append(lines, tagsPrefix+joinTags(m))
	}
	return append(lines, m.Message)
}
