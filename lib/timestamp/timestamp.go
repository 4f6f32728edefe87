package timestamp

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
)

const Layout = "Jan 2 2006 15:04:05"

// Format renders t in UTC followed by its distance to now, e.g.
// "Jan 1 2024 00:00:00 (3 days ago)".
func Format(t time.Time, now time.Time) string {
	return Absolute(t) + " (" + Relative(t, now) + ")"
}

func Absolute(t time.Time) string {
	return t.UTC().Format(Layout)
}

func Relative(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// Component renders the timestamp as a span whose title carries the exact
// RFC 3339 value.
func Component(t time.Time, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="timestamp" title="`+
			templ.EscapeString(t.UTC().Format(time.RFC3339))+`">`+
			templ.EscapeString(Format(t, now))+`</span>`)
		return err
	})
}
