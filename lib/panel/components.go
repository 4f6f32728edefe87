package panel

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/timestamp"
)

const lineBreak = "<br/>"

// Tooltip wraps child so that content shows on hover and focus.
func Tooltip(content templ.Component, placement Placement, child templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="tooltip tooltip--`+templ.EscapeString(string(placement))+
			`" data-placement="`+templ.EscapeString(string(placement))+`" tabindex="0">`); err != nil {
			return err
		}
		if err := child.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div class="tooltip__content" role="tooltip">`); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div>`)
		return err
	})
}

// Compact renders the label shown in place.
func Compact(m revision.RevisionMetadata) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html := `<div class="application-status-panel__item-name">`
		if m.HasAuthor() {
			html += templ.EscapeString(authoredBy(m)) + lineBreak
		}
		if m.HasTags() {
			html += `<span>` + templ.EscapeString(taggedPrefix+joinTags(m)) + lineBreak + `</span>`
		}
		html += templ.EscapeString(m.Message) + `</div>`
		_, err := io.WriteString(w, html)
		return err
	})
}

// Expanded renders the tooltip content.
func Expanded(m revision.RevisionMetadata, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<span>`); err != nil {
			return err
		}
		if m.HasAuthor() {
			if _, err := io.WriteString(w, templ.EscapeString(authoredBy(m))); err != nil {
				return err
			}
		}
		if m.HasDate() {
			if m.HasAuthor() {
				if _, err := io.WriteString(w, " "); err != nil {
					return err
				}
			}
			if err := timestamp.Component(*m.Date, now).Render(ctx, w); err != nil {
				return err
			}
		}
		html := ""
		if m.HasAuthor() || m.HasDate() {
			html += lineBreak
		}
		if m.HasTags() {
			html += `<span>` + templ.EscapeString(tagsPrefix+joinTags(m)) + lineBreak + `</span>`
		}
		html += templ.EscapeString(m.Message) + `</span>`
		_, err := io.WriteString(w, html)
		return err
	})
}

// View is the complete panel for a resolved record.
func View(m revision.RevisionMetadata, placement Placement, now time.Time) templ.Component {
	return Tooltip(Expanded(m, now), placement, Compact(m))
}

func Loading() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="revision-metadata-panel--loading" aria-busy="true"></div>`)
		return err
	})
}

func ErrorView(err error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, writeErr := io.WriteString(w, `<div class="revision-metadata-panel--error" role="alert">`+
			templ.EscapeString(err.Error())+`</div>`)
		return writeErr
	})
}
