// Package panel renders the revision metadata panel: a compact label with
// the author, tags and message of a revision that expands into a tooltip.
package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/resource"
)

type Input struct {
	ApplicationName string `json:"applicationName"`
	Revision        string `json:"revision"`
}

type State = resource.State[Input, *revision.RevisionMetadata]

// ErrNoMetadata is reported when a fetcher answers without a record and
// without an error.
var ErrNoMetadata = errors.New("no revision metadata returned")

// Panel owns the lookup of one input pair at a time. Changing the pair
// starts a new lookup and discards the result of the previous one.
type Panel struct {
	resource  *resource.AsyncResource[Input, *revision.RevisionMetadata]
	placement Placement
	now       func() time.Time
}

type Option func(*Panel)

func WithPlacement(placement Placement) Option {
	return func(p *Panel) {
		p.placement = placement
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		p.now = now
	}
}

func New(fetcher metadata.Fetcher, options ...Option) *Panel {
	p := &Panel{
		placement: PlacementBottom,
		now:       time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.resource = resource.New(func(ctx context.Context, input Input) (*revision.RevisionMetadata, error) {
		m, err := fetcher.RevisionMetadata(ctx, input.ApplicationName, input.Revision)
		if err == nil && m == nil {
			return nil, fmt.Errorf("%s@%s: %w", input.ApplicationName, input.Revision, ErrNoMetadata)
		}
		return m, err
	})
	return p
}

// SetInput looks up the given pair unless it is already the current one.
func (p *Panel) SetInput(applicationName string, rev string) {
	p.resource.Load(Input{ApplicationName: applicationName, Revision: rev})
}

// Reload looks up the current pair again, e.g. after its metadata changed.
func (p *Panel) Reload() {
	p.resource.Reload()
}

func (p *Panel) State() State {
	return p.resource.State()
}

func (p *Panel) Wait(ctx context.Context) (State, error) {
	return p.resource.Wait(ctx)
}

func (p *Panel) Subscribe(fn func(State)) (unsubscribe func()) {
	return p.resource.Subscribe(fn)
}

func (p *Panel) Close() {
	p.resource.Close()
}

// Component renders the panel in its current state.
func (p *Panel) Component() templ.Component {
	return p.Render(p.State())
}

func (p *Panel) Render(st State) templ.Component {
	switch st.Status {
	case resource.Ready:
		return View(*st.Value, p.placement, p.now())
	case resource.Failed:
		return ErrorView(st.Err)
	default:
		return Loading()
	}
}
