package panel

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/resource"
	"github.com/ether/revpanel/lib/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// countingFetcher records every lookup and blocks until its key is released.
type countingFetcher struct {
	mu      sync.Mutex
	calls   []Input
	results map[Input]*revision.RevisionMetadata
	gates   map[Input]chan struct{}
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		results: map[Input]*revision.RevisionMetadata{},
		gates:   map[Input]chan struct{}{},
	}
}

func (f *countingFetcher) gate(in Input) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[in]
	if !ok {
		ch = make(chan struct{})
		f.gates[in] = ch
	}
	return ch
}

func (f *countingFetcher) release(in Input) {
	close(f.gate(in))
}

func (f *countingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *countingFetcher) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	in := Input{ApplicationName: applicationName, Revision: rev}
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()

	select {
	case <-f.gate(in):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.results[in]
	if !ok {
		return nil, exception.NewRevisionNotFoundError(applicationName, rev, nil)
	}
	return m, nil
}

func TestPanelRendersGuestbookExample(t *testing.T) {
	store := db.NewMemoryDataStore()
	m := guestbookMetadata()
	require.NoError(t, store.SaveRevisionMetadata(revision.StoredRevision{
		ApplicationName: "guestbook",
		Revision:        "abc123",
		Metadata:        m,
	}))

	p := New(metadata.NewStoreFetcher(store, utils.SetupLogger("error")), WithClock(func() time.Time { return now }))
	defer p.Close()

	p.SetInput("guestbook", "")
	st, err := p.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, resource.Ready, st.Status)

	html := renderString(t, p.Component())
	assert.Contains(t, html, `Authored by alice<br/><span>Tagged v1, stable<br/></span>Fix bug</div>`)
	assert.Contains(t, html, `Tags: v1, stable`)
	assert.Contains(t, html, `Jan 1 2024 00:00:00 (3 days ago)`)
	assert.Contains(t, html, `tooltip--bottom`)
}

func TestPanelPendingRendersLoading(t *testing.T) {
	f := newCountingFetcher()
	p := New(f)
	defer p.Close()

	p.SetInput("guestbook", "abc")
	assert.Equal(t, resource.Pending, p.State().Status)
	assert.Equal(t, renderString(t, Loading()), renderString(t, p.Component()))
}

func TestPanelFailureRendersError(t *testing.T) {
	f := newCountingFetcher()
	p := New(f)
	defer p.Close()

	in := Input{ApplicationName: "guestbook", Revision: "missing"}
	p.SetInput(in.ApplicationName, in.Revision)
	f.release(in)

	st, err := p.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, resource.Failed, st.Status)
	assert.True(t, metadata.IsNotFound(st.Err))

	html := renderString(t, p.Component())
	assert.Contains(t, html, `revision-metadata-panel--error`)
	assert.Contains(t, html, `missing`)
}

func TestPanelNilRecordRendersError(t *testing.T) {
	p := New(metadata.FetcherFunc(func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
		return nil, nil
	}))
	defer p.Close()

	p.SetInput("guestbook", "abc123")
	st, err := p.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, resource.Failed, st.Status)
	assert.ErrorIs(t, st.Err, ErrNoMetadata)

	html := renderString(t, p.Component())
	assert.Contains(t, html, `revision-metadata-panel--error`)
	assert.Contains(t, html, `guestbook@abc123`)
}

func TestPanelSameInputDoesNotRefetch(t *testing.T) {
	f := newCountingFetcher()
	p := New(f)
	defer p.Close()

	in := Input{ApplicationName: "guestbook", Revision: "abc"}
	f.results[in] = &revision.RevisionMetadata{Message: "one"}
	f.release(in)

	p.SetInput(in.ApplicationName, in.Revision)
	_, err := p.Wait(waitCtx(t))
	require.NoError(t, err)

	p.SetInput(in.ApplicationName, in.Revision)
	p.SetInput(in.ApplicationName, in.Revision)
	assert.Equal(t, 1, f.callCount())
}

func TestPanelRevisionChangeTriggersOneLookup(t *testing.T) {
	f := newCountingFetcher()
	p := New(f)
	defer p.Close()

	first := Input{ApplicationName: "guestbook", Revision: "abc"}
	second := Input{ApplicationName: "guestbook", Revision: "def"}
	f.results[first] = &revision.RevisionMetadata{Message: "first"}
	f.results[second] = &revision.RevisionMetadata{Message: "second"}

	p.SetInput(first.ApplicationName, first.Revision)
	p.SetInput(second.ApplicationName, second.Revision)
	require.Eventually(t, func() bool { return f.callCount() == 2 }, 5*time.Second, 5*time.Millisecond)

	f.release(second)
	st, err := p.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, resource.Ready, st.Status)
	require.Equal(t, second, st.Input)
	require.Equal(t, "second", st.Value.Message)

	// the superseded lookup settling late must not replace the newer result
	f.release(first)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "second", p.State().Value.Message)
	assert.Equal(t, 2, f.callCount())
}

func TestPanelSubscribeSeesSettledState(t *testing.T) {
	f := newCountingFetcher()
	p := New(f)
	defer p.Close()

	in := Input{ApplicationName: "guestbook", Revision: "abc"}
	f.results[in] = &revision.RevisionMetadata{Message: "hello"}

	ready := make(chan State, 1)
	unsubscribe := p.Subscribe(func(st State) {
		if st.Status == resource.Ready {
			select {
			case ready <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	p.SetInput(in.ApplicationName, in.Revision)
	f.release(in)

	select {
	case st := <-ready:
		assert.Contains(t, renderString(t, p.Render(st)), "hello")
	case <-waitCtx(t).Done():
		t.Fatal("no ready notification")
	}
}

func TestPanelPlacementOption(t *testing.T) {
	p := New(metadata.FetcherFunc(func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
		return &revision.RevisionMetadata{Message: "m"}, nil
	}), WithPlacement(PlacementLeft))
	defer p.Close()

	p.SetInput("app", "")
	_, err := p.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Contains(t, renderString(t, p.Component()), `data-placement="left"`)
}

func TestPanelErrorViewEscapes(t *testing.T) {
	html := renderString(t, ErrorView(errors.New("<b>bad</b>")))
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;b&gt;bad&lt;/b&gt;")
}
