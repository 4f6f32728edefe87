package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

func guestbookStore(t *testing.T) db.DataStore {
	store := db.NewMemoryDataStore()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRevisionMetadata(revision.StoredRevision{
		ApplicationName: "guestbook",
		Revision:        "abc123",
		Metadata:        revision.RevisionMetadata{Author: "alice", Date: &date, Tags: []string{"v1", "stable"}, Message: "Fix bug"},
	}))
	return store
}

func TestShowRendersTable(t *testing.T) {
	var out bytes.Buffer
	fetcher := metadata.NewStoreFetcher(guestbookStore(t), utils.SetupLogger("error"))

	err := Show(context.Background(), fetcher, &out, ShowOptions{
		ApplicationName: "guestbook",
		Timeout:         time.Second,
		Now:             func() time.Time { return now },
	})
	require.NoError(t, err)

	rendered := out.String()
	assert.Contains(t, rendered, "guestbook @ latest")
	assert.Contains(t, rendered, "Authored by alice")
	assert.Contains(t, rendered, "Tagged v1, stable")
	assert.Contains(t, rendered, "Fix bug")
	assert.Contains(t, rendered, "Authored by alice Jan 1 2024 00:00:00 (3 days ago)")
	assert.Contains(t, rendered, "Tags: v1, stable")
}

type recordingIndicator struct {
	out io.Writer
}

func (r recordingIndicator) Start() { _, _ = io.WriteString(r.out, "[spinning]") }
func (r recordingIndicator) Stop()  { _, _ = io.WriteString(r.out, "[stopped]") }

func TestShowStopsSpinnerBeforeTable(t *testing.T) {
	previous := newIndicator
	newIndicator = func(out io.Writer, suffix string) indicator { return recordingIndicator{out} }
	t.Cleanup(func() { newIndicator = previous })

	release := make(chan struct{})
	fetcher := metadata.FetcherFunc(func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
		<-release
		return &revision.RevisionMetadata{Author: "alice", Message: "Fix bug"}, nil
	})
	time.AfterFunc(20*time.Millisecond, func() { close(release) })

	var out bytes.Buffer
	err := Show(context.Background(), fetcher, &out, ShowOptions{
		ApplicationName: "guestbook",
		Timeout:         time.Second,
		Spinner:         true,
	})
	require.NoError(t, err)

	rendered := out.String()
	require.True(t, strings.HasPrefix(rendered, "[spinning][stopped]"), rendered)
	assert.Equal(t, 1, strings.Count(rendered, "[stopped]"))
	assert.Contains(t, rendered, "guestbook @ latest")
}

func TestShowReturnsLookupError(t *testing.T) {
	var out bytes.Buffer
	fetcher := metadata.NewStoreFetcher(guestbookStore(t), utils.SetupLogger("error"))

	err := Show(context.Background(), fetcher, &out, ShowOptions{ApplicationName: "guestbook", Revision: "nope"})
	require.Error(t, err)
	var notFound *exception.RevisionNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, out.String())
}

func TestShowTimesOut(t *testing.T) {
	fetcher := metadata.FetcherFunc(func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	err := Show(context.Background(), fetcher, &bytes.Buffer{}, ShowOptions{ApplicationName: "guestbook", Timeout: 20 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunShowAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/applications/guestbook/revisions/abc123/metadata":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"author":"alice","tags":["v1"],"message":"Fix bug"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Revision not found","error":404}`))
		}
	}))
	defer server.Close()
	logger := utils.SetupLogger("error")

	var out bytes.Buffer
	code := RunShow([]string{"guestbook", "abc123", "--server", server.URL, "--quiet"}, &out, logger)
	require.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Tagged v1")

	out.Reset()
	code = RunShow([]string{"guestbook", "missing", "--server", server.URL, "-q", "--retries", "0"}, &out, logger)
	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "Error:")
}

func TestRunShowRejectsBadArguments(t *testing.T) {
	logger := utils.SetupLogger("error")
	var out bytes.Buffer

	assert.Equal(t, 2, RunShow(nil, &out, logger))
	assert.Contains(t, out.String(), "Usage: revpanel show")

	out.Reset()
	assert.Equal(t, 2, RunShow([]string{"guestbook", "a", "b"}, &out, logger))

	out.Reset()
	assert.Equal(t, 2, RunShow([]string{"guestbook", "--", "-evil"}, &out, logger))
}
