package ws

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/panel"
	"github.com/ether/revpanel/lib/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

// nextSettled returns the first message for the given revision that is no
// longer pending.
func nextSettled(t *testing.T, conn *mockWebSocketConn, rev string) PanelMessage {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case message := <-conn.written:
			if message.Revision == rev && message.State != "pending" {
				return message
			}
		case <-timeout:
			t.Fatalf("no settled message for revision %q", rev)
		}
	}
}

func seededStore(t *testing.T) db.DataStore {
	store := db.NewMemoryDataStore()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRevisionMetadata(revision.StoredRevision{
		ApplicationName: "guestbook",
		Revision:        "abc",
		Metadata:        revision.RevisionMetadata{Author: "alice", Date: &date, Tags: []string{"v1", "stable"}, Message: "Fix bug"},
	}))
	require.NoError(t, store.SaveRevisionMetadata(revision.StoredRevision{
		ApplicationName: "guestbook",
		Revision:        "def",
		Metadata:        revision.RevisionMetadata{Author: "bob", Message: "Add feature"},
	}))
	return store
}

func TestPanelSessionPushesRenderedPanel(t *testing.T) {
	hub := startHub(t)
	logger := utils.SetupLogger("error")
	conn := newMockWebSocketConn()
	session := NewPanelSession(hub, conn, metadata.NewStoreFetcher(seededStore(t), logger), panel.PlacementBottom, logger)
	require.NotEmpty(t, session.ID)

	go session.Run()
	defer session.Close()

	conn.sendJSON(PanelRequest{ApplicationName: "guestbook", Revision: "abc"})
	message := nextSettled(t, conn, "abc")
	assert.Equal(t, "ready", message.State)
	assert.Equal(t, "guestbook", message.ApplicationName)
	assert.Contains(t, message.HTML, "Authored by alice<br/><span>Tagged v1, stable<br/></span>Fix bug")

	conn.sendJSON(PanelRequest{ApplicationName: "guestbook", Revision: "def"})
	message = nextSettled(t, conn, "def")
	assert.Equal(t, "ready", message.State)
	assert.Contains(t, message.HTML, "Authored by bob")
	assert.NotContains(t, message.HTML, "Tagged")
}

func TestPanelSessionReportsUnknownRevision(t *testing.T) {
	hub := startHub(t)
	logger := utils.SetupLogger("error")
	conn := newMockWebSocketConn()
	session := NewPanelSession(hub, conn, metadata.NewStoreFetcher(seededStore(t), logger), panel.PlacementBottom, logger)
	go session.Run()
	defer session.Close()

	conn.sendJSON(PanelRequest{ApplicationName: "guestbook", Revision: "nope"})
	message := nextSettled(t, conn, "nope")
	assert.Equal(t, "failed", message.State)
	assert.NotEmpty(t, message.Error)
	assert.Contains(t, message.HTML, "revision-metadata-panel--error")
}

func TestPanelSessionRejectsMalformedRequest(t *testing.T) {
	hub := startHub(t)
	logger := utils.SetupLogger("error")
	conn := newMockWebSocketConn()
	session := NewPanelSession(hub, conn, metadata.NewStoreFetcher(seededStore(t), logger), panel.PlacementBottom, logger)
	go session.Run()
	defer session.Close()

	conn.sendJSON(PanelRequest{ApplicationName: "guestbook", Revision: "--upload-pack=x"})
	message := nextSettled(t, conn, "--upload-pack=x")
	assert.Equal(t, "failed", message.State)
	assert.NotEmpty(t, message.Error)
}

func TestHubRefreshReloadsMatchingSessions(t *testing.T) {
	hub := startHub(t)
	logger := utils.SetupLogger("error")

	var calls atomic.Int32
	fetcher := metadata.FetcherFunc(func(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
		n := calls.Add(1)
		if n == 1 {
			return &revision.RevisionMetadata{Message: "before"}, nil
		}
		return &revision.RevisionMetadata{Message: "after"}, nil
	})

	conn := newMockWebSocketConn()
	session := NewPanelSession(hub, conn, fetcher, panel.PlacementBottom, logger)
	go session.Run()
	defer session.Close()

	conn.sendJSON(PanelRequest{ApplicationName: "guestbook"})
	message := nextSettled(t, conn, "")
	require.Contains(t, message.HTML, "before")
	require.Eventually(t, func() bool { return hub.ActiveSessions() == 1 }, 5*time.Second, 5*time.Millisecond)

	hub.RefreshApplication("other")
	hub.RefreshApplication("guestbook")
	message = nextSettled(t, conn, "")
	assert.Contains(t, message.HTML, "after")
	assert.Equal(t, int32(2), calls.Load())
}

func TestHubUnregistersClosedSession(t *testing.T) {
	hub := startHub(t)
	logger := utils.SetupLogger("error")
	conn := newMockWebSocketConn()
	session := NewPanelSession(hub, conn, metadata.NewStoreFetcher(db.NewMemoryDataStore(), logger), panel.PlacementBottom, logger)

	finished := make(chan struct{})
	go func() {
		session.Run()
		close(finished)
	}()
	require.Eventually(t, func() bool { return hub.ActiveSessions() == 1 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Eventually(t, func() bool { return hub.ActiveSessions() == 0 }, 5*time.Second, 5*time.Millisecond)
}
