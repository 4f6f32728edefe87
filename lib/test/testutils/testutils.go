package testutils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ether/revpanel/lib"
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/settings"
	"github.com/ether/revpanel/lib/utils"
	"github.com/ether/revpanel/lib/ws"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TestDataStore struct {
	DS        db.DataStore
	Logger    *zap.SugaredLogger
	Fetcher   metadata.Fetcher
	Hub       *ws.Hub
	Validator *validator.Validate
	App       *fiber.App
	Settings  *settings.Settings
}

func (t *TestDataStore) ToInitStore() *lib.InitStore {
	return &lib.InitStore{
		C:                 t.App,
		RetrievedSettings: t.Settings,
		Store:             t.DS,
		Fetcher:           t.Fetcher,
		Hub:               t.Hub,
		Validator:         t.Validator,
		Logger:            t.Logger,
	}
}

type TestRunConfig struct {
	Name string
	Test func(t *testing.T, tsStore TestDataStore)
}

// TestDBHandler runs the same tests against every data store that needs no
// external service.
type TestDBHandler struct {
	t     *testing.T
	tests []TestRunConfig
}

func NewTestDBHandler(t *testing.T) *TestDBHandler {
	t.Helper()
	return &TestDBHandler{t: t}
}

func (test *TestDBHandler) AddTests(testConfs ...TestRunConfig) {
	test.tests = append(test.tests, testConfs...)
}

func (test *TestDBHandler) StartTestDBHandler() {
	datastores := map[string]func(t *testing.T) db.DataStore{
		"Memory": func(t *testing.T) db.DataStore {
			return db.NewMemoryDataStore()
		},
		"SQLite": func(t *testing.T) db.DataStore {
			sqliteDB, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "revpanel.db"), nil)
			if err != nil {
				t.Fatalf("Failed to create SQLite DataStore: %v", err)
			}
			return sqliteDB
		},
	}

	for dsName, newDS := range datastores {
		test.t.Run(dsName, func(t *testing.T) {
			t.Parallel()
			for _, testConf := range test.tests {
				test.TestRun(t, testConf, newDS)
			}
		})
	}
}

func (test *TestDBHandler) TestRun(t *testing.T, testConf TestRunConfig, newDS func(t *testing.T) db.DataStore) {
	t.Run(testConf.Name, func(t *testing.T) {
		ds := newDS(t)
		t.Cleanup(func() { _ = ds.Close() })
		testConf.Test(t, NewTestDataStore(t, ds))
	})
}

// NewTestDataStore wires ds into the pieces the handlers need. The fetcher
// reads straight from ds.
func NewTestDataStore(t *testing.T, ds db.DataStore) TestDataStore {
	logger := utils.SetupLogger("error")
	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	return TestDataStore{
		DS:        ds,
		Logger:    logger,
		Fetcher:   metadata.NewStoreFetcher(ds, logger),
		Hub:       hub,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		App: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			}),
		Settings: &settings.Settings{
			Panel: settings.PanelSettings{RenderTimeoutMs: 2000, Placement: "bottom"},
		},
	}
}

// GuestbookRevision is the stored record used throughout the handler tests.
func GuestbookRevision() revision.StoredRevision {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return revision.StoredRevision{
		ApplicationName: "guestbook",
		Revision:        "abc123",
		Metadata: revision.RevisionMetadata{
			Author:  "alice",
			Date:    &date,
			Tags:    []string{"v1", "stable"},
			Message: "Fix bug",
		},
	}
}

// RandomMetadata returns metadata where each optional field is set or left
// out at random.
func RandomMetadata() revision.RevisionMetadata {
	m := revision.RevisionMetadata{Message: gofakeit.Sentence(8)}
	if gofakeit.Bool() {
		m.Author = gofakeit.Name()
	}
	if gofakeit.Bool() {
		d := gofakeit.Date().UTC().Truncate(time.Second)
		m.Date = &d
	}
	if gofakeit.Bool() {
		m.Tags = []string{gofakeit.AppVersion(), gofakeit.Word()}
	}
	return m
}
