package metadata

import (
	"testing"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/settings"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromSettings(t *testing.T) {
	logger := zap.NewNop().Sugar()
	store := db.NewMemoryDataStore()

	cases := []struct {
		name     string
		settings settings.Settings
		check    func(t *testing.T, f Fetcher)
	}{
		{
			name:     "store with cache",
			settings: settings.Settings{Source: settings.SourceStore, Cache: settings.CacheSettings{Size: 8, TTLSeconds: 60}},
			check: func(t *testing.T, f Fetcher) {
				cached, ok := f.(*CachedFetcher)
				require.True(t, ok)
				require.IsType(t, &StoreFetcher{}, cached.next)
			},
		},
		{
			name:     "git without cache",
			settings: settings.Settings{Source: settings.SourceGit, Git: settings.GitSettings{Repositories: []settings.GitRepository{
				{Application: "guestbook", Path: "/srv/guestbook"},
				{Application: "guestbook", Path: "/tmp/shadow"},
			}}},
			check: func(t *testing.T, f Fetcher) {
				git, ok := f.(*GitFetcher)
				require.True(t, ok)
				require.Equal(t, "/srv/guestbook", git.repositories["guestbook"])
				require.Equal(t, "git", git.binary)
			},
		},
		{
			name:     "remote",
			settings: settings.Settings{Source: settings.SourceRemote, Remote: settings.RemoteSettings{URL: "http://metadata.local"}},
			check: func(t *testing.T, f Fetcher) {
				client, ok := f.(*ClientFetcher)
				require.True(t, ok)
				require.Equal(t, "http://metadata.local", client.baseURL)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := FromSettings(tc.settings, store, logger)
			require.NoError(t, err)
			tc.check(t, f)
		})
	}
}

func TestFromSettingsStoreNeedsDataStore(t *testing.T) {
	_, err := FromSettings(settings.Settings{Source: settings.SourceStore}, nil, zap.NewNop().Sugar())
	require.Error(t, err)
}
