package metadata

import (
	"errors"
	"time"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/settings"
	"go.uber.org/zap"
)

// FromSettings builds the Fetcher selected by the settings, wrapped in a
// CachedFetcher when caching is enabled.
func FromSettings(retrievedSettings settings.Settings, store db.DataStore, logger *zap.SugaredLogger) (Fetcher, error) {
	var fetcher Fetcher
	switch retrievedSettings.Source {
	case settings.SourceStore:
		if store == nil {
			return nil, errors.New("store source needs a data store")
		}
		logger.Info("Serving revision metadata from the data store")
		fetcher = NewStoreFetcher(store, logger)
	case settings.SourceGit:
		repositories := retrievedSettings.RepositoryPaths()
		logger.Infof("Serving revision metadata from %d git working copies", len(repositories))
		fetcher = NewGitFetcher(retrievedSettings.Git.Binary, repositories, logger)
	case settings.SourceRemote:
		logger.Infof("Serving revision metadata from %s", retrievedSettings.Remote.URL)
		fetcher = NewClientFetcher(retrievedSettings.Remote.URL, ClientOptions{
			RetryMax: retrievedSettings.Remote.RetryMax,
			Timeout:  time.Duration(retrievedSettings.Remote.TimeoutMs) * time.Millisecond,
			Logger:   logger,
		})
	default:
		return nil, errors.New("unsupported metadata source")
	}

	if retrievedSettings.Cache.Enabled() {
		logger.Infof("Caching up to %d lookups for %s", retrievedSettings.Cache.Size, retrievedSettings.Cache.TTL())
		fetcher = NewCachedFetcher(fetcher, retrievedSettings.Cache.Size, retrievedSettings.Cache.TTL())
	}
	return fetcher, nil
}
