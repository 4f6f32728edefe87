package stats

import (
	"github.com/ether/revpanel/lib"
	"github.com/ether/revpanel/lib/settings"
)

func Init(store *lib.InitStore) {
	checks := []Checker{
		DBChecker{store.Store},
		SessionChecker{store.Hub},
	}

	version, releaseID := settings.BuildInfo()
	store.C.Get("/health", Handler(
		version,
		releaseID,
		"revpanel",
		checks,
	))
}
