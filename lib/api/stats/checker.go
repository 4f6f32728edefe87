package stats

import (
	"time"

	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/ws"
)

type DBChecker struct {
	db db.DataStore
}

func (d DBChecker) Name() string {
	return "database"
}

func (d DBChecker) Check() Check {
	err := d.db.Ping()

	if err != nil {
		return Check{
			Status: StatusFail,
			Output: err.Error(),
		}
	}

	return Check{
		Status:     StatusPass,
		Observed:   "ok",
		ObservedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// SessionChecker reports the open live panel sessions.
type SessionChecker struct {
	hub *ws.Hub
}

func (s SessionChecker) Name() string {
	return "panelSessions"
}

func (s SessionChecker) Check() Check {
	if s.hub == nil {
		return Check{
			Status: StatusWarn,
			Output: "live panel sessions are not served",
		}
	}
	return Check{
		Status:     StatusPass,
		Observed:   s.hub.ActiveSessions(),
		ObservedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
