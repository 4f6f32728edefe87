package lib

import (
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/settings"
	"github.com/ether/revpanel/lib/ws"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InitStore struct {
	C                 *fiber.App
	RetrievedSettings *settings.Settings
	Store             db.DataStore
	Fetcher           metadata.Fetcher
	Hub               *ws.Hub
	Validator         *validator.Validate
	Logger            *zap.SugaredLogger
}
