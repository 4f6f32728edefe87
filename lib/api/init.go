package api

import (
	"time"

	"github.com/ether/revpanel/lib"
	"github.com/ether/revpanel/lib/api/panel"
	"github.com/ether/revpanel/lib/api/revision"
	"github.com/ether/revpanel/lib/api/stats"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewApp creates the fiber application every route is mounted on.
func NewApp(logger *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(RequestLogger(logger))
	return app
}

// RequestLogger logs every request at debug level and server errors at
// warn level.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Warnw("request failed", append(fields, "error", err)...)
		} else {
			logger.Debugw("request", fields...)
		}
		return err
	}
}

func InitAPI(store *lib.InitStore) {
	revision.Init(store)
	panel.Init(store)
	stats.Init(store)
}
