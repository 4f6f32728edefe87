package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ether/revpanel/lib"
	"github.com/ether/revpanel/lib/api"
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	settings2 "github.com/ether/revpanel/lib/settings"
	"github.com/ether/revpanel/lib/utils"
	"github.com/ether/revpanel/lib/ws"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// InitServer loads the settings, opens the data store, builds the metadata
// source and serves the API until the process is interrupted.
func InitServer(setupLogger *zap.SugaredLogger) error {
	if err := settings2.InitSettings(setupLogger); err != nil {
		return fmt.Errorf("error loading settings: %w", err)
	}
	var settings = settings2.Displayed
	if settings.LogLevel != "" {
		setupLogger = utils.SetupLogger(settings.LogLevel)
	}

	setupLogger.Info("Starting revpanel...")
	if settings.GitVersion != "" {
		setupLogger.Info("Your revpanel version is " + settings.GitVersion)
	}

	dataStore, err := utils.GetDB(settings, setupLogger)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer func(store db.DataStore) {
		if err := store.Close(); err != nil {
			setupLogger.Warnw("error closing database", "error", err)
		}
	}(dataStore)

	fetcher, err := metadata.FromSettings(settings, dataStore, setupLogger)
	if err != nil {
		return fmt.Errorf("error setting up metadata source: %w", err)
	}

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	app := api.NewApp(setupLogger)
	api.InitAPI(&lib.InitStore{
		C:                 app,
		RetrievedSettings: &settings,
		Store:             dataStore,
		Fetcher:           fetcher,
		Hub:               hub,
		Validator:         validator.New(validator.WithRequiredStructEnabled()),
		Logger:            setupLogger,
	})

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		setupLogger.Info("Shutting down...")
		if err := app.Shutdown(); err != nil {
			setupLogger.Warnw("error shutting down", "error", err)
		}
	}()

	fiberString := fmt.Sprintf("%s:%s", settings.IP, settings.Port)
	setupLogger.Info("Serving revision metadata on " + fiberString)
	if err := app.Listen(fiberString); err != nil {
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}
