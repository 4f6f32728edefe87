// Package cli implements `revpanel show`, which renders the revision panel
// of an application in the terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/panel"
	"github.com/ether/revpanel/lib/resource"
	"github.com/ether/revpanel/lib/settings"
	"github.com/ether/revpanel/lib/utils"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// indicator is shown while a lookup is pending.
type indicator interface {
	Start()
	Stop()
}

var newIndicator = func(out io.Writer, suffix string) indicator {
	loader := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(out))
	loader.Suffix = suffix
	return loader
}

type ShowOptions struct {
	ApplicationName string
	Revision        string
	Timeout         time.Duration
	// Spinner shows a loading indicator while the lookup is pending.
	Spinner bool
	Now     func() time.Time
}

// Show looks up one revision through fetcher and writes its panel as a table.
func Show(ctx context.Context, fetcher metadata.Fetcher, out io.Writer, options ShowOptions) error {
	now := options.Now
	if now == nil {
		now = time.Now
	}

	p := panel.New(fetcher)
	defer p.Close()
	p.SetInput(options.ApplicationName, options.Revision)

	stopSpinner := func() {}
	if options.Spinner && p.State().Status == resource.Pending {
		loader := newIndicator(out, " Looking up "+options.ApplicationName+"...")
		loader.Start()
		stopSpinner = loader.Stop
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	st, err := p.Wait(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("waiting for revision metadata: %w", err)
	}
	if st.Status == resource.Failed {
		return st.Err
	}

	shown := options.Revision
	if shown == "" {
		shown = "latest"
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(options.ApplicationName + " @ " + shown)
	t.AppendHeader(table.Row{"View", "Text"})
	for _, line := range panel.CompactLines(*st.Value) {
		t.AppendRow(table.Row{"Label", line})
	}
	t.AppendSeparator()
	for _, line := range panel.TooltipLines(*st.Value, now()) {
		t.AppendRow(table.Row{"Tooltip", line})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// RunShow parses the arguments of `revpanel show` and returns the exit code.
// Without --server the lookup uses the configured source.
func RunShow(args []string, out io.Writer, logger *zap.SugaredLogger) int {
	flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
	flags.SetOutput(out)
	server := flags.String("server", "", "base URL of a revpanel server to ask")
	timeout := flags.Duration("timeout", 10*time.Second, "how long to wait for the lookup")
	retries := flags.Int("retries", 2, "retries against --server")
	quiet := flags.BoolP("quiet", "q", false, "do not show a spinner")
	flags.Usage = func() {
		fmt.Fprintln(out, "Usage: revpanel show <application> [revision] [flags]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() < 1 || flags.NArg() > 2 {
		flags.Usage()
		return 2
	}

	options := ShowOptions{
		ApplicationName: flags.Arg(0),
		Revision:        flags.Arg(1),
		Timeout:         *timeout,
		Spinner:         !*quiet,
	}
	if err := utils.CheckValidApplicationName(options.ApplicationName); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 2
	}
	if err := utils.CheckValidRev(options.Revision); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 2
	}

	fetcher, closeFetcher, err := newFetcher(*server, *retries, *timeout, logger)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	defer closeFetcher()

	if err := Show(context.Background(), fetcher, out, options); err != nil {
		fmt.Fprintln(out, "Error:", err)
		if metadata.IsNotFound(err) {
			return 3
		}
		return 1
	}
	return 0
}

func newFetcher(server string, retries int, timeout time.Duration, logger *zap.SugaredLogger) (metadata.Fetcher, func(), error) {
	if server != "" {
		return metadata.NewClientFetcher(server, metadata.ClientOptions{
			RetryMax: retries,
			Timeout:  timeout,
			Logger:   logger,
		}), func() {}, nil
	}

	if err := settings.InitSettings(logger); err != nil {
		return nil, nil, err
	}
	retrievedSettings := settings.Displayed

	var store db.DataStore
	if retrievedSettings.Source == settings.SourceStore {
		var err error
		if store, err = utils.GetDB(retrievedSettings, logger); err != nil {
			return nil, nil, err
		}
	}
	fetcher, err := metadata.FromSettings(retrievedSettings, store, logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	return fetcher, func() {
		if store != nil {
			_ = store.Close()
		}
	}, nil
}
