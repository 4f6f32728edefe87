package main

import (
	"fmt"
	"os"

	"github.com/ether/revpanel/lib/cli"
	"github.com/ether/revpanel/lib/server"
	"github.com/ether/revpanel/lib/settings"
	"github.com/ether/revpanel/lib/utils"
)

func main() {
	setupLogger := utils.SetupLogger(os.Getenv(settings.EnvVar(settings.Loglevel)))
	defer setupLogger.Sync()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(settings.HandleConfigCommand(os.Args[2:], os.Stdout, setupLogger))
		case "show":
			os.Exit(cli.RunShow(os.Args[2:], os.Stdout, setupLogger))
		case "serve":
		case "help", "-h", "--help":
			printHelp()
			return
		default:
			fmt.Fprintln(os.Stderr, "Unknown command:", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}

	if err := server.InitServer(setupLogger); err != nil {
		setupLogger.Fatal(err.Error())
	}
}

func printHelp() {
	fmt.Println(`Usage: revpanel [command]

Commands:
  serve                              serve the metadata API and panels (default)
  show <application> [revision]      render the panel of a revision in the terminal
  config show|dump|env|get|init      inspect the configuration`)
}
