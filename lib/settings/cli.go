package settings

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// HandleConfigCommand runs `revpanel config <subcommand>` and returns the
// process exit code.
func HandleConfigCommand(args []string, out io.Writer, logger *zap.SugaredLogger) int {
	if len(args) < 1 {
		printConfigHelp(out)
		return 1
	}

	if err := InitSettings(logger); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}

	switch args[0] {
	case "show":
		configShow(out)
	case "dump":
		configDump(out)
	case "env":
		configEnv(out)
	case "get":
		configGet(out, args[1:])
	case "init":
		configInit(out)
	default:
		fmt.Fprintln(out, "Unknown config command:", args[0])
		printConfigHelp(out)
		return 1
	}
	return 0
}

func configShow(out io.Writer) {
	fmt.Fprintf(out,
		"%-25s %-35s %-25s %-25s %s\n",
		"JSON KEY",
		"ENV VAR",
		"CURRENT",
		"DEFAULT",
		"DESCRIPTION",
	)

	for _, c := range Registry {
		fmt.Fprintf(out,
			"%-25s %-35s %-25v %-25v %s\n",
			c.Key,
			EnvVar(c.Key),
			viper.Get(c.Key),
			c.Default,
			c.Description,
		)
	}
}

func configDump(out io.Writer) {
	all := viper.AllSettings()

	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}

	fmt.Fprintln(out, string(b))
}

func configEnv(out io.Writer) {
	fmt.Fprintf(out, "%-35s %s\n", "ENV VAR", "JSON KEY")

	for _, c := range Registry {
		fmt.Fprintf(out, "%-35s %s\n", EnvVar(c.Key), c.Key)
	}
}

func configGet(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: revpanel config get <json-key>")
		return
	}

	key := args[0]

	for _, c := range Registry {
		if c.Key == key {
			fmt.Fprintln(out, viper.Get(key))
			return
		}
	}

	fmt.Fprintln(out, "Unknown config key:", key)
}

func configInit(out io.Writer) {
	result := map[string]any{}

	for _, c := range Registry {
		result[c.Key] = c.Default
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}

	fmt.Fprintln(out, string(b))
}

func printConfigHelp(out io.Writer) {
	fmt.Fprintln(out, `Usage:
  revpanel config show
  revpanel config dump
  revpanel config env
  revpanel config get <json-key>
  revpanel config init`)
}
