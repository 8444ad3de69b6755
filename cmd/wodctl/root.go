package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

const version = "0.1.0"

// globalFlags holds the persistent flag values every subcommand reads
// before building its own ScriptRuntime.
type globalFlags struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the wodctl root command and wires its
// subcommands (§ ambient CLI stack — cobra + viper, matching the
// teacher's NewRootCommand).
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "wodctl",
		Short: "Run and inspect compiled workout scripts",
		Long: fmt.Sprintf(`%s

%s drives a compiled workout script through the JIT runtime: run it
headless, watch it live in a terminal UI, or expose it over a WebSocket
for a remote display to drive.

%s
  wodctl run fran.yaml              # run headless, printing the display stack
  wodctl tui fran.yaml              # live terminal view with timers
  wodctl serve fran.yaml --addr :8089   # serve over WebSocket`,
			bold("wodctl"),
			bold("wodctl"),
			bold("EXAMPLES:")),
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a wodctl config file (yaml/json/toml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose (debug-level) logging")

	rootCmd.AddCommand(newRunCommand(flags))
	rootCmd.AddCommand(newTUICommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	viper.SetConfigName("wodctl-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wodctl version %s\n", version)
		},
	}
}
