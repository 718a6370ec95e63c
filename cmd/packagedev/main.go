package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "packagedev",
		Short:         "Completions, linting and hover for Sublime Text package files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	flags := &rootFlags{}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default: discovered packagedev.{yml,yaml,json,toml})")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonOut, "json", false,
		"machine-readable output")

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}
	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(newServeLSPCommand(flags, rootCmd.Version))
	rootCmd.AddCommand(newCompleteCommand(flags))
	rootCmd.AddCommand(newLintCommand(flags))
	rootCmd.AddCommand(newScopesCommand(flags))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
