// Package main provides the entry point for the roster CLI application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	version       = "0.1.0-dev"
	globalWorld   string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "Browse, search and rate a character roster for a guessing game",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(globalVerbose)
		},
	}

	fs := rootCmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&globalWorld, "world", "w", "", "World to operate on (env: ROSTER_WORLD)")
	fs.BoolVarP(&globalVerbose, "verbose", "v", false, "Log debug output to stderr (env: ROSTER_VERBOSE)")

	bindEnv(v, fs)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetVersionTemplate("roster v{{.Version}}\n")

	rootCmd.AddCommand(
		newWorldsCmd(),
		newImportCmd(),
		newBrowseCmd(),
		newSearchCmd(),
		newRateCmd(),
		newIgnoreCmd(),
		newUnignoreCmd(),
		newDeleteCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// bindEnv seeds every flag not given on the command line from its
// ROSTER_* environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func setupLogging(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
