package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ostler-dev/ostler/cli/flags"
	"github.com/ostler-dev/ostler/cli/log"
)

// Versioning information set at build time
var version, commit = "dev", "n/a"

var ostlerCmd = &cobra.Command{
	Use:   "ostler",
	Short: "Ostler readies freshly booted hosts: it waits for them to accept commands, installs their role's software, and validates the result.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
		return log.Init()
	},
}

func init() {
	ostlerCmd.AddCommand(provisionCmd)
	ostlerCmd.AddCommand(versionCmd)

	flags.Register(ostlerCmd.PersistentFlags())

	viper.SetEnvPrefix("ostler")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ostlerCmd.SetOut(os.Stdout)
	if err := ostlerCmd.ExecuteContext(ctx); err != nil {
		lo.Must(fmt.Fprintln(os.Stderr, color.HiRedString(fmt.Sprint(err))))
		os.Exit(1)
	}
}
