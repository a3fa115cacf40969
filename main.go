package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		printFatalError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "docmirror",
		Short: "Mirrors the documents linked from a listing page",
		Long: `docmirror downloads every document linked from a single listing page into
numbered partition directories and records a checksum for each one, so
interrupted runs can be resumed and stored files verified later.

Without a subcommand it starts an interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fc, err := readConfigFile(configPath)
				if err != nil {
					return err
				}
				mergeFile(&cfg, fc, cmd.Flags().Changed)
			}

			if cfg.Verbose {
				log.SetLevel(log.DebugLevel)
			}

			return cfg.finalize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(&cfg)
			if err != nil {
				return err
			}
			return runMenu(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addFlags(cmd, &cfg, &configPath)

	cmd.AddCommand(
		newActionCmd(&cfg, "estimate", "Estimate the total size of all documents", (*app).estimate),
		newActionCmd(&cfg, "download", "Download all documents not yet on disk", (*app).downloadAll),
		newActionCmd(&cfg, "verify", "Verify stored documents against recorded checksums", (*app).verify),
	)

	return cmd
}

func newActionCmd(cfg *Config, use string, short string, action appAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			return action(a, cmd.Context(), cmd.OutOrStdout())
		},
	}
}
