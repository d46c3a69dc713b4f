// Package cli implements the ticketledger command line.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/cimillas/ticket-ledger/internal/config"
	"github.com/cimillas/ticket-ledger/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the state shared by subcommands.
type RootOptions struct {
	Format    string // "json" | "text"
	NoEnvFile bool
	Config    config.Config
	Logger    *logrus.Logger
	started   bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ticketledger",
		Short: "Ticket ledger with resale royalties",
		Long: `Ticket ledger: events, primary ticket sales, resales with royalty
accrual, and royalty distribution over a balance table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.init(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoEnvFile, "no-env-file", false, "do not load a .env file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewFundCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))

	return cmd
}

func (o *RootOptions) init(stderr io.Writer) error {
	if o.started {
		return nil
	}
	if !o.NoEnvFile {
		bootstrap := logrus.New()
		bootstrap.SetOutput(stderr)
		config.LoadEnvFile(bootstrap)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.NewWithOutput(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	o.Config = cfg
	o.Logger = logger
	o.started = true
	return nil
}
