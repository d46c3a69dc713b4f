package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations for the configured driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := OpenBackend(cmd.Context(), rootOpts.Config)
			if err != nil {
				return err
			}
			defer backend.Close()

			applied, err := backend.Migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			if rootOpts.Format == "json" {
				if applied == nil {
					applied = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"applied": applied})
			}
			if len(applied) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return err
			}
			for _, name := range applied {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewFundCommand creates the fund command.
func NewFundCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <account> <amount>",
		Short: "Credit native currency to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			return withAccounts(cmd.Context(), rootOpts, func(svc *app.AccountService) error {
				acc, err := svc.Fund(cmd.Context(), args[0], amount)
				if err != nil {
					return err
				}
				return printAccount(cmd.OutOrStdout(), rootOpts.Format, acc)
			})
		},
	}
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Print an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), rootOpts, func(svc *app.AccountService) error {
				acc, err := svc.Balance(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printAccount(cmd.OutOrStdout(), rootOpts.Format, acc)
			})
		},
	}
}

func withAccounts(ctx context.Context, opts *RootOptions, fn func(*app.AccountService) error) error {
	backend, err := OpenBackend(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(app.NewAccountService(backend.Accounts, opts.Logger))
}

func printAccount(w io.Writer, format string, acc domain.Account) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(map[string]any{"id": acc.ID, "balance": acc.Balance})
	}
	_, err := fmt.Fprintf(w, "%s %d\n", acc.ID, acc.Balance)
	return err
}
