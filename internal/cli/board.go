package cli

import (
	"fmt"
	"log/slog"

	"github.com/nikbrunner/bmboard/internal/store"
	"github.com/spf13/cobra"
)

func seedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the sample bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.start(ctx); err != nil {
				return err
			}

			if err := e.store.SeedDefaults(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added sample bookmarks")
			return nil
		},
	}
}

func eraseCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Delete every bookmark, category and tab group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var newDialog dialogFunc
			if yes {
				newDialog = func(*slog.Logger) store.Dialog { return store.NopDialog{Answer: true} }
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts, newDialog)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.start(ctx); err != nil {
				return err
			}

			erased, err := e.store.EraseAll(ctx)
			if err != nil {
				return err
			}
			if erased {
				fmt.Fprintln(cmd.OutOrStdout(), "Erased the board")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing erased")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
