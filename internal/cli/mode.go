package cli

import (
	"fmt"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/storage"
	"github.com/spf13/cobra"
)

func modeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "mode [local|sync]",
		Short:     "Show or switch between the local board and the synced board",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(backend.ModeLocal), string(backend.ModeSync)},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openStorage(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			current := storage.LoadMode(e.storage, e.cfg.Mode)
			if len(args) == 0 {
				fmt.Fprintln(out, current)
				return nil
			}

			mode, err := backend.ParseMode(args[0])
			if err != nil {
				return err
			}
			if err := storage.SaveMode(e.storage, string(mode)); err != nil {
				return fmt.Errorf("save mode: %w", err)
			}
			e.logger.Info("mode switched", "from", current, "to", string(mode))

			if mode == backend.ModeSync {
				fmt.Fprintf(out, "Switched to sync mode (%s)\n", e.cfg.Sync.RedisURL)
			} else {
				fmt.Fprintln(out, "Switched to local mode")
			}
			return nil
		},
	}
}
