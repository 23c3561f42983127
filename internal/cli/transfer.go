package cli

import (
	"fmt"
	"os"

	"github.com/nikbrunner/bmboard/internal/exporter"
	"github.com/nikbrunner/bmboard/internal/importer"
	"github.com/spf13/cobra"
)

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import bookmarks from a browser HTML export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			snap, err := importer.ParseHTML(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.start(ctx); err != nil {
				return err
			}
			if err := e.store.ImportSnapshot(ctx, snap); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks, %d categories, %d tab groups\n",
				len(snap.Bookmarks), len(snap.Categories), len(snap.TabGroups))
			return nil
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export the board as browser-compatible HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = exporter.DefaultExportPath(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.start(ctx); err != nil {
				return err
			}

			view := e.store.View()
			if err := os.WriteFile(path, []byte(exporter.ExportHTML(view)), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d categories to %s\n",
				len(view.AllBookmarks()), len(view.Categories), path)
			return nil
		},
	}
}
