// Package cli wires the bmboard commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/picker"
	"github.com/nikbrunner/bmboard/internal/search"
	"github.com/nikbrunner/bmboard/internal/store"
	"github.com/nikbrunner/bmboard/internal/tui"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRoot().ExecuteContext(ctx)
}

// Overridden in tests, which have no terminal.
var (
	runProgram = func(m tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
		return tea.NewProgram(m, opts...).Run()
	}
	openURL = tui.OpenURL
)

func NewRoot() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "bmboard [query]",
		Short: "Bookmark board with categories and tab groups",
		Long: `bmboard keeps bookmarks in categories, side by side or gathered in tab groups.

Without arguments it opens the board. With a query it searches all bookmarks
and opens the one you pick.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runQuickSearch(cmd, opts, strings.Join(args, " "))
			}
			return runBoard(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/bmboard/config.toml)")

	root.AddCommand(
		importCmd(opts),
		exportCmd(opts),
		modeCmd(opts),
		addCmd(opts),
		listCmd(opts),
		seedCmd(opts),
		eraseCmd(opts),
		checkCmd(opts),
	)
	return root
}

// runBoard runs the interactive board. Store dialogs open inside it.
func runBoard(ctx context.Context, opts *options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var dialog *tui.Dialog
	e, err := openEnv(ctx, opts, func(logger *slog.Logger) store.Dialog {
		dialog = tui.NewDialog(logger)
		return dialog
	})
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.NewApp(tui.AppParams{Context: ctx, Store: e.store, Logger: e.logger})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	dialog.Attach(p.Send)
	e.store.OnRender(tui.RenderNotifier(p))

	if err := e.store.Start(ctx); err != nil {
		return err
	}
	_, err = p.Run()
	// Unblocks dialogs still waiting for an answer
	cancel()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

// runQuickSearch opens the single match, or lets the user pick one.
func runQuickSearch(cmd *cobra.Command, opts *options, query string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, opts, nil)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.start(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	results := search.Bookmarks(e.store.View(), query)
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
	} else {
		final, err := runProgram(picker.New(results, query))
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}
		p := final.(picker.Picker)
		if p.Cancelled() {
			return nil
		}
		var ok bool
		if selected, ok = p.SelectedBookmark(); !ok {
			return nil
		}
	}

	fmt.Fprintf(out, "Opening: %s\n", selected.Title)
	e.logger.Info("open bookmark", "id", selected.ID, "url", selected.URL)
	return openURL(selected.URL)
}
