package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/spf13/cobra"
)

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the board in layout order",
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

			printView(cmd.OutOrStdout(), e.store.View())
			return nil
		},
	}
}

func printView(w io.Writer, view model.View) {
	if len(view.Layout) == 0 {
		fmt.Fprintln(w, "The board is empty. Try bmboard seed or bmboard import.")
		return
	}

	printCategory := func(c *model.Category, depth int) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(w, "%s%s\n", indent, c.Name)
		for _, b := range c.Bookmarks {
			fmt.Fprintf(w, "%s  %s  %s\n", indent, b.Title, b.URL)
		}
	}

	for _, item := range view.Layout {
		switch item := item.(type) {
		case model.CategoryItem:
			printCategory(item.Category, 0)
		case model.TabGroupItem:
			fmt.Fprintf(w, "[%s]\n", item.Group.Name)
			for _, c := range item.Group.Categories {
				printCategory(c, 1)
			}
		}
	}
}
