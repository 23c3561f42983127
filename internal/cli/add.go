package cli

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/spf13/cobra"
)

func addCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category or a bookmark",
	}
	cmd.AddCommand(addCategoryCmd(opts), addBookmarkCmd(opts))
	return cmd
}

func addCategoryCmd(opts *options) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "category <name>",
		Short: "Add a category at the end of the board or of a tab group",
		Args:  cobra.ExactArgs(1),
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

			var groupID *string
			if group != "" {
				g := findTabGroup(e.store.View(), group)
				if g != nil {
					groupID = model.StringPtr(g.ID)
				} else {
					id, err := e.store.CreateTabGroup(ctx, group)
					if err != nil {
						return err
					}
					groupID = &id
				}
			}

			if _, err := e.store.CreateCategory(ctx, args[0], groupID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "tab group to add the category to, created if missing")
	return cmd
}

func addBookmarkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <category> <title> <url>",
		Short: "Add a bookmark at the end of a category",
		Args:  cobra.ExactArgs(3),
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

			cat := findCategory(e.store.View(), args[0])
			if cat == nil {
				return fmt.Errorf("no category named %q", args[0])
			}
			if _, err := e.store.CreateBookmark(ctx, cat.ID, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], cat.Name)
			return nil
		},
	}
}

// findCategory matches names case-insensitively. The first in layout order wins.
func findCategory(view model.View, name string) *model.Category {
	for _, item := range view.Layout {
		switch item := item.(type) {
		case model.CategoryItem:
			if strings.EqualFold(item.Category.Name, name) {
				return item.Category
			}
		case model.TabGroupItem:
			for _, c := range item.Group.Categories {
				if strings.EqualFold(c.Name, name) {
					return c
				}
			}
		}
	}
	return nil
}

func findTabGroup(view model.View, name string) *model.TabGroup {
	for _, g := range view.TabGroups {
		if strings.EqualFold(g.Name, name) {
			return g
		}
	}
	return nil
}
