package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/bmboard/internal/culler"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/spf13/cobra"
)

func checkCmd(opts *options) *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		deleteDead  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find bookmarks whose links are dead or unreachable",
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

			checkOpts := culler.Options{
				Concurrency:    e.cfg.Check.Concurrency,
				Timeout:        e.cfg.Check.Timeout,
				ExcludeDomains: e.cfg.Check.ExcludeDomains,
				OnProgress: func(completed, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rChecking %d/%d", completed, total)
				},
			}
			if cmd.Flags().Changed("concurrency") {
				checkOpts.Concurrency = concurrency
			}
			if cmd.Flags().Changed("timeout") {
				checkOpts.Timeout = timeout
			}

			view := e.store.View()
			results, err := culler.Check(ctx, view.AllBookmarks(), checkOpts)
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("check cancelled: %w", err)
			}

			out := cmd.OutOrStdout()
			counts := map[culler.Status]int{}
			var dead []model.Bookmark
			for _, r := range results {
				counts[r.Status]++
				switch r.Status {
				case culler.Dead:
					dead = append(dead, r.Bookmark)
					fmt.Fprintf(out, "dead         %d  %s  %s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
				case culler.Unreachable:
					fmt.Fprintf(out, "unreachable  %s  %s  (%s)\n", r.Bookmark.Title, r.Bookmark.URL, r.Error)
				}
			}
			fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n",
				counts[culler.Healthy], counts[culler.Dead], counts[culler.Unreachable])

			if !deleteDead || len(dead) == 0 {
				return nil
			}
			var errs []error
			for _, b := range dead {
				if err := e.store.DeleteBookmarkByID(ctx, b.ID); err != nil {
					errs = append(errs, err)
				}
			}
			fmt.Fprintf(out, "Deleted %d dead bookmarks\n", len(dead)-len(errs))
			return errors.Join(errs...)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "parallel requests")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout per request")
	cmd.Flags().BoolVar(&deleteDead, "delete", false, "delete bookmarks whose links are dead")
	return cmd
}
