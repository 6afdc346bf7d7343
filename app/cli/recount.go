package cli

import (
	"fmt"
	"io"

	"quillpost/app/services"

	"github.com/spf13/cobra"
)

// NewRecountCommand creates the recount command, which rewrites every
// post's commentsCount from its approved comments.
func NewRecountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute commentsCount for every post",
		Long: `Recompute commentsCount for every post from its approved comments.

Run this after a failed sync left counts stale. The server never does it
on its own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.store.Close()

			results, err := app.comments.RecountAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if failed := reportRecount(out, results); failed > 0 {
				return fmt.Errorf("%d of %d posts could not be recounted", failed, len(results))
			}
			fmt.Fprintf(out, "recounted %d posts\n", len(results))
			return nil
		},
	}
}

// reportRecount prints one line per post and returns how many passes
// failed. A post deleted while the pass ran is reported but not counted.
func reportRecount(w io.Writer, results []services.SyncResult) int {
	failed := 0
	for _, r := range results {
		switch r.Outcome {
		case services.SyncSynced:
			fmt.Fprintf(w, "post %d: %d approved comments\n", r.PostID, r.Count)
		case services.SyncFailed:
			failed++
			fmt.Fprintf(w, "post %d: %s: %v\n", r.PostID, r.Outcome, r.Err)
		default:
			fmt.Fprintf(w, "post %d: %s\n", r.PostID, r.Outcome)
		}
	}
	return failed
}
