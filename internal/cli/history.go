package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/internal/display"
	"github.com/dyike/FinAgentGo/internal/storage"
	"github.com/dyike/FinAgentGo/models"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var params models.HistoryParams
	cmd := &cobra.Command{
		Use:   "history [SESSION_ID]",
		Short: "List recorded sessions or print one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(opts.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			if len(args) == 0 {
				page, err := store.ListSessions(ctx, params)
				if err != nil {
					return err
				}
				display.Sessions(cmd.OutOrStdout(), page)
				return nil
			}

			sess, err := store.GetSession(ctx, args[0])
			if err != nil {
				return err
			}
			if sess == nil {
				return fmt.Errorf("session %s not found", args[0])
			}
			msgs, err := store.ListMessages(ctx, sess.ID)
			if err != nil {
				return err
			}
			display.Transcript(cmd.OutOrStdout(), sess, msgs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&params.Limit, "limit", "n", 20, "Sessions per page")
	cmd.Flags().Int64Var(&params.Cursor, "cursor", 0, "Continue from a previous page's cursor")
	return cmd
}
