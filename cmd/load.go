package cmd

import (
	"fmt"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <number|id>",
	Short: "Load a stored conversation into the session",
	Long: `Replace the local transcript with a conversation stored on the backend.
The argument is either the conversation id or its number in the last
'chatlegis conversations' listing. Later messages continue that
conversation. If loading fails the current transcript is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			id := args[0]
			if c, ok := a.session.FindConversation(args[0]); ok {
				id = c.ID
			}

			var load *internal.HistoryLoad
			err := internal.ShowProgress(ctx, cmd.ErrOrStderr(), "Loading conversation...", func() error {
				var err error
				load, err = a.engine.LoadHistory(ctx, a.session, id)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			internal.PrintSuccess(out, fmt.Sprintf("Loaded %d message(s) from conversation %s", len(load.Messages), load.ConversationID))
			if n := len(load.Degraded); n > 0 {
				internal.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%d record(s) could not be read and are shown as %q", n, internal.PlaceholderContent))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
