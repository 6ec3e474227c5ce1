package cmd

import (
	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new chat",
	Long: `Clear the local transcript and forget the current conversation. The next
message starts a new conversation on the backend. The selected category
and your login are kept; a pending attachment is dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			a.engine.NewChat(a.session)
			internal.PrintSuccess(cmd.OutOrStdout(), "Started a new chat")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
