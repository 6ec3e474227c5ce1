package cmd

import (
	"fmt"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

var attachAudio bool

// attachCmd represents the attach command
var attachCmd = &cobra.Command{
	Use:   "attach <path>",
	Short: "Attach a document or recording to the next turn",
	Long: `Read a file and keep it pending until the next turn is sent. Only one
attachment is pending at a time: attaching again replaces it.

With --audio the file is treated as a voice recording. Recordings under
the configured minimum size (audio.min_bytes, 1000 bytes by default) are
discarded as accidental.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			filePath, audioPath := args[0], ""
			if attachAudio {
				filePath, audioPath = "", args[0]
			}
			before := a.session.Pending
			if err := attachFromFlags(cmd.ErrOrStderr(), a.session, filePath, audioPath); err != nil {
				return err
			}
			if p := a.session.Pending; p != nil && p != before {
				internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Attached %s (%d bytes); it will be sent with your next message", p.Name, p.Size()))
			}
			return nil
		})
	},
}

// detachCmd represents the detach command
var detachCmd = &cobra.Command{
	Use:   "detach",
	Short: "Drop the pending attachment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if dropped := a.session.Detach(); dropped != nil {
				internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Dropped %s", dropped.Name))
			} else {
				internal.PrintInfo(cmd.OutOrStdout(), "Nothing attached")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(detachCmd)
	attachCmd.Flags().BoolVar(&attachAudio, "audio", false, "Treat the file as an audio recording")
}
