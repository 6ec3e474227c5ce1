package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

var (
	sendFile     string
	sendAudio    string
	sendCategory string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [prompt...]",
	Short: "Send one question to ChatLegis",
	Long: `Send a single turn in the current conversation and print the reply.

A file or audio recording can be attached with --file or --audio; it
replaces anything attached earlier with 'chatlegis attach'. The prompt may
be empty when an attachment is present.`,
	Example: `  chatlegis send "What is Article 184?"
  chatlegis send --category statutes "Which sections cover bail?"
  chatlegis send --file lease.pdf "Summarise the termination clause"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		ctx := cmd.Context()

		return withApp(ctx, func(a *app) error {
			if sendCategory != "" {
				category, err := internal.ParseCategory(sendCategory)
				if err != nil {
					return err
				}
				a.session.Category = category
			}
			if err := attachFromFlags(cmd.ErrOrStderr(), a.session, sendFile, sendAudio); err != nil {
				return err
			}

			_, err := runTurn(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), a, prompt)
			return err
		})
	},
}

// attachFromFlags reads --file/--audio style paths into the session. When
// both are given the audio recording, produced last, wins.
func attachFromFlags(w io.Writer, s *internal.Session, filePath, audioPath string) error {
	if filePath != "" {
		attachment, err := internal.ReadFileAttachment(filePath)
		if err != nil {
			return err
		}
		replaceAttachment(w, s, attachment)
	}
	if audioPath != "" {
		attachment, err := internal.ReadAudioAttachment(audioPath, cfg.AudioMinBytes)
		if errors.Is(err, internal.ErrRecordingTooShort) {
			internal.PrintWarning(w, fmt.Sprintf("Recording discarded: %v", err))
			return nil
		}
		if err != nil {
			return err
		}
		replaceAttachment(w, s, attachment)
	}
	return nil
}

func replaceAttachment(w io.Writer, s *internal.Session, attachment *internal.Attachment) {
	if previous := s.Attach(attachment); previous != nil && previous.Name != attachment.Name {
		internal.PrintInfo(w, fmt.Sprintf("Replaced pending attachment %s with %s", previous.Name, attachment.Name))
	}
}

// runTurn sends one turn behind the thinking spinner and prints the reply.
// A failed turn still prints the recorded assistant reply before its error
// is returned.
func runTurn(ctx context.Context, out, errOut io.Writer, a *app, prompt string) (*internal.Turn, error) {
	var turn *internal.Turn
	sendErr := internal.ShowProgress(ctx, errOut, internal.ThinkingMessage, func() error {
		var err error
		turn, err = a.engine.SendTurn(ctx, a.session, prompt)
		return err
	})

	if turn == nil {
		return nil, sendErr
	}

	total := len(a.session.Messages)
	displayMessage(out, total, turn.Assistant, total, internal.IsTerminal(out))
	return turn, sendErr
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Attach a document to this turn")
	sendCmd.Flags().StringVarP(&sendAudio, "audio", "a", "", "Attach an audio recording to this turn")
	sendCmd.Flags().StringVarP(&sendCategory, "category", "c", "", "Scope retrieval to a document category")
}
