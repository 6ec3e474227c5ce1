package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chatlegis/internal"
	"github.com/iksnae/chatlegis/internal/export"
	"github.com/spf13/cobra"
)

var (
	format       string
	outputDir    string
	conversation string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the transcript to a file",
	Long: `Export the transcript of the current session in jsonl, md, yaml or json.

With --conversation a stored conversation is fetched and exported instead;
the session itself is left unchanged. Use --out - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			session := a.session
			if conversation != "" {
				id := conversation
				if c, ok := a.session.FindConversation(conversation); ok {
					id = c.ID
				}
				session = internal.NewSession(a.session.Name)
				session.AuthToken = a.session.AuthToken
				session.Category = a.session.Category
				session.Conversations = a.session.Conversations
				if _, err := a.engine.LoadHistory(ctx, session, id); err != nil {
					return err
				}
			}

			if outputDir == "-" {
				if err := exporter.Export(session, cmd.OutOrStdout()); err != nil {
					return &internal.ExportError{Format: format, Path: "stdout", Err: err}
				}
				return nil
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			name := session.Name
			if session.HasConversation() {
				name = session.ConversationID
			}
			path := filepath.Join(outputDir, fmt.Sprintf("chatlegis_%s.%s", internal.FileStem(name), exporter.Extension()))
			if err := writeExport(exporter, session, path); err != nil {
				return err
			}

			internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d message(s) written to %s", len(session.Messages), path))
			return nil
		})
	},
}

func writeExport(exporter export.Exporter, session *internal.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory, or - for stdout")
	exportCmd.Flags().StringVar(&conversation, "conversation", "", "Export a stored conversation (number or id) instead")
}
