package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

// categoryCmd represents the category command
var categoryCmd = &cobra.Command{
	Use:   "category [name]",
	Short: "Show or select the document category",
	Long: `Scope retrieval to one class of documents. "General" (or "none")
searches everything. Without an argument the current category and the
available ones are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				printCategories(out, a.session.Category)
				return nil
			}
			category, err := internal.ParseCategory(args[0])
			if err != nil {
				return err
			}
			a.session.Category = category
			internal.PrintSuccess(out, fmt.Sprintf("Category set to %s", category))
			return nil
		})
	},
}

func printCategories(out io.Writer, current internal.Category) {
	for _, c := range internal.Categories {
		marker := " "
		if c == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, c)
	}
}

func init() {
	rootCmd.AddCommand(categoryCmd)
}
