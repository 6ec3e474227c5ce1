package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

var (
	listOffline    bool
	listClearCache bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var listCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"list", "ls"},
	Short:   "List stored conversations",
	Long: `List the conversations stored on the backend for your account, newest
first. The list is cached locally; with --offline, or when the backend
cannot be reached, the cached list is shown instead.

Load one with 'chatlegis load <number|id>'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			errOut := cmd.ErrOrStderr()

			if listClearCache {
				if err := a.cache.ClearCache(a.session.Name); err != nil {
					internal.LogWarn("Failed to clear cache", "error", err)
				} else {
					internal.LogInfo("Cache cleared")
				}
			}

			list := a.session.Conversations
			if !listOffline {
				var err error
				list, err = a.engine.RefreshConversations(ctx, a.session)
				if err != nil {
					if internal.IsUnauthenticated(err) {
						return err
					}
					internal.PrintWarning(errOut, fmt.Sprintf("Could not fetch history: %v", err))
					if len(list) > 0 {
						internal.PrintInfo(errOut, "Showing the cached list")
					}
				}
			}

			displayConversations(cmd.OutOrStdout(), list, a.session.ConversationID)
			return nil
		})
	},
}

func displayConversations(out io.Writer, list []internal.ConversationSummary, current string) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No conversations found.")
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📚 Conversations (%s)", countStyle.Render(strconv.Itoa(len(list))))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\t")
	for i, c := range list {
		marker := ""
		if c.ID == current {
			marker = " *"
		}
		title := c.Title
		if title == "" {
			title = "Untitled"
		}
		_, _ = fmt.Fprintf(w, "%d%s\t%s\t%s\t\n", i+1, marker, idStyle.Render(c.ID), titleStyle.Render(title))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Show the cached list without contacting the backend")
	listCmd.Flags().BoolVar(&listClearCache, "clear-cache", false, "Clear the cached list before running")
}
