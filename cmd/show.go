package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

var (
	limit   int
	showRaw bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the transcript of the current session",
	Long: `Display the local transcript of the current session, including the
conversation it belongs to, the selected category and any attachment
waiting to be sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		styled := !showRaw && internal.IsTerminal(out)
		displaySessionHeader(out, a.session)

		messages := a.session.Messages
		total := len(messages)
		start := 0
		if limit > 0 && limit < total {
			start = total - limit
			fmt.Fprintln(out, counterStyle.Render(fmt.Sprintf("... (%d earlier message(s))", start)))
			fmt.Fprintln(out)
		}
		for i := start; i < total; i++ {
			displayMessage(out, i+1, messages[i], total, styled)
		}
		if total == 0 {
			fmt.Fprintln(out, counterStyle.Render("No messages yet. Ask something with 'chatlegis send' or 'chatlegis chat'."))
		}
		return nil
	},
}

func conversationTitle(s *internal.Session) string {
	if !s.HasConversation() {
		return "New conversation"
	}
	for _, c := range s.Conversations {
		if c.ID == s.ConversationID && c.Title != "" {
			return c.Title
		}
	}
	return s.ConversationID
}

func displaySessionHeader(w io.Writer, s *internal.Session) {
	if s == nil {
		return
	}
	fmt.Fprintln(w, sessionHeaderStyle.Render(fmt.Sprintf("⚖️  %s", conversationTitle(s))))

	metaParts := []string{fmt.Sprintf("Session: %s", s.Name)}
	if s.HasConversation() {
		metaParts = append(metaParts, fmt.Sprintf("Conversation: %s", s.ConversationID))
	}
	metaParts = append(metaParts,
		fmt.Sprintf("Category: %s", s.Category),
		fmt.Sprintf("Messages: %d", len(s.Messages)))
	if s.Pending != nil {
		metaParts = append(metaParts, fmt.Sprintf("Pending: %s (%d bytes)", s.Pending.Name, s.Pending.Size()))
	}
	fmt.Fprintln(w, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Fprintln(w)
}

func displayMessage(w io.Writer, index int, msg internal.Message, total int, styled bool) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Role {
	case internal.RoleUser:
		actorStyle = userMessageStyle
		actorLabel = "👤 You"
	default:
		actorStyle = assistantMessageStyle
		actorLabel = "⚖️  ChatLegis"
	}

	header := actorStyle.Render(actorLabel) + " " + counterStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	fmt.Fprintln(w, header)

	content := strings.TrimSpace(msg.Content)
	switch {
	case content == "":
		fmt.Fprintln(w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	case styled:
		fmt.Fprint(w, renderMarkdown(content, ""))
	default:
		fmt.Fprintln(w, messageContentStyle.Render(wrapText(content, 80)))
	}

	fmt.Fprintln(w)
}

// renderMarkdown renders content with glamour. An empty style picks one
// from the terminal background. Rendering failures fall back to the text.
func renderMarkdown(content, style string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		internal.LogDebug("Markdown renderer unavailable", "error", err)
		return content + "\n"
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		internal.LogDebug("Markdown rendering failed", "error", err)
		return content + "\n"
	}
	return rendered
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last n messages")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print assistant markdown without rendering")
}
