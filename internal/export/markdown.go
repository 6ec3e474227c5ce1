package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatlegis/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format. Message content is already
// markdown (attachment notes included) and is written as-is.
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	title := session.ConversationID
	if title == "" {
		title = "(new conversation)"
	}
	for _, c := range session.Conversations {
		if c.ID == session.ConversationID && c.Title != "" {
			title = c.Title
			break
		}
	}

	_, _ = fmt.Fprintf(w, "# ChatLegis: %s\n\n", title)

	if session.ConversationID != "" {
		_, _ = fmt.Fprintf(w, "**Conversation:** %s  \n", session.ConversationID)
	}
	_, _ = fmt.Fprintf(w, "**Category:** %s  \n", session.Category)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", roleLabel(msg.Role), strings.TrimSpace(msg.Content))

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func roleLabel(role internal.Role) string {
	switch role {
	case internal.RoleUser:
		return "You"
	case internal.RoleAssistant:
		return "ChatLegis"
	default:
		return string(role)
	}
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
