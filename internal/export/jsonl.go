package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chatlegis/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range session.Messages {
		obj := map[string]interface{}{
			"seq":     i,
			"role":    msg.Role,
			"content": msg.Content,
		}

		if session.ConversationID != "" {
			obj["conversation_id"] = session.ConversationID
		}

		if len(msg.Attachments) > 0 {
			names := make([]string, 0, len(msg.Attachments))
			for _, a := range msg.Attachments {
				names = append(names, a.Name)
			}
			obj["attachments"] = names
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
