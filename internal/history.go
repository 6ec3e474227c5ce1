package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PlaceholderContent stands in for a record whose text could not be found
const PlaceholderContent = "[Message content not found]"

var errNoContent = errors.New("record has neither prompt nor parts text")

// recordDecoder decodes one historical schema variant. ok is false when the
// record is not of that variant.
type recordDecoder struct {
	name   string
	decode func(rec rawRecord) (msg Message, ok bool)
}

// historyDecoders is tried in order; the first match wins. New backend
// schemas are added here.
var historyDecoders = []recordDecoder{
	{name: "prompt", decode: decodePromptRecord},
	{name: "parts", decode: decodePartsRecord},
}

// rawRecord holds the fields of every known variant
type rawRecord struct {
	Role   *string `json:"role"`
	Prompt *string `json:"prompt"`
	Files  []struct {
		Name string `json:"name"`
	} `json:"files"`
	Parts []struct {
		Text *string `json:"text"`
	} `json:"parts"`
}

// {role, prompt, files:[{name}]}
func decodePromptRecord(rec rawRecord) (Message, bool) {
	if rec.Prompt == nil {
		return Message{}, false
	}
	var content strings.Builder
	content.WriteString(*rec.Prompt)
	var refs []AttachmentRef
	for _, f := range rec.Files {
		content.WriteString(attachedNote(f.Name))
		refs = append(refs, AttachmentRef{Name: f.Name})
	}
	return Message{Content: content.String(), Attachments: refs}, true
}

// {role, parts:[{text}]}
func decodePartsRecord(rec rawRecord) (Message, bool) {
	if len(rec.Parts) == 0 || rec.Parts[0].Text == nil {
		return Message{}, false
	}
	return Message{Content: *rec.Parts[0].Text}, true
}

// normalizeRole maps backend role names onto the two transcript roles
func normalizeRole(role *string) (Role, error) {
	if role == nil {
		return RoleAssistant, fmt.Errorf("record has no role")
	}
	switch strings.ToLower(strings.TrimSpace(*role)) {
	case "user", "human":
		return RoleUser, nil
	case "assistant", "model", "ai":
		return RoleAssistant, nil
	default:
		return RoleAssistant, fmt.Errorf("unknown role %q", *role)
	}
}

// NormalizeRecord converts one stored record into a transcript message.
// It never fails: an unreadable record becomes the placeholder and the
// reason is returned alongside.
func NormalizeRecord(raw json.RawMessage) (Message, error) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Message{Role: RoleAssistant, Content: PlaceholderContent}, fmt.Errorf("undecodable record: %w", err)
	}

	role, roleErr := normalizeRole(rec.Role)
	for _, d := range historyDecoders {
		if msg, ok := d.decode(rec); ok {
			LogDebug("Decoded history record", "variant", d.name, "role", role)
			msg.Role = role
			return msg, roleErr
		}
	}

	return Message{Role: role, Content: PlaceholderContent}, errors.Join(errNoContent, roleErr)
}

// NormalizeHistory converts every record, degrading bad ones individually
func NormalizeHistory(conversationID string, records []json.RawMessage) ([]Message, []*RecordError) {
	messages := make([]Message, 0, len(records))
	var degraded []*RecordError
	for i, raw := range records {
		msg, err := NormalizeRecord(raw)
		if err != nil {
			recErr := &RecordError{ConversationID: conversationID, Index: i, Err: err}
			LogWarn("Degraded history record", "conversation", conversationID, "index", i, "error", err)
			degraded = append(degraded, recErr)
		}
		messages = append(messages, msg)
	}
	return messages, degraded
}
