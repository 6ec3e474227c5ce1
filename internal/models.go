package internal

import (
	"fmt"
	"strings"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Category scopes backend retrieval to a document class
type Category string

const (
	CategoryGeneral    Category = "General"
	CategoryStatutes   Category = "Statutes"
	CategoryJudgements Category = "Judgements"
	CategoryContracts  Category = "Contracts"
	CategorySuits      Category = "Suits"
)

// Categories lists the selectable categories in display order
var Categories = []Category{
	CategoryGeneral,
	CategoryStatutes,
	CategoryJudgements,
	CategoryContracts,
	CategorySuits,
}

// ParseCategory resolves a user supplied category name (case-insensitive).
// "", "none" and "general" all resolve to CategoryGeneral.
func ParseCategory(name string) (Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return CategoryGeneral, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (supported: %s)", name, categoryNames())
}

// Scope maps the category to the document_category value sent to the
// backend. The unscoped sentinel maps to nil and is never sent as a string.
func (c Category) Scope() *string {
	if c == "" || c == CategoryGeneral {
		return nil
	}
	s := string(c)
	return &s
}

func categoryNames() string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// AttachmentRef names a file attached to a message
type AttachmentRef struct {
	Name string `json:"name" yaml:"name"`
}

// Message is one entry of the chat transcript
type Message struct {
	Role        Role            `json:"role" yaml:"role"`
	Content     string          `json:"content" yaml:"content"`
	Attachments []AttachmentRef `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// ConversationSummary is a stored conversation as listed by the backend
type ConversationSummary struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

func attachingNote(name string) string {
	return fmt.Sprintf("\n\n*Attaching file: `%s`*", name)
}

func attachedNote(name string) string {
	return fmt.Sprintf("\n\n*Attached file: `%s`*", name)
}
