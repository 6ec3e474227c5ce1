package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chatlegis/internal"
	"github.com/stretchr/testify/assert"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "short line untouched",
			text:  "Article 184",
			width: 80,
			want:  []string{"Article 184"},
		},
		{
			name:  "wraps on words",
			text:  "the quick brown fox jumps",
			width: 10,
			want:  []string{"the quick", "brown fox", "jumps"},
		},
		{
			name:  "keeps paragraphs",
			text:  "first\n\nsecond",
			width: 80,
			want:  []string{"first", "", "second"},
		},
		{
			name:  "overlong word kept whole",
			text:  "constitutionally fine",
			width: 8,
			want:  []string{"constitutionally", "fine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(wrapText(tt.text, tt.width), "\n")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	rendered := renderMarkdown("**Section 497** deals with *bail*.", "notty")
	assert.Contains(t, rendered, "Section 497")
	assert.NotContains(t, rendered, "**")
}

func TestConversationTitle(t *testing.T) {
	s := internal.NewSession("default")
	assert.Equal(t, "New conversation", conversationTitle(s))

	s.ConversationID = "c1"
	assert.Equal(t, "c1", conversationTitle(s))

	s.Conversations = []internal.ConversationSummary{{ID: "c1", Title: "Bail hearing"}}
	assert.Equal(t, "Bail hearing", conversationTitle(s))
}

func TestDisplayMessage(t *testing.T) {
	var buf bytes.Buffer
	displayMessage(&buf, 2, internal.Message{Role: internal.RoleAssistant, Content: "Granted."}, 4, false)
	out := buf.String()
	assert.Contains(t, out, "ChatLegis")
	assert.Contains(t, out, "[2/4]")
	assert.Contains(t, out, "Granted.")

	buf.Reset()
	displayMessage(&buf, 1, internal.Message{Role: internal.RoleUser, Content: "  "}, 1, false)
	assert.Contains(t, buf.String(), "You")
	assert.Contains(t, buf.String(), "(empty message)")
}
