package internal

// CreateTestSession creates a session with one completed turn
func CreateTestSession(name string) *Session {
	s := NewSession(name)
	s.ConversationID = "conv-" + name
	s.Category = CategoryStatutes
	s.Messages = []Message{
		{
			Role:    RoleUser,
			Content: "What is Article 184?",
		},
		{
			Role:    RoleAssistant,
			Content: "Article 184 sets out the original jurisdiction of the Supreme Court.",
		},
	}
	s.Conversations = []ConversationSummary{
		{ID: "conv-" + name, Title: "Article 184"},
	}
	return s
}

// CreateTestSessionWithMessages creates a session with custom messages
func CreateTestSessionWithMessages(name string, messages []Message) *Session {
	s := NewSession(name)
	s.ConversationID = "conv-" + name
	s.Messages = messages
	return s
}

// CreateTestAttachment creates a file attachment with n bytes of payload
func CreateTestAttachment(name string, n int) *Attachment {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	a, _ := NewFileAttachment(name, data)
	return a
}
