package internal

import "strconv"

// DefaultSessionName is used when no --session is given
const DefaultSessionName = "default"

// Session is the local state of one user's chat
type Session struct {
	Name           string                `json:"name" yaml:"name"`
	Messages       []Message             `json:"messages" yaml:"messages"`
	ConversationID string                `json:"conversation_id,omitempty" yaml:"conversation_id,omitempty"`
	Category       Category              `json:"category" yaml:"category"`
	Conversations  []ConversationSummary `json:"conversations,omitempty" yaml:"conversations,omitempty"`
	Pending        *Attachment           `json:"-" yaml:"-"`
	AuthToken      string                `json:"-" yaml:"-"`
}

// NewSession creates an empty session scoped to the General category
func NewSession(name string) *Session {
	if name == "" {
		name = DefaultSessionName
	}
	return &Session{
		Name:     name,
		Messages: make([]Message, 0),
		Category: CategoryGeneral,
	}
}

// HasConversation reports whether the backend has acknowledged a turn
func (s *Session) HasConversation() bool {
	return s.ConversationID != ""
}

// Reset starts a new chat. Category, token and the cached conversation
// list survive.
func (s *Session) Reset() {
	s.Messages = make([]Message, 0)
	s.ConversationID = ""
	s.Pending = nil
}

// Attach sets the pending attachment. The most recently produced attachment
// wins; the one it replaced (if any) is returned.
func (s *Session) Attach(a *Attachment) *Attachment {
	previous := s.Pending
	s.Pending = a
	return previous
}

// Detach drops the pending attachment and returns it
func (s *Session) Detach() *Attachment {
	previous := s.Pending
	s.Pending = nil
	return previous
}

// takePending consumes the pending attachment
func (s *Session) takePending() *Attachment {
	return s.Detach()
}

func (s *Session) appendMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// replaceHistory swaps in a loaded conversation wholesale
func (s *Session) replaceHistory(conversationID string, messages []Message) {
	s.Messages = messages
	s.ConversationID = conversationID
}

// FindConversation looks up a cached conversation by id or by 1-based
// position in the cached list
func (s *Session) FindConversation(ref string) (ConversationSummary, bool) {
	for _, c := range s.Conversations {
		if c.ID == ref {
			return c, true
		}
	}
	idx, err := strconv.Atoi(ref)
	if err == nil && idx >= 1 && idx <= len(s.Conversations) {
		return s.Conversations[idx-1], true
	}
	return ConversationSummary{}, false
}
