package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Backend is the subset of Client the engine depends on
type Backend interface {
	Chat(ctx context.Context, auth Auth, req ChatRequest) (*ChatReply, error)
	Conversations(ctx context.Context, auth Auth) ([]ConversationSummary, error)
	History(ctx context.Context, auth Auth, conversationID string) ([]json.RawMessage, error)
}

// Turn is the record of one attempted exchange: the user message appended
// before the call and the assistant message appended after it resolved
type Turn struct {
	User           Message
	Assistant      Message
	ConversationID string
	Err            error
}

// Failed reports whether the backend did not produce a reply
func (t *Turn) Failed() bool {
	return t.Err != nil
}

// HistoryLoad is the result of loading a stored conversation
type HistoryLoad struct {
	ConversationID string
	Messages       []Message
	Degraded       []*RecordError
}

// Engine reconciles a Session with the backend
type Engine struct {
	backend Backend
	cache   *CacheManager
}

// NewEngine creates an Engine. cache may be nil.
func NewEngine(backend Backend, cache *CacheManager) *Engine {
	return &Engine{backend: backend, cache: cache}
}

func sessionAuth(s *Session) Auth {
	return NewAuth(s.AuthToken)
}

// SendTurn sends text (plus the pending attachment, if any) as the next
// turn of s. The user message is appended before the request is issued and
// exactly one assistant message after it resolves, so a failed turn still
// leaves a reply in the transcript; the classified error is returned too.
//
// ErrUnauthenticated and ErrEmptyPrompt are returned before anything is
// appended.
func (e *Engine) SendTurn(ctx context.Context, s *Session, text string) (*Turn, error) {
	auth := sessionAuth(s)
	if !auth.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" && s.Pending == nil {
		return nil, ErrEmptyPrompt
	}

	attachment := s.takePending()

	user := Message{Role: RoleUser, Content: text}
	if attachment != nil {
		user.Content += attachingNote(attachment.Name)
		user.Attachments = []AttachmentRef{{Name: attachment.Name}}
	}
	s.appendMessage(user)

	LogDebug("Sending turn",
		"session", s.Name,
		"conversation", s.ConversationID,
		"category", s.Category,
		"attachment", attachment != nil)

	reply, err := e.backend.Chat(ctx, auth, ChatRequest{
		Prompt:         text,
		ConversationID: s.ConversationID,
		Category:       s.Category,
		Attachment:     attachment,
	})

	turn := &Turn{User: user, Err: err}
	if reply != nil {
		// The backend acknowledged the turn and owns the identifier.
		s.ConversationID = reply.ConversationID
		turn.Assistant = Message{Role: RoleAssistant, Content: reply.Reply}
	} else {
		turn.Assistant = Message{Role: RoleAssistant, Content: FailureReply(err)}
	}
	s.appendMessage(turn.Assistant)
	turn.ConversationID = s.ConversationID

	if err != nil {
		LogWarn("Turn failed", "session", s.Name, "error", err)
		return turn, err
	}
	return turn, nil
}

// LoadHistory replaces the transcript of s with the stored conversation id.
// If the backend cannot be reached or answers with an error, s is left
// untouched. Individually unreadable records degrade to a placeholder.
func (e *Engine) LoadHistory(ctx context.Context, s *Session, conversationID string) (*HistoryLoad, error) {
	auth := sessionAuth(s)
	if !auth.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	records, err := e.backend.History(ctx, auth, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
	}

	messages, degraded := NormalizeHistory(conversationID, records)
	s.replaceHistory(conversationID, messages)

	LogDebug("Loaded conversation", "conversation", conversationID, "messages", len(messages), "degraded", len(degraded))

	return &HistoryLoad{
		ConversationID: conversationID,
		Messages:       messages,
		Degraded:       degraded,
	}, nil
}

// RefreshConversations replaces the cached conversation list with the
// backend's. On failure the previous list is kept and the error returned.
func (e *Engine) RefreshConversations(ctx context.Context, s *Session) ([]ConversationSummary, error) {
	auth := sessionAuth(s)
	if !auth.Authenticated() {
		return s.Conversations, ErrUnauthenticated
	}

	list, err := e.backend.Conversations(ctx, auth)
	if err != nil {
		LogWarn("Could not fetch history", "error", err)
		return s.Conversations, err
	}
	s.Conversations = list

	if e.cache != nil {
		if err := e.cache.SaveConversations(s.Name, list); err != nil {
			LogWarn("Failed to cache conversation list", "error", err)
		}
	}
	return list, nil
}

// NewChat clears the transcript and conversation id of s
func (e *Engine) NewChat(s *Session) {
	s.Reset()
}

// IsUnauthenticated reports whether err is the local missing-token failure
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
