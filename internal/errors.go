package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before any request when no token is set
	ErrUnauthenticated = errors.New("authentication token not set: run 'chatlegis login --token <jwt>' or set CHATLEGIS_TOKEN")

	// ErrEmptyPrompt is returned when there is neither text nor an attachment to send
	ErrEmptyPrompt = errors.New("nothing to send: prompt is empty and no file is attached")

	// ErrRecordingTooShort marks an audio recording discarded as accidental
	ErrRecordingTooShort = errors.New("audio recording too short")
)

// Assistant replies recorded in the transcript when a turn fails
const (
	ReplyConnectionFailure = "Error: Could not connect to the ChatLegis service."
	ReplyServerError       = "An error occurred while communicating with the service."
	ReplyUnexpected        = "An unexpected error occurred."
	ReplyMissing           = "Sorry, I couldn't get a reply."
)

// ConnectionError means no response was received (refused, DNS, timeout)
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Connection Error: Could not connect to the backend: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ServerError is a response with a non-2xx status
type ServerError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Error from server: %d - %s", e.StatusCode, e.Body)
}

// MalformedResponseError means the body could not be decoded or lacked
// required fields
type MalformedResponseError struct {
	URL  string
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("Unexpected response from server: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// RecordError describes a history record that degraded to the placeholder
type RecordError struct {
	ConversationID string
	Index          int
	Err            error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("history record error [%s#%d]: %v", e.ConversationID, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StoreError represents errors accessing the local session store
type StoreError struct {
	Path string
	Op   string // "open", "migrate", "load", "save", "delete"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// FailureReply returns the assistant text recorded for a failed turn
func FailureReply(err error) string {
	var connErr *ConnectionError
	var serverErr *ServerError
	switch {
	case errors.As(err, &connErr):
		return ReplyConnectionFailure
	case errors.As(err, &serverErr):
		return ReplyServerError
	default:
		return ReplyUnexpected
	}
}
