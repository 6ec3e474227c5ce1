package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultMinAudioBytes is the size below which a recording is treated as
// accidental and discarded
const DefaultMinAudioBytes = 1000

// DefaultRecordingName is used for recordings that carry no filename
const DefaultRecordingName = "recording.wav"

// AttachmentKind tells uploaded files and audio recordings apart
type AttachmentKind string

const (
	AttachmentFile  AttachmentKind = "file"
	AttachmentAudio AttachmentKind = "audio"
)

// Attachment is a payload waiting to be sent with the next turn
type Attachment struct {
	Kind       AttachmentKind
	Name       string
	Data       []byte
	CapturedAt time.Time
}

// NewFileAttachment wraps an uploaded file
func NewFileAttachment(name string, data []byte) (*Attachment, error) {
	if name == "" {
		return nil, fmt.Errorf("attachment name is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("attachment %s is empty", name)
	}
	return &Attachment{
		Kind:       AttachmentFile,
		Name:       name,
		Data:       data,
		CapturedAt: time.Now(),
	}, nil
}

// NewAudioAttachment wraps an audio recording. Recordings shorter than
// minBytes are discarded with ErrRecordingTooShort.
func NewAudioAttachment(name string, data []byte, minBytes int) (*Attachment, error) {
	if minBytes <= 0 {
		minBytes = DefaultMinAudioBytes
	}
	if len(data) < minBytes {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", ErrRecordingTooShort, len(data), minBytes)
	}
	if name == "" {
		name = DefaultRecordingName
	}
	return &Attachment{
		Kind:       AttachmentAudio,
		Name:       name,
		Data:       data,
		CapturedAt: time.Now(),
	}, nil
}

// ReadFileAttachment reads a file from disk as an upload
func ReadFileAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	return NewFileAttachment(filepath.Base(path), data)
}

// ReadAudioAttachment reads a recorded clip from disk
func ReadAudioAttachment(path string, minBytes int) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return NewAudioAttachment(filepath.Base(path), data, minBytes)
}

// Size returns the payload size in bytes
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
