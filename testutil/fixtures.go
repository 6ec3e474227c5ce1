package testutil

import (
	"encoding/json"
	"testing"
)

// Stored history records in the shapes the backend has used over time
const (
	PromptRecord         = `{"role":"user","prompt":"hi","files":[]}`
	PromptRecordWithFile = `{"role":"user","prompt":"Summarise this","files":[{"name":"lease.pdf"}]}`
	PartsRecord          = `{"role":"assistant","parts":[{"text":"hello"}]}`
	ModelPartsRecord     = `{"role":"model","parts":[{"text":"from the model"}]}`
	EmptyRecord          = `{"role":"user"}`
	NonObjectRecord      = `"just a string"`
)

// HistoryRecords turns raw JSON fixtures into the records History returns
func HistoryRecords(records ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		out = append(out, json.RawMessage(r))
	}
	return out
}

// AudioClip returns n bytes shaped like a WAV recording
func AudioClip(t *testing.T, n int) []byte {
	t.Helper()
	clip := make([]byte, n)
	copy(clip, "RIFF")
	if n >= 12 {
		copy(clip[8:], "WAVE")
	}
	return clip
}
