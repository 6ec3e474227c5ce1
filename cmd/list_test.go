package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/chatlegis/internal"
	"github.com/iksnae/chatlegis/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConversation(env *cliEnv, id, title string, records ...string) {
	raw := make([]interface{}, 0, len(records))
	for _, r := range testutil.HistoryRecords(records...) {
		raw = append(raw, json.RawMessage(r))
	}
	env.backend.Seed(id, title, raw)
}

func TestConversationsCommand(t *testing.T) {
	env := newCLIEnv(t)
	seedConversation(env, "c-old", "Tenancy question", testutil.PromptRecord)
	seedConversation(env, "c-new", "Bail provisions", testutil.PromptRecord)

	out, _, err := env.run("", "conversations", "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversations (2)")
	assert.Contains(t, out, "Bail provisions")
	assert.Contains(t, out, "c-old")
	assert.Less(t, strings.Index(out, "Bail provisions"), strings.Index(out, "Tenancy question"), "newest first")

	out, _, err = env.run("", "ls", "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "Tenancy question")
}

func TestConversationsCommand_Empty(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "conversations", "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations found.")
}

func TestConversationsCommand_Unauthenticated(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("", "conversations")
	require.Error(t, err)
	assert.True(t, internal.IsUnauthenticated(err))
}

func TestConversationsCommand_BackendDown(t *testing.T) {
	env := newCLIEnv(t)
	seedConversation(env, "c1", "Seeded chat", testutil.PromptRecord)

	_, _, err := env.run("", "conversations", "--token", "tok")
	require.NoError(t, err)

	env.server.Close()

	out, stderr, err := env.run("", "conversations", "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Could not fetch history")
	assert.Contains(t, stderr, "Showing the cached list")
	assert.Contains(t, out, "Seeded chat")

	out, _, err = env.run("", "conversations", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded chat")
}

func TestLoadCommand(t *testing.T) {
	env := newCLIEnv(t)
	seedConversation(env, "c-seeded", "Seeded chat",
		testutil.PromptRecord, testutil.PartsRecord, testutil.EmptyRecord)

	_, _, err := env.run("", "conversations", "--token", "tok")
	require.NoError(t, err)

	out, stderr, err := env.run("", "load", "--token", "tok", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 3 message(s) from conversation c-seeded")
	assert.Contains(t, stderr, "1 record(s) could not be read")

	out, _, err = env.run("", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded chat")
	assert.Contains(t, out, "Conversation: c-seeded")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, internal.PlaceholderContent)

	// later turns continue the loaded conversation
	_, _, err = env.run("", "send", "--token", "tok", "follow up")
	require.NoError(t, err)
	calls := env.backend.Calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].ConversationID)
	assert.Equal(t, "c-seeded", *calls[0].ConversationID)
}

func TestLoadCommand_ByID(t *testing.T) {
	env := newCLIEnv(t)
	seedConversation(env, "c-direct", "Direct", testutil.ModelPartsRecord)

	out, _, err := env.run("", "load", "--token", "tok", "c-direct")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1 message(s)")

	out, _, err = env.run("", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "from the model")
	assert.Contains(t, out, "ChatLegis")
}

func TestLoadCommand_FailureKeepsTranscript(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("", "send", "--token", "tok", "keep me")
	require.NoError(t, err)

	_, _, err = env.run("", "load", "--token", "tok", "missing")
	require.Error(t, err)

	env.backend.FailNext(500, "internal error")
	_, _, err = env.run("", "load", "--token", "tok", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	out, _, err := env.run("", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "keep me")
	assert.Contains(t, out, "Messages: 2")
}
