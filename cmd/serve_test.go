package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockServerCommand_InvalidSchema(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("", "mock-server", "--schema", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown schema "xml"`)
}

func TestMockServerCommand_Flags(t *testing.T) {
	for _, name := range []string{"addr", "accept-token", "schema"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "127.0.0.1:8000", serveCmd.Flags().Lookup("addr").DefValue)
}
