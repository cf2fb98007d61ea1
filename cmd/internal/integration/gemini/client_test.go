package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitClientRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := InitClient()
	require.Error(t, err)
}

func TestInitClientDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_ENDPOINT", "")
	t.Setenv("GEMINI_MODEL", "")

	client, err := InitClient()
	require.NoError(t, err)
	assert.NotNil(t, client.transcriber)
	assert.NotNil(t, client.extractor)
}

func TestClientOptionsSkipEmptyEndpoint(t *testing.T) {
	// Without an endpoint the default base URL must survive.
	assert.Len(t, clientOptions("key", "", "gemini-1.5-flash"), 2)
	assert.Len(t, clientOptions("key", "https://proxy.test/v1", "gemini-1.5-flash"), 3)
}
