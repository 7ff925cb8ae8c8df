package bedrock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractTextClaude(t *testing.T) {
	g := NewGenerator(nil, "anthropic.claude-v2", 1000, 0, 0.9, zap.NewNop())
	out, err := g.extractText([]byte(`{"completion": " odpowiedź"}`))
	require.NoError(t, err)
	assert.Equal(t, " odpowiedź", out)
}

func TestExtractTextTitan(t *testing.T) {
	g := NewGenerator(nil, "amazon.titan-text-express-v1", 1000, 0, 0.9, zap.NewNop())
	out, err := g.extractText([]byte(`{"results": [{"outputText": "hello"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = g.extractText([]byte(`{"results": []}`))
	assert.Error(t, err)
}

func TestExtractTextGenericFallsBackToRawBody(t *testing.T) {
	g := NewGenerator(nil, "mistral.mistral-7b", 1000, 0, 0.9, zap.NewNop())
	out, err := g.extractText([]byte(`{"unknown_field": 1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"unknown_field": 1}`, out)
}
