package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/core"
)

func testMessage() *core.InboundMessage {
	return &core.InboundMessage{
		Sender:  "jdoe@gmail.com",
		Subject: "Hi",
		Body:    "hello there",
	}
}

func TestRequestRepliesSuccess(t *testing.T) {
	var gotSecret, gotContentType string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Webhook-Secret")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"biznes": {"reply_html": "<p>biz</p>", "pdf": {"base64": "cGRm", "filename": "doc.pdf"}},
			"zwykly": {"reply_html": "<p>tyler</p>", "emoticon": {"base64": "cG5n", "content_type": "image/png", "filename": "twarz_radosc.png"}}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sekret", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.RequestReplies(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "sekret", gotSecret)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"from": "jdoe@gmail.com", "subject": "Hi", "body": "hello there"}, gotBody)

	require.NotNil(t, resp.Business)
	assert.Equal(t, core.VariantBusiness, resp.Business.Kind)
	assert.Equal(t, "<p>biz</p>", resp.Business.HTMLBody)
	require.NotNil(t, resp.Business.PDF)
	assert.Equal(t, "doc.pdf", resp.Business.PDF.Filename)
	assert.Nil(t, resp.Business.Image)

	require.NotNil(t, resp.Personal)
	require.NotNil(t, resp.Personal.Image)
	assert.Equal(t, "image/png", resp.Personal.Image.ContentType)
	assert.Nil(t, resp.Personal.PDF)
}

func TestRequestRepliesPartialResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"zwykly": {"reply_html": "<p>only personal</p>"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.RequestReplies(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Nil(t, resp.Business, "absent variant is not an error")
	require.NotNil(t, resp.Personal)
}

func TestRequestRepliesNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = client.RequestReplies(context.Background(), testMessage())
	assert.Error(t, err)
}

func TestRequestRepliesMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"biznes": not json`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = client.RequestReplies(context.Background(), testMessage())
	assert.Error(t, err)
}

func TestRequestRepliesNoSecretHeaderWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Webhook-Secret"]
		assert.False(t, present)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.RequestReplies(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Nil(t, resp.Business)
	assert.Nil(t, resp.Personal)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient("", "", time.Second, zap.NewNop())
	assert.Error(t, err)
}
