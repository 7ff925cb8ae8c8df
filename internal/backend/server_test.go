package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/utils"
)

type memCache struct {
	entries map[string]*Response
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*Response{}}
}

func (m *memCache) Get(_ context.Context, sender string) (*Response, error) {
	if r, ok := m.entries[sender]; ok {
		return r, nil
	}
	return nil, ErrCacheMiss
}

func (m *memCache) Put(_ context.Context, sender string, resp *Response) error {
	m.puts++
	m.entries[sender] = resp
	return nil
}

func (m *memCache) Close() error { return nil }

func newTestServer(t *testing.T, secret string, cache ReplyCache) *Server {
	t.Helper()
	gen := &fakeGenerator{emotion: "twarz_radosc", topic: "kontakt", reply: "odpowiedź"}
	composer := NewComposer(gen, testAssets(t), utils.NewTextProcessor(zap.NewNop()),
		"", "", 3000, zap.NewNop())
	return NewServer(":0", secret, composer, cache, zap.NewNop())
}

func post(t *testing.T, s *Server, secret string, req Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if secret != "" {
		r.Header.Set(SecretHeader, secret)
	}
	w := httptest.NewRecorder()
	s.handleWebhook(w, r)
	return w
}

func TestWebhookReturnsBothSections(t *testing.T) {
	s := newTestServer(t, "", nil)

	w := post(t, s, "", Request{From: "John <j.doe@gmail.com>", Subject: "Hi", Body: "kiedy otwarte?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Business)
	require.NotNil(t, resp.Personal)
	assert.Equal(t, "twarz_radosc", resp.Personal.DetectedEmotion)
	assert.Equal(t, Topics[3], resp.Business.Topic)
}

func TestWebhookEmptyBodyIgnored(t *testing.T) {
	s := newTestServer(t, "", nil)

	w := post(t, s, "", Request{From: "a@b.c", Body: "   "})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["status"])
	assert.Equal(t, "empty body", resp["reason"])
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	s := newTestServer(t, "s3cret", nil)

	w := post(t, s, "wrong", Request{From: "a@b.c", Body: "hej"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(t, s, "s3cret", Request{From: "a@b.c", Body: "hej"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsNonPOST(t *testing.T) {
	s := newTestServer(t, "", nil)
	r := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	w := httptest.NewRecorder()
	s.handleWebhook(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, "", nil)
	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	s.handleWebhook(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookCachesPerNormalizedSender(t *testing.T) {
	cache := newMemCache()
	s := newTestServer(t, "", cache)

	// two spellings of the same gmail account hit one cache entry
	w := post(t, s, "", Request{From: "J.Doe+promo@Gmail.com", Body: "hej"})
	require.Equal(t, http.StatusOK, w.Code)
	w = post(t, s, "", Request{From: "jdoe@gmail.com", Body: "hej"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, cache.puts)
	assert.Contains(t, cache.entries, "jdoe@gmail.com")
}
