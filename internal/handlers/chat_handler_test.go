package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"intake-crm/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxyHandler(upstreamURL string) *ChatHandler {
	return NewChatHandler(nil, &config.Config{
		ProxyUpstreamURL: upstreamURL,
		ProxyOrigin:      "https://automation.example.com",
	})
}

func TestChatProxyForwardsVerbatim(t *testing.T) {
	var gotBody string
	var gotOrigin string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotOrigin = r.Header.Get("Origin")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Olá Maria!","isComplete":false}`))
	}))
	defer upstream.Close()

	h := newProxyHandler(upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/proxy",
		strings.NewReader(`{"sessionId":"s1","message":"oi","leadData":{}}`))
	rec := httptest.NewRecorder()

	h.ChatProxy(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"sessionId":"s1","message":"oi","leadData":{}}`, gotBody)
	assert.Equal(t, "https://automation.example.com", gotOrigin)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"reply":"Olá Maria!","isComplete":false}`, rec.Body.String())
}

func TestChatProxyPreflight(t *testing.T) {
	h := newProxyHandler("http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat/proxy", nil)
	rec := httptest.NewRecorder()

	h.ChatProxy(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestChatProxyFallbackOnUpstreamFailure(t *testing.T) {
	// porta fechada: a chamada ao upstream falha na hora
	h := newProxyHandler("http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/proxy", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.ChatProxy(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var fallback struct {
		Reply      string `json:"reply"`
		IsComplete bool   `json:"isComplete"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fallback))
	assert.NotEmpty(t, fallback.Reply)
	assert.False(t, fallback.IsComplete)
}

func TestChatProxyFallbackOnNonJSONUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer upstream.Close()

	h := newProxyHandler(upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/proxy", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.ChatProxy(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
