package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
}

// newTestGenAIServer answers generateContent calls with reply and keeps the
// last request it saw.
func newTestGenAIServer(t *testing.T, reply string) (*httptest.Server, func() (string, generateRequest)) {
	t.Helper()

	var mu sync.Mutex
	var lastPath string
	var last generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		mu.Lock()
		lastPath = r.URL.Path
		_ = json.Unmarshal(body, &last)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": reply}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	return srv, func() (string, generateRequest) {
		mu.Lock()
		defer mu.Unlock()
		return lastPath, last
	}
}

func newTestAssistant(t *testing.T, baseURL string) *GenAIAssistant {
	t.Helper()
	assistant, err := newGenAIAssistant(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	}, "")
	require.NoError(t, err)
	return assistant
}

func TestNewGenAIAssistantRequiresKey(t *testing.T) {
	_, err := NewGenAIAssistant(context.Background(), "", "")
	assert.Error(t, err)
}

func TestGenAIAssistantSendsSystemPrompt(t *testing.T) {
	srv, last := newTestGenAIServer(t, "  Never share your one-time codes.  ")
	assistant := newTestAssistant(t, srv.URL+"/")

	reply, err := assistant.Reply(context.Background(), "Is this SMS a scam?")
	require.NoError(t, err)
	assert.Equal(t, "Never share your one-time codes.", reply)

	path, req := last()
	assert.True(t, strings.HasSuffix(path, "/models/"+DefaultAssistantModel+":generateContent"), path)

	require.Len(t, req.SystemInstruction.Parts, 1)
	assert.Equal(t, SystemPrompt, req.SystemInstruction.Parts[0].Text)
	assert.True(t, strings.HasPrefix(SystemPrompt, "You are the Gem AI Cybersecurity Assistant."))

	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 1)
	assert.Equal(t, "Is this SMS a scam?", req.Contents[0].Parts[0].Text)
}

func TestGenAIAssistantEmptyReply(t *testing.T) {
	srv, _ := newTestGenAIServer(t, "   ")
	assistant := newTestAssistant(t, srv.URL+"/")

	_, err := assistant.Reply(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyReply)
}
