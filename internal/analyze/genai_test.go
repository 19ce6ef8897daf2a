// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/pdiddy/literature-helper/pkg/types"
)

type genaiRequestBody struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func newTestGenAIBackend(t *testing.T, ts *httptest.Server) *GenAIBackend {
	t.Helper()
	g, err := NewGenAIBackend(context.Background(), types.LLMConfig{
		Backend: types.BackendGenAI,
		Model:   "gemini-2.0-flash",
		BaseURL: ts.URL + "/v1beta",
		APIKey:  "gem-key",
	}, ts.Client())
	require.NoError(t, err)
	return g
}

func TestGenAIBackendGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody genaiRequestBody
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello "},{"text":"there"}]},"finishReason":"STOP"}]}`)
	}))
	defer ts.Close()

	g := newTestGenAIBackend(t, ts)
	got, err := g.Generate(context.Background(), []types.ChatMessage{
		{Role: types.RoleUser, Text: "hi"},
		{Role: types.RoleModel, Text: "hello"},
		{Text: "again"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "gem-key", gotKey)

	require.Len(t, gotBody.Contents, 3)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
	assert.Equal(t, "user", gotBody.Contents[2].Role)
	require.Len(t, gotBody.Contents[2].Parts, 1)
	assert.Equal(t, "again", gotBody.Contents[2].Parts[0].Text)
}

func TestGenAIBackendEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer ts.Close()

	_, err := newTestGenAIBackend(t, ts).Generate(context.Background(), []types.ChatMessage{{Role: types.RoleUser, Text: "hi"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenAIBackendAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer ts.Close()

	_, err := newTestGenAIBackend(t, ts).Generate(context.Background(), []types.ChatMessage{{Role: types.RoleUser, Text: "hi"}})
	require.Error(t, err)
	var apiErr genai.APIError
	require.True(t, errors.As(err, &apiErr), "unexpected error: %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
	assert.Contains(t, apiErr.Message, "API key not valid")
}

func TestNewGenAIBackendRequiresKey(t *testing.T) {
	_, err := NewGenAIBackend(context.Background(), types.LLMConfig{Model: "m"}, http.DefaultClient)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
