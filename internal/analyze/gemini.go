// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/literature-helper/internal/httputil"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// GeminiBackend calls the generateContent REST endpoint directly.
type GeminiBackend struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// geminiRequest is the request body for generateContent.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiContent is one turn of the conversation.
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the response body from generateContent.
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// endpoint returns the generateContent URL for the configured model.
func (g *GeminiBackend) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
}

// Generate posts messages and returns candidates[0].content.parts[0].text.
func (g *GeminiBackend) Generate(ctx context.Context, messages []types.ChatMessage) (string, error) {
	reqBody := geminiRequest{Contents: make([]geminiContent, 0, len(messages))}
	for _, m := range messages {
		role := string(m.Role)
		if role == "" {
			role = string(types.RoleUser)
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Text}},
		})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := httputil.Do(g.Client, req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, gResp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}
	return gResp.Candidates[0].Content.Parts[0].Text, nil
}
