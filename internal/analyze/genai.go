// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// GenAIBackend generates text through the Google GenAI SDK.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

// NewGenAIBackend creates a Gemini API client. A BaseURL ending in an API
// version segment (e.g. ".../v1beta") is split into base and version.
func NewGenAIBackend(ctx context.Context, cfg types.LLMConfig, httpClient *http.Client) (*GenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		base, version := splitAPIVersion(cfg.BaseURL)
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base, APIVersion: version}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &GenAIBackend{client: client, model: cfg.Model}, nil
}

// Generate sends messages as one GenerateContent call.
func (g *GenAIBackend) Generate(ctx context.Context, messages []types.ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == types.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// splitAPIVersion splits "https://host/v1beta" into ("https://host/", "v1beta").
// A URL without a version segment is returned unchanged with an empty version.
func splitAPIVersion(baseURL string) (base, version string) {
	trimmed := strings.TrimRight(baseURL, "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return baseURL, ""
	}
	last := trimmed[i+1:]
	if strings.HasPrefix(last, "v") && len(last) > 1 && last[1] >= '0' && last[1] <= '9' {
		return trimmed[:i+1], last
	}
	return baseURL, ""
}
