// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero talks to the Zotero Web API v3 and implements the
// reference sink that saves qualifying papers into a library.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/pkg/types"
)

const (
	// BaseURL is the public Zotero Web API root.
	BaseURL = "https://api.zotero.org"

	// APIVersion is sent in the Zotero-API-Version header.
	APIVersion = "3"

	// DefaultSearchLimit caps how many candidates a duplicate search returns.
	DefaultSearchLimit = 25
)

// Item is one library item as returned by the search endpoint.
type Item struct {
	Key     string   `json:"key"`
	Version int      `json:"version"`
	Data    ItemData `json:"data"`
}

// ItemData holds the item fields the sink inspects.
type ItemData struct {
	ItemType string `json:"itemType"`
	Title    string `json:"title"`
	DOI      string `json:"DOI"`
	URL      string `json:"url"`
}

// CreateResult is the decoded multi-object write response.
type CreateResult struct {
	// Success maps request index to created item key.
	Success map[string]string `json:"success"`

	// Unchanged maps request index to key for items the server left as-is.
	Unchanged map[string]string `json:"unchanged"`

	// Failed maps request index to the server's rejection.
	Failed map[string]FailedWrite `json:"failed"`
}

// FailedWrite is one rejected object in a write request.
type FailedWrite struct {
	Key     string `json:"key,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Keys returns created item keys in request order.
func (r *CreateResult) Keys() []string {
	idx := make([]int, 0, len(r.Success))
	for k := range r.Success {
		if i, err := strconv.Atoi(k); err == nil {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	keys := make([]string, 0, len(idx))
	for _, i := range idx {
		keys = append(keys, r.Success[strconv.Itoa(i)])
	}
	return keys
}

// Client is an HTTP client for one Zotero library.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	libraryType string
	libraryID   string
	userAgent   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the library identified by cfg. The
// library type is "user" unless cfg says "group".
func NewClient(cfg types.ZoteroConfig, opts ...ClientOption) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	libType := strings.ToLower(strings.TrimSpace(cfg.LibraryType))
	switch libType {
	case "", "user", "users":
		libType = "user"
	case "group", "groups":
		libType = "group"
	default:
		return nil, fmt.Errorf("unknown zotero library type %q", cfg.LibraryType)
	}

	c := &Client{
		httpClient:  http.DefaultClient,
		baseURL:     BaseURL,
		apiKey:      cfg.APIKey,
		libraryType: libType,
		libraryID:   cfg.LibraryID,
	}
	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// libraryPath is /users/{id} or /groups/{id}.
func (c *Client) libraryPath() string {
	return "/" + c.libraryType + "s/" + url.PathEscape(c.libraryID)
}

// QueryMode selects the fields a quick search matches against.
type QueryMode string

const (
	// QueryTitleCreatorYear is the API default: titles, creators and year.
	QueryTitleCreatorYear QueryMode = "titleCreatorYear"
	// QueryEverything also matches other fields, DOI among them.
	QueryEverything QueryMode = "everything"
)

// Search runs a quick search, optionally restricted to one item type. An
// empty mode leaves the API default in place.
func (c *Client) Search(ctx context.Context, q, itemType string, mode QueryMode) ([]Item, error) {
	params := url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {strconv.Itoa(DefaultSearchLimit)},
	}
	if itemType != "" {
		params.Set("itemType", itemType)
	}
	if mode != "" {
		params.Set("qmode", string(mode))
	}

	path := c.libraryPath() + "/items"
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding search results: %v", ErrInvalidResponse, err)
	}
	return items, nil
}

// Create writes items in a single request. Per-item rejections come back
// in CreateResult.Failed; only transport and HTTP errors are returned as err.
func (c *Client) Create(ctx context.Context, items []types.ReferenceItem) (*CreateResult, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}

	path := c.libraryPath() + "/items"
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	var result CreateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding write response: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Key", c.apiKey)
	req.Header.Set("Zotero-API-Version", APIVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zotero request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading zotero response: %w", err)
	}
	if err := checkStatus(resp.StatusCode, path, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkStatus returns an error if the HTTP status indicates a problem.
func checkStatus(code int, path string, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	apiErr := &APIError{StatusCode: code, Message: msg, Path: path}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthError, apiErr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	}
	return apiErr
}
