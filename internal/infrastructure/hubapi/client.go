package hubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
)

// DefaultBaseURL points at the public hub.
const DefaultBaseURL = "https://huggingface.co"

// DefaultTimeout bounds a single metadata request.
const DefaultTimeout = 10 * time.Second

// ErrModelNotFound marks a model the hub does not expose to this client,
// whether it is missing, private, or gated.
var ErrModelNotFound = errors.New("model not found on hub")

// ModelInfo is the subset of the hub's model metadata the CLI uses.
type ModelInfo struct {
	ID          string    `json:"id"`
	SHA         string    `json:"sha"`
	PipelineTag string    `json:"pipeline_tag"`
	Private     bool      `json:"private"`
	Downloads   int64     `json:"downloads"`
	Likes       int64     `json:"likes"`
	Tags        []string  `json:"tags"`
	Siblings    []Sibling `json:"siblings"`
}

// Sibling is one file belonging to a hub repo.
type Sibling struct {
	Rfilename string `json:"rfilename"`
}

// HasFile reports whether the repo carries a file with the given name.
func (m *ModelInfo) HasFile(name string) bool {
	for _, sibling := range m.Siblings {
		if sibling.Rfilename == name {
			return true
		}
	}
	return false
}

// Client handles HTTP communication with the hub API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	retry   RetryPolicy
}

// NewClient creates a hub API client. An empty baseURL targets the public
// hub and a non-positive timeout falls back to DefaultTimeout. The token is
// optional; without it, private and gated models resolve as not found.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return NewClientWithRetry(baseURL, token, timeout, DefaultRetryPolicy())
}

// NewClientWithRetry creates a hub API client with an explicit retry policy.
func NewClientWithRetry(baseURL, token string, timeout time.Duration, retry RetryPolicy) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retry == nil {
		retry = NoRetryPolicy()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// get issues an authenticated GET, retrying per the client's policy. The
// returned response body is open; the caller closes it.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	attempt := 0
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.client.Do(req)
		status := 0
		if err == nil {
			status = resp.StatusCode
		}

		retry, backoffMs := c.retry.ShouldRetry(status, err, attempt)
		if !retry {
			if err != nil {
				return nil, fmt.Errorf("HTTP request failed: %w", err)
			}
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(backoffMs) * time.Millisecond):
		}
		attempt++
	}
}

// ModelInfo fetches metadata for id from the hub.
func (c *Client) ModelInfo(ctx context.Context, id model.ID) (*ModelInfo, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s/api/models/%s", c.baseURL, id.String()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		// The hub answers 401/403 for private and gated repos; from the
		// caller's view the model is just not accessible.
		return nil, fmt.Errorf("%w: %s (status %d)", ErrModelNotFound, id, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("hub API error %d: %s", resp.StatusCode, string(body))
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode model info: %w", err)
	}
	return &info, nil
}

// Exists reports whether id is visible on the hub.
func (c *Client) Exists(ctx context.Context, id model.ID) (bool, error) {
	_, err := c.ModelInfo(ctx, id)
	if errors.Is(err, ErrModelNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ResolveType classifies id using the hub's pipeline tag when it maps to a
// servable type, falling back on name heuristics otherwise.
func (c *Client) ResolveType(ctx context.Context, id model.ID) (model.Type, error) {
	info, err := c.ModelInfo(ctx, id)
	if err != nil {
		return "", err
	}
	if t, ok := model.TypeFromPipelineTag(info.PipelineTag); ok {
		return t, nil
	}
	return model.DetectType(id), nil
}
