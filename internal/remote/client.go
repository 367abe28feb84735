// Package remote implements the progress snapshot API client. The remote
// store is passive: it holds snapshots and answers GET/PUT, nothing more.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/example/studycore/pkg/models"
)

const progressPath = "/api/study-progress"

// TokenSource supplies the identity token for a request. Authentication
// itself lives outside this module; hosts plug in whatever refresh logic
// their identity provider needs.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken wraps a fixed token string as a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client talks to the remote progress store.
type Client struct {
	baseURL  string
	token    TokenSource
	deviceID string
	client   *http.Client
}

// NewClient creates a progress API client. deviceID identifies this
// installation's cache in request headers.
func NewClient(baseURL string, token TokenSource, deviceID string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		deviceID: deviceID,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientFromEnv creates a client from STUDY_API_URL and STUDY_API_TOKEN.
func NewClientFromEnv(deviceID string) (*Client, error) {
	baseURL := os.Getenv("STUDY_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("STUDY_API_URL environment variable is not set")
	}
	token := os.Getenv("STUDY_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("STUDY_API_TOKEN environment variable is not set")
	}
	return NewClient(baseURL, StaticToken(token), deviceID), nil
}

func (c *Client) newRequest(ctx context.Context, method, userID string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+progressPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", userID)
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}
	return req, nil
}

// Fetch retrieves the remote snapshot. First use (404 or empty body)
// yields nil without error.
func (c *Client) Fetch(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("progress fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress response: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var snapshot models.ProgressSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode progress response: %v", err)
	}
	return &snapshot, nil
}

// Push uploads a full or pack-scoped snapshot. The response body carries no
// meaning; only the status matters.
func (c *Client) Push(ctx context.Context, userID string, snapshot *models.ProgressSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, userID, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push progress: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("progress push returned status %d", resp.StatusCode)
	}
	return nil
}
