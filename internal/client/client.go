// Package client provides an HTTP client for the eventos REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/eventos/internal/comment"
	"github.com/evcraddock/eventos/internal/event"
)

// Client is an HTTP client for the eventos API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. baseURL includes the /api prefix,
// e.g. http://localhost:8080/api.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for responses with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Ping calls GET /ping and returns the server message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.get(ctx, "/ping", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListEvents returns all events.
func (c *Client) ListEvents(ctx context.Context) ([]*event.Event, error) {
	var events []*event.Event
	if err := c.get(ctx, "/eventos", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AddEvent creates an event.
func (c *Client) AddEvent(ctx context.Context, in event.Input) (*event.Event, error) {
	var e event.Event
	if err := c.send(ctx, http.MethodPost, "/eventos", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListComments returns the comments of an event. A body that is not a JSON
// array yields an empty list.
func (c *Client) ListComments(ctx context.Context, eventID int64) ([]*comment.Comment, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/eventos/%d/comentarios", eventID), &raw); err != nil {
		return nil, err
	}

	comments := make([]*comment.Comment, 0)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return comments, nil
	}
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	return comments, nil
}

// AddComment adds a comment to an event.
func (c *Client) AddComment(ctx context.Context, eventID int64, in comment.NewComment) (*comment.Comment, error) {
	var comm comment.Comment
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/eventos/%d/comentarios", eventID), in, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// UpdateComment changes the given fields of a comment.
func (c *Client) UpdateComment(ctx context.Context, eventID, commentID int64, p comment.Patch) (*comment.Comment, error) {
	var comm comment.Comment
	path := fmt.Sprintf("/eventos/%d/comentarios/%d", eventID, commentID)
	if err := c.send(ctx, http.MethodPut, path, p, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// DeleteComment removes a comment and returns it as it was.
func (c *Client) DeleteComment(ctx context.Context, eventID, commentID int64) (*comment.Comment, error) {
	var comm comment.Comment
	path := fmt.Sprintf("/eventos/%d/comentarios/%d", eventID, commentID)
	if err := c.send(ctx, http.MethodDelete, path, nil, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, result)
}

// do executes an HTTP request and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
