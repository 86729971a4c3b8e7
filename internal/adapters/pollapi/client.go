package pollapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"groupschedule/internal/poll"
)

// errCodeDeadlineExpired is the API error code for votes refused after the deadline.
const errCodeDeadlineExpired = "deadline_expired"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("poll api returned status: %d", e.StatusCode)
	}
	return fmt.Sprintf("poll api returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client implements poll.Backend against the group schedule HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
	token   string
}

var _ poll.Backend = (*Client)(nil)

// NewClient returns a client for baseURL. A nil http.Client uses http.DefaultClient.
// When token is set it is sent as a bearer participant token.
func NewClient(baseURL string, client *http.Client, token string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client, token: token}
}

// SubmitVote replaces the participant's vote. A deadline refusal maps to poll.ErrDeadlineRejected.
func (c *Client) SubmitVote(ctx context.Context, v poll.Vote) error {
	err := c.do(ctx, http.MethodPost, "/api/events/vote", v, http.StatusCreated, nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusForbidden && se.Code == errCodeDeadlineExpired {
		return fmt.Errorf("%w: %s", poll.ErrDeadlineRejected, se.Message)
	}
	return err
}

// Summary fetches the tally of sessionID, or of the session-less poll when nil.
func (c *Client) Summary(ctx context.Context, sessionID *int64) (poll.Summary, error) {
	path := "/api/events/votes/summary"
	if sessionID != nil {
		path += "?" + url.Values{"session_id": {strconv.FormatInt(*sessionID, 10)}}.Encode()
	}
	var s poll.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &s); err != nil {
		return poll.Summary{}, err
	}
	return s, nil
}

// EnsureDeadline fetches the session deadline, creating it on first call.
func (c *Client) EnsureDeadline(ctx context.Context, sessionID int64) (poll.Deadline, error) {
	path := fmt.Sprintf("/api/events/deadline/%d/ensure", sessionID)
	var d poll.Deadline
	if err := c.do(ctx, http.MethodPost, path, nil, http.StatusOK, &d); err != nil {
		return poll.Deadline{}, err
	}
	return d, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call poll api: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode != want {
		se := &StatusError{StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			se.Code, se.Message = env.Error.Code, env.Error.Message
		}
		return se
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode poll api response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode poll api data: %w", err)
	}
	return nil
}
