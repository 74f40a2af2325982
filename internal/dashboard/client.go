package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"user-dashboard/pkg/logger"
)

// User is a record as returned by the /users endpoints.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError is a non-2xx answer from the endpoints.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
}

// Client calls the /users endpoints over HTTP. Calls are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a client for the API rooted at baseURL.
// A nil httpClient means a client with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List returns every user.
func (c *Client) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create adds a user.
func (c *Client) Create(ctx context.Context, name, email string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", userInput{Name: name, Email: email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update replaces the name and email of user id.
func (c *Client) Update(ctx context.Context, id int64, name, email string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, userPath(id), userInput{Name: name, Email: email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes user id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

// Submit issues the write a form submit produced.
func (c *Client) Submit(ctx context.Context, sub Submission) error {
	var err error
	if sub.IsUpdate() {
		_, err = c.Update(ctx, sub.ID, sub.Name, sub.Email)
	} else {
		_, err = c.Create(ctx, sub.Name, sub.Email)
	}
	return err
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
