// Package client is the record store client: it issues CRUD requests for
// a user's records against the remote service. Mutations return only an
// acknowledgment; callers re-list to observe the result. No call is ever
// retried.
package client

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

	"spendwise/internal/core"
	"spendwise/internal/session"
)

// Client talks to the spendwise API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient allows tests to inject a custom transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type ackResponse struct {
	Message string `json:"message"`
}

// List fetches the full, unfiltered record set for a user.
func (c *Client) List(ctx context.Context, userID int64) ([]core.Record, error) {
	url := c.baseURL + "/api/records/" + strconv.FormatInt(userID, 10)
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus("list records", resp); err != nil {
		return nil, err
	}
	var records []core.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}
	return records, nil
}

// Create stores a new record. The payload must carry userId and type.
func (c *Client) Create(ctx context.Context, r core.Record) error {
	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/records", r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus("create record", resp)
}

// Update replaces an existing record; the payload must carry its id.
func (c *Client) Update(ctx context.Context, r core.Record) error {
	if r.ID == 0 {
		return core.ErrMissingID
	}
	resp, err := c.doJSON(ctx, http.MethodPut, c.baseURL+"/api/records", r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus("update record", resp)
}

// Delete removes a record. The type is required as well as the id because
// deletion resolves which collection to act on by both. A second delete
// of the same id fails with core.NotFoundError.
func (c *Client) Delete(ctx context.Context, id int64, t core.RecordType) error {
	payload := struct {
		ID   int64           `json:"id"`
		Type core.RecordType `json:"type"`
	}{ID: id, Type: t}

	resp, err := c.doJSON(ctx, http.MethodDelete, c.baseURL+"/api/records", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &core.NotFoundError{ID: id, Type: t}
	}
	return checkStatus("delete record", resp)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Codeword        string `json:"codeword"`
}

// Register creates an account and returns the server's message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/users/register", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var ack ackResponse
	body, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(body, &ack)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &core.ServerError{Op: "register", Status: resp.StatusCode, Message: ack.Message}
	}
	return ack.Message, nil
}

// Login authenticates and returns the user identity payload.
func (c *Client) Login(ctx context.Context, username, password string) (*session.User, error) {
	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/users/login", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus("login", resp); err != nil {
		return nil, err
	}
	var u session.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode login payload: %w", err)
	}
	return &u, nil
}

// ResetPassword changes an account password, authorized by the codeword.
func (c *Client) ResetPassword(ctx context.Context, username, codeword, newPassword string) error {
	payload := struct {
		Username string `json:"username"`
		Codeword string `json:"codeword"`
		Password string `json:"password"`
	}{Username: username, Codeword: codeword, Password: newPassword}

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/profile/reset", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus("reset password", resp)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, method, url, bytes.NewReader(body))
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &core.NetworkError{Op: method, URL: url, Err: err}
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to core.ServerError, decoding the
// {message} body when the server sent one.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	var ack ackResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(body, &ack)
	return &core.ServerError{Op: op, Status: resp.StatusCode, Message: ack.Message}
}
