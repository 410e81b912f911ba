package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Payday authentication service. It covers the
// unauthenticated endpoints and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login performs password authentication. When the account has MFA enabled
// the returned error is an *MFARequiredError carrying the challenge ticket;
// branch on it with errors.As.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp SessionResponse
	err := c.postJSON(ctx, "/v1/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// VerifyMFA exchanges a challenge ticket and a code for a session. The
// ticket is single-use on the server; after a success it is gone.
func (c *Client) VerifyMFA(ctx context.Context, ticket, code, method string) (*Session, error) {
	var resp SessionResponse
	err := c.postJSON(ctx, "/v1/auth/mfa/verify", VerifyRequest{
		Ticket: ticket,
		Code:   code,
		Method: method,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// RequestEmailChallenge asks the service to mail a login code for the account
// behind a live ticket.
func (c *Client) RequestEmailChallenge(ctx context.Context, ticket string) error {
	var resp MessageResponse
	return c.postJSON(ctx, "/v1/auth/mfa/challenge/email", EmailChallengeRequest{
		Ticket: ticket,
	}, &resp)
}

// SessionFromCredentials rebuilds a Session from persisted credentials.
// Returns (nil, nil) when the store is empty or the stored token has lapsed.
func (c *Client) SessionFromCredentials(store CredentialStore) (*Session, error) {
	creds, err := store.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, nil
	}

	return &Session{
		client:  c,
		token:   creds.Token,
		account: creds.Account,
	}, nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// postJSON sends a JSON body and decodes a 200 response into target. Non-2xx
// responses come back as typed errors.
func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, http.StatusOK)
}

// decodeJSON decodes a response into target, turning non-expected statuses
// into typed AuthError/MFARequiredError values.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
