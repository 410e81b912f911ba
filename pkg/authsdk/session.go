package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Session is an authenticated connection to the service. It holds the signed
// token and the account profile returned at login.
type Session struct {
	client  *Client
	token   string
	account Account
}

func newSession(c *Client, resp SessionResponse) *Session {
	return &Session{
		client:  c,
		token:   resp.Token,
		account: resp.Account,
	}
}

// Token returns the raw session token.
func (s *Session) Token() string { return s.token }

// Account returns the profile captured when the session was created.
func (s *Session) Account() Account { return s.account }

// BeginTOTPSetup stages authenticator-app enrollment. The response carries
// the secret, the provisioning URL and the backup codes; the codes are shown
// only here and should never be persisted by the caller.
func (s *Session) BeginTOTPSetup(ctx context.Context) (*TOTPSetupResponse, error) {
	var resp TOTPSetupResponse
	if err := s.postJSON(ctx, "/v1/auth/mfa/setup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmTOTPSetup submits the first authenticator code (or one of the staged
// backup codes) and commits the enrollment.
func (s *Session) ConfirmTOTPSetup(ctx context.Context, code string, isBackupCode bool) error {
	var resp MessageResponse
	return s.postJSON(ctx, "/v1/auth/mfa/setup/verify", TOTPSetupVerifyRequest{
		Code:         code,
		IsBackupCode: isBackupCode,
	}, &resp)
}

// SendEmailSetupCode asks the service to mail an enrollment code.
func (s *Session) SendEmailSetupCode(ctx context.Context) error {
	var resp MessageResponse
	return s.postJSON(ctx, "/v1/auth/mfa/email/setup", nil, &resp)
}

// ConfirmEmailSetup submits the mailed code and switches the account to
// email-code MFA.
func (s *Session) ConfirmEmailSetup(ctx context.Context, code string) error {
	var resp MessageResponse
	return s.postJSON(ctx, "/v1/auth/mfa/email/verify", EmailVerifyRequest{
		Code: code,
	}, &resp)
}

// DisableMFA turns MFA off. The password must be re-proven even though the
// session is already authenticated.
func (s *Session) DisableMFA(ctx context.Context, password string) error {
	var resp MessageResponse
	return s.postJSON(ctx, "/v1/auth/mfa/disable", DisableRequest{
		Password: password,
	}, &resp)
}

// RegenerateBackupCodes replaces the whole recovery batch. The returned codes
// are shown once; the previous batch is already invalid.
func (s *Session) RegenerateBackupCodes(ctx context.Context) ([]string, error) {
	var resp BackupCodesResponse
	if err := s.postJSON(ctx, "/v1/auth/mfa/backup-codes/regenerate", nil, &resp); err != nil {
		return nil, err
	}
	return resp.BackupCodes, nil
}

// postJSON sends an authenticated JSON request.
func (s *Session) postJSON(ctx context.Context, path string, payload, target any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, http.StatusOK)
}
