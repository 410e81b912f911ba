package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fairworkhq/payday/pkg/httpx"
)

// Wire error codes shared by the service and the SDK.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeCodeExpired        = "code_expired"
	ErrorCodeTicketExpired      = "ticket_expired"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeAlreadyEnrolled    = "already_enrolled"
	ErrorCodeNotEnrolled        = "not_enrolled"
	ErrorCodeEnrollmentExpired  = "enrollment_expired"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeMFARequired        = "mfa_required"
	ErrorCodeServerError        = "server_error"
)

// AuthError is the standard error envelope. It implements the error interface
// and is used both by the server (to write responses) and by the SDK client
// (to represent decoded failures).
type AuthError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_code")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this AuthError to an HTTP response writer.
func (e *AuthError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// Predefined errors. Handlers pick one of these (or NewAuthError for custom
// text) after mapping a service sentinel.
var (
	ErrInvalidRequest = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// email from a wrong password.
	ErrInvalidCredentials = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrInvalidCode = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the verification code is incorrect",
	}

	// ErrCodeExpired tells the client to offer a resend rather than a retype.
	ErrCodeExpired = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeCodeExpired,
		Description: "the verification code has expired, request a new one",
	}

	ErrTicketExpired = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTicketExpired,
		Description: "the login ticket has expired, sign in again",
	}

	ErrTooManyAttempts = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many failed attempts, sign in again",
	}

	ErrAlreadyEnrolled = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeAlreadyEnrolled,
		Description: "this verification method is already enabled",
	}

	ErrNotEnrolled = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNotEnrolled,
		Description: "multi-factor authentication is not enabled",
	}

	ErrEnrollmentExpired = &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeEnrollmentExpired,
		Description: "the setup session has expired, start again",
	}

	ErrInvalidToken = &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the session token is missing, invalid or expired",
	}

	ErrUnauthorized = &AuthError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeUnauthorized,
		Description: "not authorized to perform this action",
	}

	ErrServerError = &AuthError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAuthError creates an AuthError with custom text while keeping the
// standard envelope.
func NewAuthError(statusCode int, code, description string) *AuthError {
	return &AuthError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// MFARequiredError is not a failure: the password was correct but a second
// factor is outstanding. Returned as 409 Conflict so it cannot be confused
// with a rejection, it carries the ticket the client needs for the
// verification step.
type MFARequiredError struct {
	// Ticket is the single-use token to present to the verify endpoint
	Ticket string `json:"ticket"`

	// MFAType is the account's active second factor ("app" or "email")
	MFAType string `json:"mfa_type"`

	// ExpiresIn is the ticket lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("mfa required: type=%s", e.MFAType)
}

// WriteError writes the challenge as a 409 Conflict in the standard envelope.
func (e *MFARequiredError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":             ErrorCodeMFARequired,
		"error_description": "a second authentication factor is required",
		"ticket":            e.Ticket,
		"mfa_type":          e.MFAType,
		"expires_in":        e.ExpiresIn,
	})
}

// parseErrorResponse turns a non-2xx response body into a typed error. 409
// with an mfa_required code becomes an MFARequiredError so callers can branch
// on it with errors.As.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusConflict {
		var challenge struct {
			Error     string `json:"error"`
			Ticket    string `json:"ticket"`
			MFAType   string `json:"mfa_type"`
			ExpiresIn int64  `json:"expires_in"`
		}
		if err := json.Unmarshal(body, &challenge); err == nil {
			if challenge.Error == ErrorCodeMFARequired && challenge.Ticket != "" {
				return &MFARequiredError{
					Ticket:    challenge.Ticket,
					MFAType:   challenge.MFAType,
					ExpiresIn: challenge.ExpiresIn,
				}
			}
		}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &AuthError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
