package authsdk

// ErrorResponse is the standard error envelope. It is used internally for
// parsing HTTP error responses; client code sees AuthError instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g. "invalid_code")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// Account is the client-visible profile returned with every session. It
// carries no secret material and is safe to persist in credential storage.
type Account struct {
	// ID is the account's unique identifier
	ID string `json:"id"`

	// Email is the account's sign-in address
	Email string `json:"email"`

	// MFAEnabled reports whether a second factor is active
	MFAEnabled bool `json:"mfa_enabled"`

	// MFAType is the active second factor: "app", "email" or empty
	MFAType string `json:"mfa_type,omitempty"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned whenever authentication fully completes: from
// login directly (no MFA) or from the MFA verify endpoint.
type SessionResponse struct {
	// Token is the signed session token with embedded expiry
	Token string `json:"token"`

	// Account is the authenticated account's profile
	Account Account `json:"account"`

	// ExpiresIn is the session lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`
}

// VerifyRequest is the body of POST /v1/auth/mfa/verify.
type VerifyRequest struct {
	// Ticket is the single-use token from the login challenge
	Ticket string `json:"ticket"`

	// Code is the one-time code being submitted
	Code string `json:"code"`

	// Method is how the code was obtained: "totp", "email" or "backup"
	Method string `json:"method"`
}

// EmailChallengeRequest asks the service to email a login code for the
// account behind a live ticket.
type EmailChallengeRequest struct {
	Ticket string `json:"ticket"`
}

// TOTPSetupResponse is returned from POST /v1/auth/mfa/setup. The plaintext
// backup codes appear here and nowhere else.
type TOTPSetupResponse struct {
	// Secret is the base32 TOTP secret for manual entry
	Secret string `json:"secret"`

	// QRCode is the otpauth:// provisioning URL
	QRCode string `json:"qr_code"`

	// BackupCodes is the single-use recovery batch (shown once)
	BackupCodes []string `json:"backup_codes"`

	// ExpiresIn is the setup window in seconds
	ExpiresIn int64 `json:"expires_in"`
}

// TOTPSetupVerifyRequest is the body of POST /v1/auth/mfa/setup/verify.
type TOTPSetupVerifyRequest struct {
	// Code is the first authenticator code, or a backup code from the batch
	Code string `json:"code"`

	// IsBackupCode marks Code as one of the issued backup codes
	IsBackupCode bool `json:"is_backup_code"`
}

// EmailVerifyRequest is the body of POST /v1/auth/mfa/email/verify.
type EmailVerifyRequest struct {
	Code string `json:"code"`
}

// DisableRequest is the body of POST /v1/auth/mfa/disable. Disablement
// re-proves the password even on an authenticated session.
type DisableRequest struct {
	Password string `json:"password"`
}

// BackupCodesResponse carries a freshly generated backup batch (shown once).
type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// MessageResponse is a simple acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned from the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
