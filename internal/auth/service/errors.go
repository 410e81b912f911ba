package service

import "errors"

// Sentinel errors surfaced to the HTTP layer. Handlers map these onto wire
// error codes with errors.Is; anything unrecognised becomes a 500.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so a
	// caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidCode means the submitted one-time code is wrong. A still-live
	// credential was checked and did not match.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired means the email code's TTL lapsed. Distinct from
	// ErrInvalidCode so clients can prompt a resend instead of a retype.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrTicketExpired means the login ticket is gone: expired, already
	// consumed, or never issued. All three look identical to the caller.
	ErrTicketExpired = errors.New("login ticket expired")

	// ErrTooManyAttempts means the ticket burned through its attempt budget.
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// ErrAlreadyEnrolled is returned when beginning enrollment for a method
	// that is already the account's active method.
	ErrAlreadyEnrolled = errors.New("this verification method is already enabled")

	// ErrNotEnrolled is returned when an operation requires active MFA and the
	// account has none.
	ErrNotEnrolled = errors.New("multi-factor authentication is not enabled")

	// ErrEnrollmentExpired means the pending setup window lapsed before the
	// first code was confirmed; the client must start over.
	ErrEnrollmentExpired = errors.New("setup session expired, start again")
)
