package domain

import "time"

// MFAType identifies which second factor is active for an account. At most
// one type is active at a time; enrolling a second method supersedes the
// first.
type MFAType string

const (
	MFATypeNone  MFAType = ""
	MFATypeApp   MFAType = "app"
	MFATypeEmail MFAType = "email"
)

// Account is a payroll administrator account. Accounts are provisioned by the
// payroll platform; this service only mutates the MFA-related fields.
type Account struct {
	ID           string
	Email        string
	PasswordHash string     // argon2 encoded
	MFAType      MFAType    // empty unless MFAEnabled is set
	MFAEnabled   *time.Time // timestamp when MFA was enabled (nullable)
	TOTPSecret   *string    // base32 TOTP secret (nullable, only for MFATypeApp)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MFARequired reports whether login must be followed by a second factor.
func (a Account) MFARequired() bool {
	return a.MFAEnabled != nil && a.MFAType != MFATypeNone
}

// Snapshot returns the client-visible view of the account.
func (a Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:         a.ID,
		Email:      a.Email,
		MFAEnabled: a.MFARequired(),
		MFAType:    a.MFAType,
	}
}

// AccountSnapshot is the profile embedded in session responses. It carries no
// secret material and is safe to hold in client-side credential storage.
type AccountSnapshot struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	MFAEnabled bool    `json:"mfa_enabled"`
	MFAType    MFAType `json:"mfa_type,omitempty"`
}
