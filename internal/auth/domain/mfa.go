package domain

import "time"

// MFAMethod names a way of completing a second-factor challenge.
type MFAMethod string

const (
	MFAMethodTOTP   MFAMethod = "totp"
	MFAMethodEmail  MFAMethod = "email"
	MFAMethodBackup MFAMethod = "backup"
)

// MFATicket is the short-lived credential issued after a successful password
// check when a second factor is still outstanding. The ticket only grants the
// right to attempt verification for this one account; it is consumed by the
// first successful verification and never reissued on failed attempts.
type MFATicket struct {
	ID        string // ULID, doubles as the opaque ticket token
	AccountID string
	Attempts  int // failed verification attempts against this ticket
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the ticket's hard TTL has passed.
func (t MFATicket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TOTPEnrollment is a pending authenticator-app setup. Nothing touches the
// account until the first code verifies: the secret and the prepared backup
// codes live here and are discarded wholesale when the user abandons setup or
// the enrollment window lapses.
type TOTPEnrollment struct {
	AccountID  string
	Secret     string   // base32
	CodeHashes []string // fingerprints of the backup batch issued at begin
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the enrollment window has lapsed.
func (e TOTPEnrollment) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// EmailCodePurpose distinguishes why an email code was issued. A code sent
// for enrollment must not satisfy a login challenge and vice versa.
type EmailCodePurpose string

const (
	EmailCodePurposeEnroll EmailCodePurpose = "enroll"
	EmailCodePurposeLogin  EmailCodePurpose = "login"
)

// EmailCode is the server-held half of an email one-time code. At most one
// row exists per account; issuing a new code replaces it, so no two codes are
// ever valid simultaneously. Only the fingerprint is stored.
type EmailCode struct {
	AccountID string
	CodeHash  string
	Purpose   EmailCodePurpose
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code's short TTL has passed.
func (c EmailCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// BackupCode is a single-use recovery credential. Consumption flips UsedAt
// exactly once; a used code can never verify again.
type BackupCode struct {
	ID        string
	AccountID string
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// MFAChallenge is returned from login when a second factor is required.
type MFAChallenge struct {
	Ticket    string
	MFAType   MFAType
	ExpiresIn time.Duration
}

// TOTPSetup is returned from enrollment begin. The plaintext backup codes
// appear here and nowhere else; after this response only fingerprints exist.
type TOTPSetup struct {
	Secret      string
	QRCode      string // otpauth:// provisioning URL
	BackupCodes []string
	ExpiresIn   time.Duration
}
