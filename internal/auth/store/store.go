package store

import (
	"context"
	"errors"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Accounts() Accounts
	MFATickets() MFATickets
	TOTPEnrollments() TOTPEnrollments
	EmailCodes() EmailCodes
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during password login.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// EnableAppMFA persists the TOTP secret and marks authenticator-app MFA
	// active, replacing any previously active method.
	EnableAppMFA(ctx context.Context, accountID, secret string) error

	// EnableEmailMFA marks email MFA active, clearing any TOTP secret from a
	// superseded app enrollment.
	EnableEmailMFA(ctx context.Context, accountID string) error

	// DisableMFA clears mfa_type, mfa_enabled and the TOTP secret.
	DisableMFA(ctx context.Context, accountID string) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

type MFATickets interface {
	// CreateTicket stores a freshly issued pre-authentication ticket.
	CreateTicket(ctx context.Context, t domain.MFATicket) error

	// GetTicket retrieves a ticket regardless of expiry; callers decide how
	// to surface expiry versus absence.
	GetTicket(ctx context.Context, id string) (domain.MFATicket, error)

	// IncrementTicketAttempts bumps the failed attempt counter and returns
	// the updated ticket.
	IncrementTicketAttempts(ctx context.Context, id string) (domain.MFATicket, error)

	// ConsumeTicket deletes the ticket if it is still live. Returns true only
	// for the single caller that performed the deletion, making the ticket
	// strictly single-use even under concurrent verification attempts.
	ConsumeTicket(ctx context.Context, id string, now time.Time) (bool, error)

	// DeleteTicket removes a ticket unconditionally.
	DeleteTicket(ctx context.Context, id string) error

	// DeleteExpiredTickets is housekeeping.
	DeleteExpiredTickets(ctx context.Context) error
}

type TOTPEnrollments interface {
	// UpsertEnrollment stores a pending enrollment, replacing any prior one
	// for the account (a fresh begin always issues a brand-new secret).
	UpsertEnrollment(ctx context.Context, e domain.TOTPEnrollment) error

	// GetEnrollment returns the pending enrollment for an account.
	GetEnrollment(ctx context.Context, accountID string) (domain.TOTPEnrollment, error)

	// DeleteEnrollment discards a pending enrollment.
	DeleteEnrollment(ctx context.Context, accountID string) error

	// DeleteExpiredEnrollments is housekeeping.
	DeleteExpiredEnrollments(ctx context.Context) error
}

type EmailCodes interface {
	// UpsertEmailCode stores the active code for an account, atomically
	// superseding any previous one.
	UpsertEmailCode(ctx context.Context, c domain.EmailCode) error

	// GetEmailCode returns the active code row for an account.
	GetEmailCode(ctx context.Context, accountID string) (domain.EmailCode, error)

	// DeleteEmailCode removes the active code after use or supersession.
	DeleteEmailCode(ctx context.Context, accountID string) error

	// DeleteExpiredEmailCodes is housekeeping.
	DeleteExpiredEmailCodes(ctx context.Context) error
}

type BackupCodes interface {
	// CreateBackupCode stores one backup code fingerprint for an account.
	CreateBackupCode(ctx context.Context, c domain.BackupCode) error

	// ConsumeBackupCode atomically marks an unused code matching the hash as
	// used. Returns true only when this call performed the flip; a second
	// concurrent consume of the same code returns false.
	ConsumeBackupCode(ctx context.Context, accountID, codeHash string, now time.Time) (bool, error)

	// DeleteAllBackupCodes removes the whole batch for an account.
	DeleteAllBackupCodes(ctx context.Context, accountID string) error

	// CountUnusedBackupCodes returns how many codes remain usable.
	CountUnusedBackupCodes(ctx context.Context, accountID string) (int, error)
}
