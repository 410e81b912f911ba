package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/mail"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/pkg/cryptox"
	"github.com/fairworkhq/payday/pkg/jwtx"

	"github.com/pquerna/otp/totp"
)

const (
	// DefaultTicketTTL bounds how long a password-verified login may sit
	// waiting for its second factor.
	DefaultTicketTTL = 5 * time.Minute

	// DefaultEmailCodeTTL is the lifetime of an emailed one-time code.
	DefaultEmailCodeTTL = 10 * time.Minute

	// maxTicketAttempts is the failed-verification budget per ticket. The
	// ticket is burned once the budget is spent; the user logs in again.
	maxTicketAttempts = 5

	emailCodeDigits = 6
)

// errBackupMiss is internal to VerifyMFA: it aborts the verification
// transaction when no unused backup code matched.
var errBackupMiss = errors.New("no matching backup code")

// LoginService implements password login and second-factor verification.
// A successful password check either mints a session directly or issues a
// short-lived single-use ticket that VerifyMFA later exchanges for a session.
type LoginService struct {
	Store  store.Store
	Signer *jwtx.Signer
	Mailer mail.Mailer

	Issuer       string // JWT issuer, e.g. "payday-auth"
	SessionTTL   time.Duration
	TicketTTL    time.Duration
	EmailCodeTTL time.Duration
}

func (s *LoginService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *LoginService) ticketTTL() time.Duration {
	if s.TicketTTL > 0 {
		return s.TicketTTL
	}
	return DefaultTicketTTL
}

func (s *LoginService) emailCodeTTL() time.Duration {
	if s.EmailCodeTTL > 0 {
		return s.EmailCodeTTL
	}
	return DefaultEmailCodeTTL
}

// Authenticate checks the password. When the account has no second factor it
// returns a full session; otherwise it returns an MFA challenge holding a
// fresh ticket and the session stays unminted.
func (s *LoginService) Authenticate(ctx context.Context, email, password string) (domain.Session, *domain.MFAChallenge, error) {
	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, nil, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Session{}, nil, ErrInvalidCredentials
		}
		return domain.Session{}, nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !account.MFARequired() {
		session, err := s.mintSession(account, []string{"pwd"})
		if err != nil {
			return domain.Session{}, nil, err
		}
		return session, nil, nil
	}

	now := time.Now().UTC()
	ticket := domain.MFATicket{
		ID:        newID(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ticketTTL()),
	}
	if err := s.Store.MFATickets().CreateTicket(ctx, ticket); err != nil {
		return domain.Session{}, nil, fmt.Errorf("failed to create mfa ticket: %w", err)
	}

	return domain.Session{}, &domain.MFAChallenge{
		Ticket:    ticket.ID,
		MFAType:   account.MFAType,
		ExpiresIn: s.ticketTTL(),
	}, nil
}

// VerifyMFA exchanges a live ticket plus a valid code for a session. The
// ticket is consumed in the same transaction that settles the code, so it can
// only ever produce one session. Failed attempts leave the ticket in place
// (minus one unit of attempt budget) so the user can retry with a fresh code.
func (s *LoginService) VerifyMFA(ctx context.Context, ticketID, code string, method domain.MFAMethod) (domain.Session, error) {
	now := time.Now().UTC()

	ticket, err := s.Store.MFATickets().GetTicket(ctx, ticketID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrTicketExpired
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket.Expired(now) {
		_ = s.Store.MFATickets().DeleteTicket(ctx, ticketID)
		return domain.Session{}, ErrTicketExpired
	}
	if ticket.Attempts >= maxTicketAttempts {
		_ = s.Store.MFATickets().DeleteTicket(ctx, ticketID)
		return domain.Session{}, ErrTooManyAttempts
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, ticket.AccountID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load account: %w", err)
	}

	// Backup codes are settled inside the transaction below because checking
	// one consumes it. The other methods verify up front.
	if method != domain.MFAMethodBackup {
		if err := s.checkLoginCode(ctx, account, code, method, now); err != nil {
			if errors.Is(err, ErrInvalidCode) {
				return domain.Session{}, s.recordFailedAttempt(ctx, ticketID)
			}
			return domain.Session{}, err
		}
	}

	session, err := s.mintSession(account, []string{"pwd", "mfa"})
	if err != nil {
		return domain.Session{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if method == domain.MFAMethodBackup {
			ok, err := tx.BackupCodes().ConsumeBackupCode(ctx, account.ID, cryptox.FingerprintToken(code), now)
			if err != nil {
				return fmt.Errorf("failed to consume backup code: %w", err)
			}
			if !ok {
				return errBackupMiss
			}
		}

		ok, err := tx.MFATickets().ConsumeTicket(ctx, ticketID, now)
		if err != nil {
			return fmt.Errorf("failed to consume ticket: %w", err)
		}
		if !ok {
			// Lost the race to a concurrent verify, or expired in between.
			return ErrTicketExpired
		}

		if method == domain.MFAMethodEmail {
			if err := tx.EmailCodes().DeleteEmailCode(ctx, account.ID); err != nil {
				return fmt.Errorf("failed to retire email code: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, errBackupMiss) {
		return domain.Session{}, s.recordFailedAttempt(ctx, ticketID)
	}
	if err != nil {
		return domain.Session{}, err
	}

	return session, nil
}

// RequestEmailChallenge sends a login-time code to the account behind a live
// ticket. Issuing a new code supersedes any previous one.
func (s *LoginService) RequestEmailChallenge(ctx context.Context, ticketID string) error {
	now := time.Now().UTC()

	ticket, err := s.Store.MFATickets().GetTicket(ctx, ticketID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTicketExpired
	}
	if err != nil {
		return fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket.Expired(now) {
		return ErrTicketExpired
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, ticket.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.MFAType != domain.MFATypeEmail {
		return ErrNotEnrolled
	}

	code, err := cryptox.GenerateNumericCode(emailCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	err = s.Store.EmailCodes().UpsertEmailCode(ctx, domain.EmailCode{
		AccountID: account.ID,
		CodeHash:  cryptox.FingerprintToken(code),
		Purpose:   domain.EmailCodePurposeLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(s.emailCodeTTL()),
	})
	if err != nil {
		return fmt.Errorf("failed to store email code: %w", err)
	}

	if err := s.Mailer.SendLoginCode(ctx, account.Email, code, s.emailCodeTTL()); err != nil {
		return fmt.Errorf("failed to send email code: %w", err)
	}
	return nil
}

// checkLoginCode verifies a TOTP or login-purpose email code without touching
// the ticket.
func (s *LoginService) checkLoginCode(ctx context.Context, account domain.Account, code string, method domain.MFAMethod, now time.Time) error {
	switch method {
	case domain.MFAMethodTOTP:
		if account.MFAType != domain.MFATypeApp || account.TOTPSecret == nil {
			return ErrNotEnrolled
		}
		if !validateTOTP(code, *account.TOTPSecret, now) {
			return ErrInvalidCode
		}
		return nil

	case domain.MFAMethodEmail:
		if account.MFAType != domain.MFATypeEmail {
			return ErrNotEnrolled
		}
		stored, err := s.Store.EmailCodes().GetEmailCode(ctx, account.ID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("failed to load email code: %w", err)
		}
		if stored.Purpose != domain.EmailCodePurposeLogin {
			return ErrInvalidCode
		}
		if stored.Expired(now) {
			return ErrCodeExpired
		}
		if !fingerprintEqual(code, stored.CodeHash) {
			return ErrInvalidCode
		}
		return nil

	default:
		return ErrInvalidCode
	}
}

// recordFailedAttempt bumps the ticket's counter and reports the right error
// for this attempt. The ticket is burned when the budget runs out.
func (s *LoginService) recordFailedAttempt(ctx context.Context, ticketID string) error {
	ticket, err := s.Store.MFATickets().IncrementTicketAttempts(ctx, ticketID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTicketExpired
	}
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	if ticket.Attempts >= maxTicketAttempts {
		_ = s.Store.MFATickets().DeleteTicket(ctx, ticketID)
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}

func (s *LoginService) mintSession(account domain.Account, amr []string) (domain.Session, error) {
	now := time.Now().UTC()
	ttl := s.sessionTTL()

	claims := jwtx.NewSessionClaims(account.ID, newID(), account.Email, amr, ttl, s.Issuer, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return domain.Session{
		Token:     token,
		Account:   account.Snapshot(),
		ExpiresIn: ttl,
	}, nil
}

// validateTOTP accepts the current step plus one step of clock skew either
// side, matching what authenticator apps tolerate.
func validateTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts())
	return err == nil && ok
}

// fingerprintEqual compares a plaintext code against a stored fingerprint in
// constant time.
func fingerprintEqual(code, storedHash string) bool {
	got := cryptox.FingerprintToken(code)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}
