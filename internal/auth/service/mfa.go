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
	"github.com/fairworkhq/payday/pkg/idx"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultEnrollmentTTL is how long a begun authenticator setup may wait
	// for its first code before the pending secret is discarded.
	DefaultEnrollmentTTL = 15 * time.Minute

	backupCodeCount = 10
	backupCodeBytes = cryptox.TokenSize128
)

// MFAService manages enrollment, backup codes and disablement. Enrollment is
// two-phase: Begin stages everything in a pending row, Confirm commits it to
// the account atomically. An abandoned Begin leaves the account untouched.
type MFAService struct {
	Store  store.Store
	Mailer mail.Mailer

	AppName       string // TOTP issuer and email branding, e.g. "Payday"
	EnrollmentTTL time.Duration
	EmailCodeTTL  time.Duration
}

func (s *MFAService) enrollmentTTL() time.Duration {
	if s.EnrollmentTTL > 0 {
		return s.EnrollmentTTL
	}
	return DefaultEnrollmentTTL
}

func (s *MFAService) emailCodeTTL() time.Duration {
	if s.EmailCodeTTL > 0 {
		return s.EmailCodeTTL
	}
	return DefaultEmailCodeTTL
}

// BeginTOTP stages an authenticator-app enrollment: a fresh secret, the
// provisioning URL and a batch of backup codes. Nothing on the account changes
// until ConfirmTOTP; the plaintext backup codes appear only in this response.
func (s *MFAService) BeginTOTP(ctx context.Context, accountID string) (domain.TOTPSetup, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.TOTPSetup{}, fmt.Errorf("failed to load account: %w", err)
	}
	if account.MFARequired() && account.MFAType == domain.MFATypeApp {
		return domain.TOTPSetup{}, ErrAlreadyEnrolled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.AppName,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	codes, hashes, err := generateBackupCodes()
	if err != nil {
		return domain.TOTPSetup{}, err
	}

	now := time.Now().UTC()
	err = s.Store.TOTPEnrollments().UpsertEnrollment(ctx, domain.TOTPEnrollment{
		AccountID:  accountID,
		Secret:     key.Secret(),
		CodeHashes: hashes,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.enrollmentTTL()),
	})
	if err != nil {
		return domain.TOTPSetup{}, fmt.Errorf("failed to stage enrollment: %w", err)
	}

	return domain.TOTPSetup{
		Secret:      key.Secret(),
		QRCode:      key.URL(),
		BackupCodes: codes,
		ExpiresIn:   s.enrollmentTTL(),
	}, nil
}

// ConfirmTOTP proves possession of the staged secret with a first code (or one
// of the issued backup codes) and commits the enrollment: secret onto the
// account, backup batch into the vault, pending row gone. A different active
// method is superseded in the same transaction.
func (s *MFAService) ConfirmTOTP(ctx context.Context, accountID, code string, isBackupCode bool) error {
	now := time.Now().UTC()

	enrollment, err := s.Store.TOTPEnrollments().GetEnrollment(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEnrollmentExpired
	}
	if err != nil {
		return fmt.Errorf("failed to load enrollment: %w", err)
	}
	if enrollment.Expired(now) {
		_ = s.Store.TOTPEnrollments().DeleteEnrollment(ctx, accountID)
		return ErrEnrollmentExpired
	}

	// A backup code spent on confirmation is consumed like any other: the
	// matched hash stays out of the committed vault.
	spentHash := ""
	if isBackupCode {
		if !matchPendingBackupCode(code, enrollment.CodeHashes) {
			return ErrInvalidCode
		}
		spentHash = cryptox.FingerprintToken(code)
	} else if !validateTOTP(code, enrollment.Secret, now) {
		return ErrInvalidCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Replace any previous batch so codes from a superseded method can
		// never verify again.
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear old backup codes: %w", err)
		}
		for _, hash := range enrollment.CodeHashes {
			if hash == spentHash {
				continue
			}
			err := tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
				ID:        newID(),
				AccountID: accountID,
				CodeHash:  hash,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}

		if err := tx.Accounts().EnableAppMFA(ctx, accountID, enrollment.Secret); err != nil {
			return fmt.Errorf("failed to enable MFA: %w", err)
		}

		if err := tx.TOTPEnrollments().DeleteEnrollment(ctx, accountID); err != nil {
			return fmt.Errorf("failed to retire enrollment: %w", err)
		}

		// A superseded email method leaves no other state behind except a
		// possible outstanding code.
		if err := tx.EmailCodes().DeleteEmailCode(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear email codes: %w", err)
		}
		return nil
	})
}

// RegenerateBackupCodes replaces the whole vault with a fresh batch. The old
// batch is invalid the instant the transaction commits, used or not.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, accountID string) ([]string, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.MFARequired() {
		return nil, ErrNotEnrolled
	}

	codes, hashes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear old backup codes: %w", err)
		}
		for _, hash := range hashes {
			err := tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
				ID:        newID(),
				AccountID: accountID,
				CodeHash:  hash,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return codes, nil
}

// Disable turns MFA off after re-proving the password. Everything second-
// factor related is wiped in one transaction; a later re-enrollment starts
// from scratch with a new secret and new backup codes.
func (s *MFAService) Disable(ctx context.Context, accountID, password string) error {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	if !account.MFARequired() {
		return ErrNotEnrolled
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().DisableMFA(ctx, accountID); err != nil {
			return fmt.Errorf("failed to disable MFA: %w", err)
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.EmailCodes().DeleteEmailCode(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete email codes: %w", err)
		}
		if err := tx.TOTPEnrollments().DeleteEnrollment(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete pending enrollment: %w", err)
		}
		return nil
	})
}

func newID() string {
	return idx.New().String()
}

func totpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func generateBackupCodes() (codes, hashes []string, err error) {
	codes = make([]string, backupCodeCount)
	hashes = make([]string, backupCodeCount)
	for i := range backupCodeCount {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = code
		hashes[i] = cryptox.FingerprintToken(code)
	}
	return codes, hashes, nil
}

// matchPendingBackupCode scans every staged hash so timing does not reveal
// which position, if any, matched.
func matchPendingBackupCode(code string, hashes []string) bool {
	fingerprint := cryptox.FingerprintToken(code)
	matched := 0
	for _, h := range hashes {
		matched |= subtle.ConstantTimeCompare([]byte(fingerprint), []byte(h))
	}
	return matched == 1
}
