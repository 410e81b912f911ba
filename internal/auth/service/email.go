package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/pkg/cryptox"
)

// SendEmailEnrollCode starts (or restarts) email-code enrollment by mailing a
// fresh code. Re-sending supersedes the previous code; the account itself is
// untouched until ConfirmEmailEnroll.
func (s *MFAService) SendEmailEnrollCode(ctx context.Context, accountID string) error {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.MFARequired() && account.MFAType == domain.MFATypeEmail {
		return ErrAlreadyEnrolled
	}

	code, err := cryptox.GenerateNumericCode(emailCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now().UTC()
	err = s.Store.EmailCodes().UpsertEmailCode(ctx, domain.EmailCode{
		AccountID: accountID,
		CodeHash:  cryptox.FingerprintToken(code),
		Purpose:   domain.EmailCodePurposeEnroll,
		CreatedAt: now,
		ExpiresAt: now.Add(s.emailCodeTTL()),
	})
	if err != nil {
		return fmt.Errorf("failed to store email code: %w", err)
	}

	if err := s.Mailer.SendEnrollCode(ctx, account.Email, code, s.emailCodeTTL()); err != nil {
		return fmt.Errorf("failed to send email code: %w", err)
	}
	return nil
}

// ConfirmEmailEnroll checks the mailed code and switches the account to
// email-code MFA. A previously active authenticator app is superseded in the
// same transaction: its secret, backup codes and any pending setup all go.
func (s *MFAService) ConfirmEmailEnroll(ctx context.Context, accountID, code string) error {
	now := time.Now().UTC()

	stored, err := s.Store.EmailCodes().GetEmailCode(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("failed to load email code: %w", err)
	}
	if stored.Purpose != domain.EmailCodePurposeEnroll {
		return ErrInvalidCode
	}
	if stored.Expired(now) {
		return ErrCodeExpired
	}
	if !fingerprintEqual(code, stored.CodeHash) {
		return ErrInvalidCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().EnableEmailMFA(ctx, accountID); err != nil {
			return fmt.Errorf("failed to enable MFA: %w", err)
		}
		if err := tx.EmailCodes().DeleteEmailCode(ctx, accountID); err != nil {
			return fmt.Errorf("failed to retire email code: %w", err)
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear superseded backup codes: %w", err)
		}
		if err := tx.TOTPEnrollments().DeleteEnrollment(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear pending enrollment: %w", err)
		}
		return nil
	})
}
