package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// TOTPEnrollFlowState names the stages of authenticator-app enrollment.
type TOTPEnrollFlowState int

const (
	// TOTPEnrollStateIdle means setup has not been requested yet.
	TOTPEnrollStateIdle TOTPEnrollFlowState = iota

	// TOTPEnrollStateAwaitingFirstCode means the secret and backup codes are
	// staged server-side and the first code must be entered.
	TOTPEnrollStateAwaitingFirstCode

	// TOTPEnrollStateEnrolled means MFA is active on the account.
	TOTPEnrollStateEnrolled
)

// TOTPEnrollFlow drives authenticator-app enrollment. The backup codes are
// held in flow memory for display and released by the caller; they are never
// written anywhere by the SDK.
type TOTPEnrollFlow struct {
	session *Session

	mu          sync.Mutex
	state       TOTPEnrollFlowState
	secret      string
	qrCode      string
	backupCodes []string
}

// NewTOTPEnrollFlow creates an enrollment flow on an authenticated session.
func (s *Session) NewTOTPEnrollFlow() *TOTPEnrollFlow {
	return &TOTPEnrollFlow{session: s}
}

// State returns the current stage.
func (f *TOTPEnrollFlow) State() TOTPEnrollFlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Begin stages the enrollment and captures the setup material. Only valid
// from TOTPEnrollStateIdle.
func (f *TOTPEnrollFlow) Begin(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != TOTPEnrollStateIdle {
		return fmt.Errorf("%w: setup already begun", ErrInvalidFlowState)
	}

	setup, err := f.session.BeginTOTPSetup(ctx)
	if err != nil {
		return err
	}

	f.state = TOTPEnrollStateAwaitingFirstCode
	f.secret = setup.Secret
	f.qrCode = setup.QRCode
	f.backupCodes = setup.BackupCodes
	return nil
}

// Secret returns the staged base32 secret for manual entry. Only valid while
// awaiting the first code.
func (f *TOTPEnrollFlow) Secret() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != TOTPEnrollStateAwaitingFirstCode {
		return "", fmt.Errorf("%w: no setup in progress", ErrInvalidFlowState)
	}
	return f.secret, nil
}

// QRCode returns the otpauth:// provisioning URL. Only valid while awaiting
// the first code.
func (f *TOTPEnrollFlow) QRCode() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != TOTPEnrollStateAwaitingFirstCode {
		return "", fmt.Errorf("%w: no setup in progress", ErrInvalidFlowState)
	}
	return f.qrCode, nil
}

// BackupCodes returns the staged recovery batch for one-time display. Only
// valid while awaiting the first code; after Confirm the flow forgets them.
func (f *TOTPEnrollFlow) BackupCodes() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != TOTPEnrollStateAwaitingFirstCode {
		return nil, fmt.Errorf("%w: no setup in progress", ErrInvalidFlowState)
	}
	return f.backupCodes, nil
}

// Confirm submits the first code and completes the enrollment. Only valid
// from TOTPEnrollStateAwaitingFirstCode. A wrong code keeps the flow in
// place for a retry; an expired setup window resets it to idle.
func (f *TOTPEnrollFlow) Confirm(ctx context.Context, code string, isBackupCode bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != TOTPEnrollStateAwaitingFirstCode {
		return fmt.Errorf("%w: no setup in progress", ErrInvalidFlowState)
	}

	if err := f.session.ConfirmTOTPSetup(ctx, code, isBackupCode); err != nil {
		if isEnrollmentGone(err) {
			f.forget()
			f.state = TOTPEnrollStateIdle
		}
		return err
	}

	f.forget()
	f.state = TOTPEnrollStateEnrolled
	return nil
}

// forget drops the staged secret and codes from memory.
func (f *TOTPEnrollFlow) forget() {
	f.secret = ""
	f.qrCode = ""
	f.backupCodes = nil
}

func isEnrollmentGone(err error) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	return authErr.Code == ErrorCodeEnrollmentExpired
}
