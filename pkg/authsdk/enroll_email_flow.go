package authsdk

import (
	"context"
	"fmt"
	"sync"
)

// EmailEnrollFlowState names the stages of email-code enrollment.
type EmailEnrollFlowState int

const (
	// EmailEnrollStateIdle means nothing has happened yet.
	EmailEnrollStateIdle EmailEnrollFlowState = iota

	// EmailEnrollStateIntentConfirmed means the user has acknowledged what
	// switching to email codes entails. This is a purely local transition;
	// nothing is sent until SendCode.
	EmailEnrollStateIntentConfirmed

	// EmailEnrollStateCodeSent means a code is in the user's inbox.
	EmailEnrollStateCodeSent

	// EmailEnrollStateEnrolled means MFA is active on the account.
	EmailEnrollStateEnrolled
)

// EmailEnrollFlow drives email-code enrollment. The intent step exists so UI
// can require an explicit acknowledgement before any email goes out.
type EmailEnrollFlow struct {
	session *Session

	mu    sync.Mutex
	state EmailEnrollFlowState
}

// NewEmailEnrollFlow creates an enrollment flow on an authenticated session.
func (s *Session) NewEmailEnrollFlow() *EmailEnrollFlow {
	return &EmailEnrollFlow{session: s}
}

// State returns the current stage.
func (f *EmailEnrollFlow) State() EmailEnrollFlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ConfirmIntent records the user's acknowledgement. Local only; no request is
// made. Only valid from EmailEnrollStateIdle.
func (f *EmailEnrollFlow) ConfirmIntent() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != EmailEnrollStateIdle {
		return fmt.Errorf("%w: intent already confirmed", ErrInvalidFlowState)
	}
	f.state = EmailEnrollStateIntentConfirmed
	return nil
}

// SendCode mails the enrollment code. Valid from intent-confirmed, and from
// code-sent to re-send (a new code supersedes the old one server-side).
func (f *EmailEnrollFlow) SendCode(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != EmailEnrollStateIntentConfirmed && f.state != EmailEnrollStateCodeSent {
		return fmt.Errorf("%w: confirm intent first", ErrInvalidFlowState)
	}

	if err := f.session.SendEmailSetupCode(ctx); err != nil {
		return err
	}
	f.state = EmailEnrollStateCodeSent
	return nil
}

// Confirm submits the mailed code and completes the enrollment. Only valid
// from EmailEnrollStateCodeSent. A wrong or expired code leaves the flow in
// place; the user retypes or re-sends.
func (f *EmailEnrollFlow) Confirm(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != EmailEnrollStateCodeSent {
		return fmt.Errorf("%w: no code has been sent", ErrInvalidFlowState)
	}

	if err := f.session.ConfirmEmailSetup(ctx, code); err != nil {
		return err
	}
	f.state = EmailEnrollStateEnrolled
	return nil
}
