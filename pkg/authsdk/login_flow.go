package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidFlowState is returned when a flow method is called out of order.
// Each flow is an explicit state machine; actions outside the current state
// fail instead of doing something surprising.
var ErrInvalidFlowState = errors.New("authsdk: action not valid in current flow state")

// LoginFlowState names the stages of a login.
type LoginFlowState int

const (
	// LoginStateIdle means no attempt has started yet.
	LoginStateIdle LoginFlowState = iota

	// LoginStateChallenged means the password was accepted and a second
	// factor is outstanding; the flow holds the ticket in memory.
	LoginStateChallenged

	// LoginStateDone means a session exists.
	LoginStateDone
)

// LoginFlow drives a full login: password, then a second factor if the
// account demands one. The challenge ticket lives only inside the flow and is
// never persisted; only the final session reaches the CredentialStore.
type LoginFlow struct {
	client *Client
	creds  CredentialStore

	mu      sync.Mutex
	state   LoginFlowState
	ticket  string
	mfaType string
	session *Session
}

// NewLoginFlow creates a login flow. creds may be nil when the caller does
// not want the session persisted.
func (c *Client) NewLoginFlow(creds CredentialStore) *LoginFlow {
	return &LoginFlow{client: c, creds: creds}
}

// State returns the current stage.
func (f *LoginFlow) State() LoginFlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// MFAType reports the account's active second factor once challenged.
func (f *LoginFlow) MFAType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mfaType
}

// Start submits the password. It either completes the flow directly or moves
// it to LoginStateChallenged; inspect State afterwards. Only valid from
// LoginStateIdle.
func (f *LoginFlow) Start(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != LoginStateIdle {
		return fmt.Errorf("%w: login already started", ErrInvalidFlowState)
	}

	session, err := f.client.Login(ctx, email, password)

	var challenge *MFARequiredError
	if errors.As(err, &challenge) {
		f.state = LoginStateChallenged
		f.ticket = challenge.Ticket
		f.mfaType = challenge.MFAType
		return nil
	}
	if err != nil {
		return err
	}

	return f.complete(session)
}

// RequestEmailCode asks the service to mail a login code against the held
// ticket. Only valid from LoginStateChallenged.
func (f *LoginFlow) RequestEmailCode(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != LoginStateChallenged {
		return fmt.Errorf("%w: no outstanding challenge", ErrInvalidFlowState)
	}

	err := f.client.RequestEmailChallenge(ctx, f.ticket)
	if isTicketGone(err) {
		f.reset()
	}
	return err
}

// Submit presents a code for the outstanding challenge. Only valid from
// LoginStateChallenged. A wrong code leaves the flow challenged for a retry;
// a dead ticket resets the flow to idle so the user signs in again.
func (f *LoginFlow) Submit(ctx context.Context, code, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != LoginStateChallenged {
		return fmt.Errorf("%w: no outstanding challenge", ErrInvalidFlowState)
	}

	session, err := f.client.VerifyMFA(ctx, f.ticket, code, method)
	if err != nil {
		if isTicketGone(err) {
			f.reset()
		}
		return err
	}

	return f.complete(session)
}

// Session returns the established session. Only valid from LoginStateDone.
func (f *LoginFlow) Session() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != LoginStateDone {
		return nil, fmt.Errorf("%w: login not complete", ErrInvalidFlowState)
	}
	return f.session, nil
}

func (f *LoginFlow) complete(session *Session) error {
	f.state = LoginStateDone
	f.session = session
	f.ticket = ""

	if f.creds != nil {
		return f.creds.Save(StoredCredentials{
			Token:   session.Token(),
			Account: session.Account(),
		})
	}
	return nil
}

func (f *LoginFlow) reset() {
	f.state = LoginStateIdle
	f.ticket = ""
	f.mfaType = ""
}

// isTicketGone reports whether the server considers the challenge dead:
// expired, consumed, or out of attempts.
func isTicketGone(err error) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	return authErr.Code == ErrorCodeTicketExpired || authErr.Code == ErrorCodeTooManyAttempts
}
