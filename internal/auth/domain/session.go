package domain

import "time"

// Session is a fully authenticated session: a signed token with embedded
// expiry plus the account snapshot clients persist alongside it. Sessions are
// only minted after the password and any required second factor have both
// been verified.
type Session struct {
	Token     string
	Account   AccountSnapshot
	ExpiresIn time.Duration
}
