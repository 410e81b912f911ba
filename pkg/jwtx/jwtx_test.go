package jwtx_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fairworkhq/payday/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func sessionClaims(issuer string, ttl time.Duration) jwtx.Claims {
	return jwtx.NewSessionClaims(
		"account-1", "session-1", "admin@example.com",
		[]string{"pwd", "mfa"},
		ttl,
		issuer,
		time.Now().UTC(),
	)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)
	require.True(t, signer.Ready())
	require.NotEmpty(t, signer.KID())

	token, err := signer.Sign(sessionClaims("payday-auth", time.Hour))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(signer.Public(), "payday-auth")
	claims, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, "account-1", claims.Subject)
	require.Equal(t, "session-1", claims.SID)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, []string{"pwd", "mfa"}, claims.AMR)
	require.NotEmpty(t, claims.ID, "jti should be set")
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	token, err := signer.Sign(sessionClaims("someone-else", time.Hour))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(signer.Public(), "payday-auth")
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	token, err := signer.Sign(sessionClaims("payday-auth", -time.Hour))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(signer.Public(), "payday-auth")
	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	other, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	token, err := signer.Sign(sessionClaims("payday-auth", time.Hour))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(other.Public(), "payday-auth")
	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(signer.Public(), "payday-auth")
	_, err = verifier.Verify("not.a.token")
	require.Error(t, err)
}

func TestPeekExpiry(t *testing.T) {
	signer, err := jwtx.NewEphemeralSigner()
	require.NoError(t, err)

	t.Run("reads expiry without verifying", func(t *testing.T) {
		token, err := signer.Sign(sessionClaims("payday-auth", time.Hour))
		require.NoError(t, err)

		claims, err := jwtx.PeekExpiry(token)
		require.NoError(t, err)
		require.NotNil(t, claims.ExpiresAt)
		require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("reads an already-expired token", func(t *testing.T) {
		token, err := signer.Sign(sessionClaims("payday-auth", -time.Hour))
		require.NoError(t, err)

		claims, err := jwtx.PeekExpiry(token)
		require.NoError(t, err)
		require.True(t, time.Now().After(claims.ExpiresAt.Time))
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		_, err := jwtx.PeekExpiry("garbage")
		require.Error(t, err)
	})
}

func TestLoadSigner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pem")

	first, err := jwtx.LoadSigner(path)
	require.NoError(t, err)
	require.True(t, first.Ready())

	// Loading again reuses the persisted key
	second, err := jwtx.LoadSigner(path)
	require.NoError(t, err)
	require.Equal(t, first.KID(), second.KID())
	require.Equal(t, first.Public(), second.Public())

	// Tokens signed by the first load verify against the second
	token, err := first.Sign(sessionClaims("payday-auth", time.Hour))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(second.Public(), "payday-auth")
	_, err = verifier.Verify(token)
	require.NoError(t, err)
}
