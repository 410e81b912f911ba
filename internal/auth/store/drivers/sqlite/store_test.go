package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestAccount(t *testing.T, st *Store) domain.Account {
	t.Helper()

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        idx.New().String() + "@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), account))
	return account
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("IsEmpty on fresh store", func(t *testing.T) {
		empty, err := st.Accounts().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})

	account := newTestAccount(t, st)

	t.Run("lookup by ID and email", func(t *testing.T) {
		byID, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, account.Email, byID.Email)

		byEmail, err := st.Accounts().GetAccountByEmail(ctx, account.Email)
		require.NoError(t, err)
		require.Equal(t, account.ID, byEmail.ID)
	})

	t.Run("unknown account is ErrNotFound", func(t *testing.T) {
		_, err := st.Accounts().GetAccountByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email is ErrAlreadyExists", func(t *testing.T) {
		dup := account
		dup.ID = idx.New().String()
		err := st.Accounts().CreateAccount(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("MFA transitions", func(t *testing.T) {
		require.NoError(t, st.Accounts().EnableAppMFA(ctx, account.ID, "SECRET"))

		loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MFATypeApp, loaded.MFAType)
		require.NotNil(t, loaded.MFAEnabled)
		require.NotNil(t, loaded.TOTPSecret)
		require.Equal(t, "SECRET", *loaded.TOTPSecret)

		require.NoError(t, st.Accounts().EnableEmailMFA(ctx, account.ID))

		loaded, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MFATypeEmail, loaded.MFAType)
		require.Nil(t, loaded.TOTPSecret, "switching to email must drop the TOTP secret")

		require.NoError(t, st.Accounts().DisableMFA(ctx, account.ID))

		loaded, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.False(t, loaded.MFARequired())
		require.Nil(t, loaded.MFAEnabled)
	})

	t.Run("MFA transitions on unknown account are ErrNotFound", func(t *testing.T) {
		require.ErrorIs(t, st.Accounts().EnableAppMFA(ctx, "nope", "SECRET"), store.ErrNotFound)
		require.ErrorIs(t, st.Accounts().EnableEmailMFA(ctx, "nope"), store.ErrNotFound)
		require.ErrorIs(t, st.Accounts().DisableMFA(ctx, "nope"), store.ErrNotFound)
	})
}

func TestMFATicketsConsumeOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	ticket := domain.MFATicket{
		ID:        idx.New().String(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	require.NoError(t, st.MFATickets().CreateTicket(ctx, ticket))

	ok, err := st.MFATickets().ConsumeTicket(ctx, ticket.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	// second consume loses
	ok, err = st.MFATickets().ConsumeTicket(ctx, ticket.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = st.MFATickets().GetTicket(ctx, ticket.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMFATicketsConsumeRespectsExpiry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	ticket := domain.MFATicket{
		ID:        idx.New().String(),
		AccountID: account.ID,
		CreatedAt: now.Add(-10 * time.Minute),
		ExpiresAt: now.Add(-5 * time.Minute),
	}
	require.NoError(t, st.MFATickets().CreateTicket(ctx, ticket))

	ok, err := st.MFATickets().ConsumeTicket(ctx, ticket.ID, now)
	require.NoError(t, err)
	require.False(t, ok, "an expired ticket must never consume")
}

func TestMFATicketsAttemptsAndSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	live := domain.MFATicket{
		ID:        idx.New().String(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	stale := domain.MFATicket{
		ID:        idx.New().String(),
		AccountID: account.ID,
		CreatedAt: now.Add(-10 * time.Minute),
		ExpiresAt: now.Add(-5 * time.Minute),
	}
	require.NoError(t, st.MFATickets().CreateTicket(ctx, live))
	require.NoError(t, st.MFATickets().CreateTicket(ctx, stale))

	bumped, err := st.MFATickets().IncrementTicketAttempts(ctx, live.ID)
	require.NoError(t, err)
	require.Equal(t, 1, bumped.Attempts)

	bumped, err = st.MFATickets().IncrementTicketAttempts(ctx, live.ID)
	require.NoError(t, err)
	require.Equal(t, 2, bumped.Attempts)

	require.NoError(t, st.MFATickets().DeleteExpiredTickets(ctx))

	_, err = st.MFATickets().GetTicket(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.MFATickets().GetTicket(ctx, live.ID)
	require.NoError(t, err)
}

func TestBackupCodesConsumeOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	code := domain.BackupCode{
		ID:        idx.New().String(),
		AccountID: account.ID,
		CodeHash:  "hash-1",
		CreatedAt: now,
	}
	require.NoError(t, st.BackupCodes().CreateBackupCode(ctx, code))

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	ok, err := st.BackupCodes().ConsumeBackupCode(ctx, account.ID, "hash-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	// a consumed code never consumes again
	ok, err = st.BackupCodes().ConsumeBackupCode(ctx, account.ID, "hash-1", now)
	require.NoError(t, err)
	require.False(t, ok)

	// and no longer counts as unused
	count, err = st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBackupCodesScopedToAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestAccount(t, st)
	bob := newTestAccount(t, st)

	now := time.Now().UTC()
	require.NoError(t, st.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:        idx.New().String(),
		AccountID: alice.ID,
		CodeHash:  "shared-hash",
		CreatedAt: now,
	}))

	// bob cannot consume alice's code
	ok, err := st.BackupCodes().ConsumeBackupCode(ctx, bob.ID, "shared-hash", now)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.BackupCodes().DeleteAllBackupCodes(ctx, alice.ID))

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEmailCodesUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	require.NoError(t, st.EmailCodes().UpsertEmailCode(ctx, domain.EmailCode{
		AccountID: account.ID,
		CodeHash:  "old-hash",
		Purpose:   domain.EmailCodePurposeEnroll,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}))
	require.NoError(t, st.EmailCodes().UpsertEmailCode(ctx, domain.EmailCode{
		AccountID: account.ID,
		CodeHash:  "new-hash",
		Purpose:   domain.EmailCodePurposeLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	stored, err := st.EmailCodes().GetEmailCode(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", stored.CodeHash)
	require.Equal(t, domain.EmailCodePurposeLogin, stored.Purpose)

	require.NoError(t, st.EmailCodes().DeleteEmailCode(ctx, account.ID))

	_, err = st.EmailCodes().GetEmailCode(ctx, account.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEmailCodesSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	require.NoError(t, st.EmailCodes().UpsertEmailCode(ctx, domain.EmailCode{
		AccountID: account.ID,
		CodeHash:  "stale",
		Purpose:   domain.EmailCodePurposeLogin,
		CreatedAt: now.Add(-20 * time.Minute),
		ExpiresAt: now.Add(-10 * time.Minute),
	}))

	require.NoError(t, st.EmailCodes().DeleteExpiredEmailCodes(ctx))

	_, err := st.EmailCodes().GetEmailCode(ctx, account.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTOTPEnrollmentsUpsertAndSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	require.NoError(t, st.TOTPEnrollments().UpsertEnrollment(ctx, domain.TOTPEnrollment{
		AccountID:  account.ID,
		Secret:     "FIRST",
		CodeHashes: []string{"h1", "h2"},
		CreatedAt:  now,
		ExpiresAt:  now.Add(15 * time.Minute),
	}))
	require.NoError(t, st.TOTPEnrollments().UpsertEnrollment(ctx, domain.TOTPEnrollment{
		AccountID:  account.ID,
		Secret:     "SECOND",
		CodeHashes: []string{"h3", "h4", "h5"},
		CreatedAt:  now,
		ExpiresAt:  now.Add(15 * time.Minute),
	}))

	loaded, err := st.TOTPEnrollments().GetEnrollment(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, "SECOND", loaded.Secret)
	require.Equal(t, []string{"h3", "h4", "h5"}, loaded.CodeHashes)

	// an expired row is swept
	require.NoError(t, st.TOTPEnrollments().UpsertEnrollment(ctx, domain.TOTPEnrollment{
		AccountID:  account.ID,
		Secret:     "STALE",
		CodeHashes: []string{"h6"},
		CreatedAt:  now.Add(-30 * time.Minute),
		ExpiresAt:  now.Add(-15 * time.Minute),
	}))
	require.NoError(t, st.TOTPEnrollments().DeleteExpiredEnrollments(ctx))

	_, err = st.TOTPEnrollments().GetEnrollment(ctx, account.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	boom := errors.New("boom")
	now := time.Now().UTC()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID:        idx.New().String(),
			AccountID: account.ID,
			CodeHash:  "tx-hash",
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Zero(t, count, "rolled-back writes must not be visible")
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	account := newTestAccount(t, st)

	now := time.Now().UTC()
	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID:        idx.New().String(),
			AccountID: account.ID,
			CodeHash:  "tx-hash",
			CreatedAt: now,
		})
	})
	require.NoError(t, err)

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
