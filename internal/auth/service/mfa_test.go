package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/pkg/cryptox"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestBeginTOTPStagesNothingOnAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	setup, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.True(t, strings.HasPrefix(setup.QRCode, "otpauth://"))
	require.Len(t, setup.BackupCodes, backupCodeCount)

	// abandoning setup here leaves the account exactly as it was
	loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.False(t, loaded.MFARequired())
	require.Nil(t, loaded.TOTPSecret)

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBeginTOTPSupersedesPreviousBegin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	first, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)

	second, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	// the first secret no longer confirms
	code, err := totp.GenerateCode(first.Secret, time.Now())
	require.NoError(t, err)
	err = svc.ConfirmTOTP(ctx, account.ID, code, false)
	require.ErrorIs(t, err, ErrInvalidCode)

	// the second one does
	code, err = totp.GenerateCode(second.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmTOTP(ctx, account.ID, code, false))
}

func TestConfirmTOTPActivates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")
	secret, _ := enrollTOTP(t, svc, account.ID)

	loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, loaded.MFARequired())
	require.Equal(t, domain.MFATypeApp, loaded.MFAType)
	require.NotNil(t, loaded.TOTPSecret)
	require.Equal(t, secret, *loaded.TOTPSecret)

	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, backupCodeCount, count)

	// the pending enrollment row is gone
	_, err = st.TOTPEnrollments().GetEnrollment(ctx, account.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// and a second begin for the same method is refused
	_, err = svc.BeginTOTP(ctx, account.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestConfirmTOTPWithBackupCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	setup, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmTOTP(ctx, account.ID, setup.BackupCodes[3], true))

	loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, loaded.MFARequired())

	// the confirming code is spent: the vault holds one fewer unused code and
	// the spent hash never consumes
	count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, backupCodeCount-1, count)

	ok, err := st.BackupCodes().ConsumeBackupCode(ctx, account.ID, cryptox.FingerprintToken(setup.BackupCodes[3]), time.Now().UTC())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConfirmTOTPBackupCodeNotReusableAtLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})
	login := newLoginService(t, st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	setup, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmTOTP(ctx, account.ID, setup.BackupCodes[3], true))

	_, challenge, err := login.Authenticate(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, challenge)

	// the code spent on confirmation is rejected like any consumed code
	_, err = login.VerifyMFA(ctx, challenge.Ticket, setup.BackupCodes[3], domain.MFAMethodBackup)
	require.ErrorIs(t, err, ErrInvalidCode)

	// a different code from the same batch still works
	session, err := login.VerifyMFA(ctx, challenge.Ticket, setup.BackupCodes[4], domain.MFAMethodBackup)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
}

func TestConfirmTOTPWrongCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	_, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)

	err = svc.ConfirmTOTP(ctx, account.ID, "000000", false)
	require.ErrorIs(t, err, ErrInvalidCode)

	// the enrollment stays pending for a retry
	_, err = st.TOTPEnrollments().GetEnrollment(ctx, account.ID)
	require.NoError(t, err)
}

func TestConfirmTOTPExpiredEnrollment(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})
	svc.EnrollmentTTL = time.Nanosecond

	account := createAccount(t, st, "admin@example.com", "correct horse")

	setup, err := svc.BeginTOTP(ctx, account.ID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	err = svc.ConfirmTOTP(ctx, account.ID, code, false)
	require.ErrorIs(t, err, ErrEnrollmentExpired)

	// confirming with no enrollment at all reads the same
	err = svc.ConfirmTOTP(ctx, "no-such-account", code, false)
	require.ErrorIs(t, err, ErrEnrollmentExpired)
}

func TestRegenerateBackupCodes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")

	t.Run("refused before enrollment", func(t *testing.T) {
		_, err := svc.RegenerateBackupCodes(ctx, account.ID)
		require.ErrorIs(t, err, ErrNotEnrolled)
	})

	_, oldCodes := enrollTOTP(t, svc, account.ID)

	t.Run("replaces the whole batch", func(t *testing.T) {
		now := time.Now().UTC()

		newCodes, err := svc.RegenerateBackupCodes(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, newCodes, backupCodeCount)

		count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, backupCodeCount, count)

		// old codes are dead, new ones consume
		ok, err := st.BackupCodes().ConsumeBackupCode(ctx, account.ID, cryptox.FingerprintToken(oldCodes[0]), now)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = st.BackupCodes().ConsumeBackupCode(ctx, account.ID, cryptox.FingerprintToken(newCodes[0]), now)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestDisable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newMFAService(st, &captureMailer{})

	account := createAccount(t, st, "admin@example.com", "correct horse")
	enrollTOTP(t, svc, account.ID)

	t.Run("wrong password refused", func(t *testing.T) {
		err := svc.Disable(ctx, account.ID, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.True(t, loaded.MFARequired())
	})

	t.Run("correct password wipes everything", func(t *testing.T) {
		require.NoError(t, svc.Disable(ctx, account.ID, "correct horse"))

		loaded, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.False(t, loaded.MFARequired())
		require.Equal(t, domain.MFATypeNone, loaded.MFAType)
		require.Nil(t, loaded.TOTPSecret)

		count, err := st.BackupCodes().CountUnusedBackupCodes(ctx, account.ID)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("repeat disable reports not enrolled", func(t *testing.T) {
		err := svc.Disable(ctx, account.ID, "correct horse")
		require.ErrorIs(t, err, ErrNotEnrolled)
	})
}

func TestGenerateBackupCodes(t *testing.T) {
	t.Parallel()

	codes, hashes, err := generateBackupCodes()
	require.NoError(t, err)
	require.Len(t, codes, backupCodeCount)
	require.Len(t, hashes, backupCodeCount)

	seen := make(map[string]struct{}, len(codes))
	for i, code := range codes {
		require.NotEmpty(t, code)
		require.Equal(t, cryptox.FingerprintToken(code), hashes[i])
		seen[code] = struct{}{}
	}
	require.Len(t, seen, backupCodeCount)
}

func TestMatchPendingBackupCode(t *testing.T) {
	t.Parallel()

	codes, hashes, err := generateBackupCodes()
	require.NoError(t, err)

	require.True(t, matchPendingBackupCode(codes[0], hashes))
	require.True(t, matchPendingBackupCode(codes[len(codes)-1], hashes))
	require.False(t, matchPendingBackupCode("not-a-code", hashes))
	require.False(t, matchPendingBackupCode("", nil))
}
