package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/auth/authtest"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/utils"
)

func newService(t *testing.T) (*auth.Service, *authtest.MemStore, *authtest.RecordingNotifier) {
	t.Helper()
	return newServiceWithConfig(t, auth.Config{
		JWTSecret:     "test-secret",
		SessionTTL:    24 * time.Hour,
		ResetTokenTTL: time.Hour,
		BcryptCost:    4, // minimum cost, keeps tests fast
	})
}

func newServiceWithConfig(t *testing.T, cfg auth.Config) (*auth.Service, *authtest.MemStore, *authtest.RecordingNotifier) {
	t.Helper()
	store := authtest.NewMemStore()
	notify := &authtest.RecordingNotifier{}
	return auth.NewService(store, notify, cfg), store, notify
}

func TestRegisterLoginCurrentIdentity(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, model.RoleStudent, sess.User.Role)
	assert.False(t, sess.User.IsEmailVerified)
	assert.Empty(t, sess.User.PasswordHash, "session user must not carry the password hash")

	login, err := svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	ident, err := svc.CurrentIdentity(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, ident.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Mallory", "Alice@Example.COM", "Other1234", "")
	assert.ErrorIs(t, err, auth.ErrEmailExists)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "no duplicate record may be created")
}

func TestRegister_Roles(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Eve", "eve@example.com", "Secret123", model.RoleAdmin)
	assert.ErrorIs(t, err, auth.ErrRoleNotAllowed)

	sess, err := svc.Register(ctx, "Frank", "frank@example.com", "Secret123", model.RoleFounder)
	require.NoError(t, err)
	assert.Equal(t, model.RoleFounder, sess.User.Role)
}

func TestLogin_UniformFailure(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "Secret123")
	_, errWrongPw := svc.Login(ctx, "alice@example.com", "WrongPass1")

	assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw, "unknown email and wrong password must be indistinguishable")
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "Alice@Example.com", "Secret123", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ALICE@EXAMPLE.COM", "Secret123")
	assert.NoError(t, err)
}

func TestForgotPassword_UnknownEmailSilently(t *testing.T) {
	t.Parallel()
	svc, _, notify := newService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err, "unknown email must not surface as an error")
	assert.Empty(t, notify.Sent, "no notification for an unknown account")
}

func TestForgotPassword_StoresDigestNotToken(t *testing.T) {
	t.Parallel()
	svc, store, notify := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	raw := notify.LastToken("password_reset")
	require.NotEmpty(t, raw)

	rec := store.Raw(sess.User.ID)
	require.NotNil(t, rec)
	assert.NotEqual(t, raw, rec.ResetDigest, "store must never hold the raw token")
	assert.Equal(t, utils.DigestToken(raw), rec.ResetDigest)
	require.NotNil(t, rec.ResetExpiresAt)
	assert.True(t, rec.ResetExpiresAt.After(time.Now().UTC()))
}

func TestResetPassword_SingleUse(t *testing.T) {
	t.Parallel()
	svc, _, notify := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	raw := notify.LastToken("password_reset")

	require.NoError(t, svc.ResetPassword(ctx, raw, "NewSecret456"))

	// Old password no longer authenticates, new one does.
	_, err = svc.Login(ctx, "alice@example.com", "Secret123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "NewSecret456")
	assert.NoError(t, err)

	// A consumed token never matches again, and the first reset stays
	// in effect.
	err = svc.ResetPassword(ctx, raw, "Hijacked789")
	assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
	_, err = svc.Login(ctx, "alice@example.com", "NewSecret456")
	assert.NoError(t, err)
}

func TestResetPassword_Expired(t *testing.T) {
	t.Parallel()
	svc, store, notify := newServiceWithConfig(t, auth.Config{
		JWTSecret:     "test-secret",
		SessionTTL:    24 * time.Hour,
		ResetTokenTTL: -time.Minute, // issued already expired
		BcryptCost:    4,
	})
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	raw := notify.LastToken("password_reset")

	err = svc.ResetPassword(ctx, raw, "NewSecret456")
	assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)

	// The digest is still present in the store; only the timestamp
	// comparison rejected it.
	rec := store.Raw(sess.User.ID)
	assert.Equal(t, utils.DigestToken(raw), rec.ResetDigest)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)

	raw, err := utils.NewOpaqueToken()
	require.NoError(t, err)
	err = svc.ResetPassword(context.Background(), raw, "NewSecret456")
	assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()
	svc, store, notify := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)
	raw := notify.LastToken("email_verification")
	require.NotEmpty(t, raw)

	require.NoError(t, svc.VerifyEmail(ctx, raw))

	rec := store.Raw(sess.User.ID)
	assert.True(t, rec.IsEmailVerified)
	assert.Empty(t, rec.VerifyDigest, "verification digest cleared on success")

	// Single use.
	err = svc.VerifyEmail(ctx, raw)
	assert.ErrorIs(t, err, auth.ErrVerifyTokenInvalid)
}

func TestCurrentIdentity_Failures(t *testing.T) {
	t.Parallel()
	svc, store, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)

	_, err = svc.CurrentIdentity(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)

	// A valid, unexpired token stops working the moment the user is
	// deleted.
	store.Delete(sess.User.ID)
	_, err = svc.CurrentIdentity(ctx, sess.Token)
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
}

func TestCurrentIdentity_ExpiredSession(t *testing.T) {
	t.Parallel()
	svc, _, _ := newServiceWithConfig(t, auth.Config{
		JWTSecret:     "test-secret",
		SessionTTL:    -time.Minute,
		ResetTokenTTL: time.Hour,
		BcryptCost:    4,
	})
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)

	_, err = svc.CurrentIdentity(ctx, sess.Token)
	assert.ErrorIs(t, err, auth.ErrNotAuthorized, "expiry must not be distinguishable from tampering")
}

func TestRegister_NotifierFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	svc, _, notify := newService(t)
	notify.Err = assert.AnError

	sess, err := svc.Register(context.Background(), "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err, "broker outage must not block registration")
	require.NotEmpty(t, sess.Token)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice", "alice@example.com", "Secret123", "")
	require.NoError(t, err)

	u, err := svc.UpdateProfile(ctx, sess.User.ID, "Alice L.", "CS student, class of 2027")
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", u.DisplayName)
	assert.Equal(t, "CS student, class of 2027", u.Bio)

	_, err = svc.UpdateProfile(ctx, "no-such-id", "X", "")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
