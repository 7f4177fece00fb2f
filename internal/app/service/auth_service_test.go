package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mindclaire/internal/common"
	"mindclaire/internal/common/security"
	"mindclaire/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) VerifyByToken(ctx context.Context, token string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerificationToken != nil && *u.VerificationToken == token &&
			u.VerificationTokenExpiry != nil && u.VerificationTokenExpiry.After(now) {
			u.IsVerified = true
			u.VerificationToken = nil
			u.VerificationTokenExpiry = nil
			return nil
		}
	}
	return common.ErrInvalidToken
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expiry
	return nil
}

func (f *fakeUserRepo) ResetPasswordByToken(ctx context.Context, token, hashedPassword string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			u.HashedPassword = hashedPassword
			u.ResetPasswordToken = nil
			u.ResetPasswordExpires = nil
			return nil
		}
	}
	return common.ErrInvalidToken
}

// expireVerificationToken backdates the stored expiry so expiry paths can be
// exercised without sleeping.
func (f *fakeUserRepo) expireVerificationToken(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.VerificationTokenExpiry != nil {
			past := time.Now().Add(-time.Minute)
			u.VerificationTokenExpiry = &past
		}
	}
}

func (f *fakeUserRepo) expireResetToken(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ResetPasswordExpires != nil {
			past := time.Now().Add(-time.Minute)
			u.ResetPasswordExpires = &past
		}
	}
}

type fakeSessionRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{revoked: map[string]time.Duration{}}
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.revoked[tokenID] = ttl
	}
	return nil
}

func (f *fakeSessionRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type fakeMailer struct {
	verification chan string
	reset        chan string
	fail         bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		verification: make(chan string, 4),
		reset:        make(chan string, 4),
	}
}

func (m *fakeMailer) SendVerificationMail(ctx context.Context, email, token string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.verification <- token
	return nil
}

func (m *fakeMailer) SendPasswordResetMail(ctx context.Context, email, token string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.reset <- token
	return nil
}

func waitForToken(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case token := <-ch:
		return token
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail token")
		return ""
	}
}

func newTestAuthService(t *testing.T, mailer *fakeMailer) (*AuthService, *fakeUserRepo, *fakeSessionRepo, *security.TokenAuthority) {
	t.Helper()
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	tokens := security.NewTokenAuthority([]byte("test-secret"), 24*time.Hour)
	svc := NewAuthService(
		userRepo, sessionRepo, tokens, mailer,
		slog.New(slog.DiscardHandler),
		10*time.Minute, 6, time.Second,
	)
	return svc, userRepo, sessionRepo, tokens
}

func decodeSession(t *testing.T, tokens *security.TokenAuthority, tokenString string) map[string]interface{} {
	t.Helper()
	token, err := jwtauth.VerifyToken(tokens.JWTAuth(), tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	return claims
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, newFakeMailer())
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Email: "a@x.com", Password: "secret1"}},
		{"missing email", RegisterRequest{Name: "A", Password: "secret1"}},
		{"missing password", RegisterRequest{Name: "A", Email: "a@x.com"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@x.com", Password: "12345"}},
		{"malformed email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, newFakeMailer())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@X.COM", Password: "secret2"})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	mailer := newFakeMailer()
	svc, userRepo, _, tokens := newTestAuthService(t, mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "A", user.Name)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, model.RoleUser, user.Role)
	require.False(t, user.IsVerified)

	verificationToken := waitForToken(t, mailer.verification)

	// Wrong token is rejected.
	require.ErrorIs(t, svc.Verify(ctx, "deadbeef"), common.ErrInvalidToken)

	// Emailed token succeeds once.
	require.NoError(t, svc.Verify(ctx, verificationToken))
	stored, err := userRepo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, stored.IsVerified)
	require.Nil(t, stored.VerificationToken)
	require.Nil(t, stored.VerificationTokenExpiry)

	// Second use of the same token fails: tokens are single-use.
	require.ErrorIs(t, svc.Verify(ctx, verificationToken), common.ErrInvalidToken)

	resp, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, user.ID, resp.User.ID)

	claims := decodeSession(t, tokens, resp.Token)
	userID, err := security.GetUserIDFromClaims(claims)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
	role, err := security.GetUserRoleFromClaims(claims)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, role)
}

func TestVerifyExpiredToken(t *testing.T) {
	mailer := newFakeMailer()
	svc, userRepo, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	verificationToken := waitForToken(t, mailer.verification)

	userRepo.expireVerificationToken("a@x.com")

	require.ErrorIs(t, svc.Verify(ctx, verificationToken), common.ErrInvalidToken)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	mailer := newFakeMailer()
	svc, _, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, errWrongPassword := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong12"})
	_, errUnknownEmail := svc.Login(ctx, LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	_, errMissingInput := svc.Login(ctx, LoginRequest{})

	require.ErrorIs(t, errWrongPassword, common.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownEmail, common.ErrInvalidCredentials)
	require.ErrorIs(t, errMissingInput, common.ErrInvalidCredentials)
	// Same message for all three: no account enumeration.
	require.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	require.Equal(t, errWrongPassword.Error(), errMissingInput.Error())
}

func TestPasswordNeverExposed(t *testing.T) {
	mailer := newFakeMailer()
	svc, userRepo, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	projection, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(projection), "secret1")
	require.NotContains(t, string(projection), "password")

	stored, err := userRepo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.HashedPassword)
	require.True(t, security.CheckPasswordHash("secret1", stored.HashedPassword))

	storedJSON, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NotContains(t, string(storedJSON), stored.HashedPassword)
}

func TestForgotAndResetPassword(t *testing.T) {
	mailer := newFakeMailer()
	svc, _, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "nobody@x.com"}), common.ErrNotFound)

	require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "a@x.com"}))
	resetToken := waitForToken(t, mailer.reset)

	// Too-short replacement password is rejected before the token is spent.
	err = svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "short"})
	require.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "newpass1"}))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "newpass1"})
	require.NoError(t, err)

	// Reset tokens are single-use too.
	err = svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "another1"})
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	mailer := newFakeMailer()
	svc, userRepo, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "a@x.com"}))
	resetToken := waitForToken(t, mailer.reset)

	userRepo.expireResetToken("a@x.com")

	err = svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "newpass1"})
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	mailer := newFakeMailer()
	mailer.fail = true
	svc, _, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessionRepo, _ := newTestAuthService(t, newFakeMailer())
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, svc.Logout(ctx, "jti-1", expiresAt))

	revoked, err := svc.IsSessionRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// The fake stores the TTL it was given; it must not exceed the token life.
	sessionRepo.mu.Lock()
	ttl := sessionRepo.revoked["jti-1"]
	sessionRepo.mu.Unlock()
	require.LessOrEqual(t, ttl, time.Hour)
	require.Greater(t, ttl, time.Duration(0))
}

func TestProfile(t *testing.T) {
	mailer := newFakeMailer()
	svc, _, _, _ := newTestAuthService(t, mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, profile.ID)
	require.Equal(t, "a@x.com", profile.Email)

	_, err = svc.Profile(ctx, "missing-id")
	require.ErrorIs(t, err, common.ErrNotFound)
}
