package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"mindclaire/internal/common"
	"mindclaire/internal/common/security"
	"mindclaire/internal/domain/model"
	"mindclaire/internal/domain/repository"
	"mindclaire/internal/platform/mail"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService drives the account lifecycle: registration with email
// verification, login/logout, and the password reset flow. All expected
// failures map to the sentinel errors in internal/common.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *security.TokenAuthority
	mailer      mail.Mailer
	log         *slog.Logger

	actionTokenTTL time.Duration
	passwordMinLen int
	mailTimeout    time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *security.TokenAuthority,
	mailer mail.Mailer,
	log *slog.Logger,
	actionTokenTTL time.Duration,
	passwordMinLen int,
	mailTimeout time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		tokens:         tokens,
		mailer:         mailer,
		log:            log,
		actionTokenTTL: actionTokenTTL,
		passwordMinLen: passwordMinLen,
		mailTimeout:    mailTimeout,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Register creates an unverified user and queues the verification mail. The
// mail attempt never fails the registration; a delivery error only shows up in
// the log.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.PublicUser, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", common.ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, fmt.Errorf("email address is malformed: %w", common.ErrValidation)
	}
	if len(req.Password) < s.passwordMinLen {
		return nil, fmt.Errorf("password must be at least %d characters long: %w", s.passwordMinLen, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := security.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	expiry := time.Now().Add(s.actionTokenTTL)

	user := &model.User{
		ID:                      uuid.NewString(),
		Name:                    req.Name,
		Email:                   req.Email,
		HashedPassword:          hashedPassword,
		Role:                    model.RoleUser, // Default role
		IsVerified:              false,
		VerificationToken:       &verificationToken,
		VerificationTokenExpiry: &expiry,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on a duplicate email.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendMailAsync(user.Email, "verification", func(ctx context.Context) error {
		return s.mailer.SendVerificationMail(ctx, user.Email, verificationToken)
	})

	projection := user.Public()
	return &projection, nil
}

// Verify consumes a verification token. The repository clears the token in the
// same statement that checks it, so a token is accepted at most once.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	if err := s.userRepo.VerifyByToken(ctx, token, time.Now()); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("failed to verify token: %w", err)
	}
	return nil
}

// Login checks the credentials and issues a session token. Missing input, an
// unknown email and a wrong password all produce the same error so callers
// cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{User: user.Public(), Token: token}, nil
}

// Logout revokes the session's token id for the remainder of its lifetime.
// Token validation stays stateless; this list only exists so that an explicit
// logout takes effect before the natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return common.ErrUnauthenticated
	}
	if err := s.sessionRepo.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Profile returns the public projection for the authenticated user.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	projection := user.Public()
	return &projection, nil
}

// ForgotPassword stores a reset token on the account and queues the reset
// mail. Unknown emails surface as ErrNotFound, matching the external contract.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return fmt.Errorf("email is required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	resetToken, err := security.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiry := time.Now().Add(s.actionTokenTTL)

	if err := s.userRepo.SetResetToken(ctx, user.ID, resetToken, expiry); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.sendMailAsync(user.Email, "password reset", func(ctx context.Context) error {
		return s.mailer.SendPasswordResetMail(ctx, user.Email, resetToken)
	})

	return nil
}

// ResetPassword consumes a reset token and replaces the password hash. Same
// single-use semantics as Verify.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Token == "" {
		return common.ErrInvalidToken
	}
	if len(req.NewPassword) < s.passwordMinLen {
		return fmt.Errorf("password must be at least %d characters long: %w", s.passwordMinLen, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ResetPasswordByToken(ctx, req.Token, hashedPassword, time.Now()); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// IsSessionRevoked is used by the auth middleware on every protected request.
func (s *AuthService) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.sessionRepo.IsRevoked(ctx, tokenID)
}

// sendMailAsync runs the mail attempt outside the request lifecycle under its
// own bounded context. The HTTP response never waits on delivery.
func (s *AuthService) sendMailAsync(email, kind string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mailTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			s.log.Error("failed to send mail", "kind", kind, "to", email, "error", err)
		}
	}()
}
