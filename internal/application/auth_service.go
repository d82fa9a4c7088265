package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes the user lookups required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByUsername(ctx context.Context, username string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService coordinates authentication flows such as login and logout.
type AuthService struct {
	credentials  CredentialStore
	sessions     SessionRepository
	tokens       *TokenCodec
	verify       PasswordVerifier
	validateTOTP TOTPValidator
	idGenerator  func() string
	now          func() time.Time
	sessionTTL   time.Duration
	logger       *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions SessionRepository, tokens *TokenCodec, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:  credentials,
		sessions:     sessions,
		tokens:       tokens,
		verify:       VerifyPassword,
		validateTOTP: ValidateTOTPCode,
		idGenerator:  idGenerator,
		now:          now,
		sessionTTL:   sessionTTL,
		logger:       defaultLogger(logger),
	}
}

// SetPasswordVerifier overrides the password comparison used during login.
func (s *AuthService) SetPasswordVerifier(verify PasswordVerifier) {
	if verify != nil {
		s.verify = verify
	}
}

// SetTOTPValidator overrides the one-time code check used during login.
func (s *AuthService) SetTOTPValidator(validate TOTPValidator) {
	if validate != nil {
		s.validateTOTP = validate
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials, verifies a one-time code when the account has
// two-factor enabled, and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.sessions == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	username := strings.TrimSpace(strings.ToLower(params.Username))

	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verify(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	if creds.User.TOTPEnabled {
		code := strings.TrimSpace(params.TOTPCode)
		if code == "" {
			err = ErrTwoFactorRequired
			return
		}
		if !s.validateTOTP(code, creds.TOTPSecret) {
			err = ErrInvalidTwoFactorCode
			return
		}
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	session := Session{
		ID:        s.idGenerator(),
		UserID:    creds.User.ID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	var token string
	token, err = s.tokens.Issue(session)
	if err != nil {
		return
	}

	result = LoginResult{User: creds.User, Token: token, ExpiresAt: session.ExpiresAt}
	return
}

// ValidateToken verifies a bearer token, checks its backing session, and
// returns the principal it represents.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil || s.credentials == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var sessionID string
	sessionID, err = s.tokens.Parse(trimmed)
	if err != nil {
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	var user User
	user, err = s.credentials.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	principal = Principal{UserID: user.ID, Role: user.Role}
	return
}

// Logout revokes the session backing the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil || s.tokens == nil {
		return fmt.Errorf("auth service not fully configured")
	}

	logger := s.loggerWith(ctx, "Logout")

	sessionID, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if _, err := s.sessions.RevokeSession(ctx, sessionID, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials)
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err)
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}
