package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, creds UserCredentials) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, id string) (UserCredentials, error)
	UpdateUser(ctx context.Context, creds UserCredentials) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// AuditRecorder appends entries to the audit trail.
type AuditRecorder interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
}

// UserService orchestrates validation, authorization, and persistence for users.
type UserService struct {
	users        UserRepository
	audit        AuditRecorder
	hash         PasswordHasher
	generateTOTP TOTPGenerator
	validateTOTP TOTPValidator
	totpIssuer   string
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, audit AuditRecorder, hash PasswordHasher, totpIssuer string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = NewPasswordHasher(0)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if totpIssuer == "" {
		totpIssuer = "asset-inventory"
	}
	return &UserService{
		users:        users,
		audit:        audit,
		hash:         hash,
		generateTOTP: GenerateTOTPSecret,
		validateTOTP: ValidateTOTPCode,
		totpIssuer:   totpIssuer,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// SetTOTPGenerator overrides the secret generation used for enrollment.
func (s *UserService) SetTOTPGenerator(generate TOTPGenerator) {
	if generate != nil {
		s.generateTOTP = generate
	}
}

// SetTOTPValidator overrides the one-time code check used for confirmation.
func (s *UserService) SetTOTPValidator(validate TOTPValidator) {
	if validate != nil {
		s.validateTOTP = validate
	}
}

func (s *UserService) recordAudit(ctx context.Context, actor, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "user",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  s.now(),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "UserService", action).
			ErrorContext(ctx, "failed to append audit entry", "error", err)
	}
}

// CreateUser validates input and persists a new user for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	passwordHash, err := s.hash(normalized.Password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := User{
		ID:          s.idGenerator(),
		Username:    normalized.Username,
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		Role:        normalized.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	persisted, err := s.users.CreateUser(ctx, UserCredentials{User: user, PasswordHash: passwordHash})
	if err != nil {
		return User{}, err
	}

	s.recordAudit(ctx, params.Principal.UserID, "user.create", persisted.ID, "created user "+persisted.Username)
	return persisted, nil
}

// UpdateUser validates input and updates an existing user for administrators.
// A blank password keeps the current one.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	existing, err := s.users.GetUserCredentials(ctx, params.UserID)
	if err != nil {
		return User{}, err
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized, normalized.Password != "")
	if vErr.HasErrors() {
		return User{}, vErr
	}

	updated := existing
	updated.User.Username = normalized.Username
	updated.User.Email = normalized.Email
	updated.User.DisplayName = normalized.DisplayName
	updated.User.Role = normalized.Role
	updated.User.UpdatedAt = s.now()

	if normalized.Password != "" {
		hash, err := s.hash(normalized.Password)
		if err != nil {
			return User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}

	persisted, err := s.users.UpdateUser(ctx, updated)
	if err != nil {
		return User{}, err
	}

	s.recordAudit(ctx, params.Principal.UserID, "user.update", persisted.ID, "updated user "+persisted.Username)
	return persisted, nil
}

// DeleteUser removes a user when requested by an administrator. Principals
// cannot remove their own account.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if principal.UserID == userID {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.recordAudit(ctx, principal.UserID, "user.delete", userID, "")
	return nil
}

// GetUser returns a single user. Administrators may read any account, other
// principals only their own.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	return s.users.GetUser(ctx, userID)
}

// ListUsers returns all users for administrators, sorted by username.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, len(users))
	copy(out, users)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username == out[j].Username {
			return out[i].ID < out[j].ID
		}
		return out[i].Username < out[j].Username
	})

	return out, nil
}

// EnrollTwoFactor generates a fresh shared secret for the principal's own
// account and stores it in a pending state. Two-factor stays off until the
// first code is confirmed.
func (s *UserService) EnrollTwoFactor(ctx context.Context, principal Principal) (TwoFactorEnrollment, error) {
	if s == nil {
		return TwoFactorEnrollment{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return TwoFactorEnrollment{}, fmt.Errorf("user repository not configured")
	}

	creds, err := s.users.GetUserCredentials(ctx, principal.UserID)
	if err != nil {
		return TwoFactorEnrollment{}, err
	}

	enrollment, err := s.generateTOTP(s.totpIssuer, creds.User.Username)
	if err != nil {
		return TwoFactorEnrollment{}, fmt.Errorf("failed to generate two-factor secret: %w", err)
	}

	creds.TOTPSecret = enrollment.Secret
	creds.User.TOTPEnabled = false
	creds.User.UpdatedAt = s.now()
	if _, err := s.users.UpdateUser(ctx, creds); err != nil {
		return TwoFactorEnrollment{}, err
	}

	return enrollment, nil
}

// ConfirmTwoFactor verifies the first code from an authenticator app and
// switches two-factor on for the principal's account.
func (s *UserService) ConfirmTwoFactor(ctx context.Context, principal Principal, code string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	creds, err := s.users.GetUserCredentials(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if creds.TOTPSecret == "" {
		return ErrInvalidTwoFactorCode
	}
	if !s.validateTOTP(strings.TrimSpace(code), creds.TOTPSecret) {
		return ErrInvalidTwoFactorCode
	}

	creds.User.TOTPEnabled = true
	creds.User.UpdatedAt = s.now()
	if _, err := s.users.UpdateUser(ctx, creds); err != nil {
		return err
	}

	s.recordAudit(ctx, principal.UserID, "user.two_factor_enable", principal.UserID, "")
	return nil
}

// DisableTwoFactor switches two-factor off. Principals may disable their own;
// administrators may disable anyone's.
func (s *UserService) DisableTwoFactor(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() && principal.UserID != userID {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	creds, err := s.users.GetUserCredentials(ctx, userID)
	if err != nil {
		return err
	}

	creds.TOTPSecret = ""
	creds.User.TOTPEnabled = false
	creds.User.UpdatedAt = s.now()
	if _, err := s.users.UpdateUser(ctx, creds); err != nil {
		return err
	}

	s.recordAudit(ctx, principal.UserID, "user.two_factor_disable", userID, "")
	return nil
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Username:    strings.ToLower(strings.TrimSpace(input.Username)),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    input.Password,
		Role:        input.Role,
	}
}

func validateUserInput(input UserInput, passwordRequired bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Username == "" {
		vErr.add("username", "username is required")
	} else if strings.ContainsAny(input.Username, " \t") {
		vErr.add("username", "username must not contain whitespace")
	}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if passwordRequired {
		if len(input.Password) < 8 {
			vErr.add("password", "password must be at least 8 characters")
		}
	}

	if !input.Role.Valid() {
		vErr.add("role", "role must be admin, editor, or viewer")
	}

	return vErr
}
