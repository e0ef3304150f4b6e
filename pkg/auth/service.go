package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/sanitizer"
	"github.com/dmitrymomot/todoapi/pkg/validator"
)

const (
	minPasswordBytes = 8
	maxPasswordBytes = 72 // bcrypt ignores anything longer
	maxNameLength    = 100
)

// RegisterInput is the payload of a local registration.
// Avatar is either an http(s) URL or a path produced by avatar storage.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Avatar   string
}

// ProfileInput is a partial profile update. Nil fields are not changed.
type ProfileInput struct {
	Email    *string
	Password *string
	Name     *string
	Avatar   *string
}

// Service orchestrates the authentication flows.
type Service struct {
	storage  UserStorage
	tokens   TokenIssuer
	hasher   Hasher
	identity IdentityVerifier
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHasher overrides the default bcrypt hasher.
func WithHasher(h Hasher) ServiceOption {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithIdentityVerifier enables federated login.
func WithIdentityVerifier(v IdentityVerifier) ServiceOption {
	return func(s *Service) { s.identity = v }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates an authentication service.
func NewService(storage UserStorage, tokens TokenIssuer, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		tokens:  tokens,
		hasher:  NewBcryptHasher(DefaultBcryptCost),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a local account and opens a session for it.
// The password is optional; without one the account cannot use Login.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = sanitizer.Email(in.Email)
	in.Name = sanitizer.Text(in.Name)
	in.Avatar = strings.TrimSpace(in.Avatar)

	if err := validator.Apply(
		validator.Required("email", in.Email),
		validator.Email("email", in.Email),
		validator.When(in.Password != "", passwordRule(in.Password)),
		validator.MaxLen("name", in.Name, maxNameLength),
		validator.When(in.Avatar != "", avatarRule(in.Avatar)),
	); err != nil {
		return nil, err
	}

	user := &User{
		Email:  in.Email,
		Name:   in.Name,
		Avatar: in.Avatar,
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID),
		logger.Event("register"),
		logger.Component("auth"),
	)

	return s.session(user)
}

// Login authenticates with email and password. Unknown emails, accounts
// without a password and wrong passwords all fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = sanitizer.Email(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// FederatedLogin signs in with a third-party ID token, creating the account
// on first use.
func (s *Service) FederatedLogin(ctx context.Context, idToken string) (*Session, error) {
	if s.identity == nil {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrProviderNotConfigured)
	}
	ident, err := s.identity.Verify(ctx, idToken)
	if err != nil {
		return nil, federatedError(err)
	}
	return s.federatedSession(ctx, ident)
}

// FederatedLoginWithCode is FederatedLogin for the authorization code flow.
func (s *Service) FederatedLoginWithCode(ctx context.Context, code string) (*Session, error) {
	if s.identity == nil {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrProviderNotConfigured)
	}
	ident, err := s.identity.VerifyCode(ctx, code)
	if err != nil {
		return nil, federatedError(err)
	}
	return s.federatedSession(ctx, ident)
}

func (s *Service) federatedSession(ctx context.Context, ident *Identity) (*Session, error) {
	email := sanitizer.Email(ident.Email)
	if email == "" {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrUnverifiedEmail)
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := placeholderHash(s.hasher)
	if err != nil {
		return nil, err
	}
	user = &User{
		Email:        email,
		Name:         sanitizer.Text(ident.Name),
		Avatar:       ident.Picture,
		GoogleID:     ident.Subject,
		PasswordHash: hash,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrDuplicateEmail) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// A concurrent login for the same email won the insert.
		user, err = s.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return s.session(user)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID),
		logger.Event("federated_register"),
		logger.Component("auth"),
	)

	return s.session(user)
}

// GetUser returns the user with the given ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the supplied fields. The password is re-hashed only
// when a new one is given.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*User, error) {
	var upd UserUpdate
	var rules []validator.Rule

	if in.Email != nil {
		email := sanitizer.Email(*in.Email)
		upd.Email = &email
		rules = append(rules,
			validator.Required("email", email),
			validator.Email("email", email),
		)
	}
	if in.Name != nil {
		name := sanitizer.Text(*in.Name)
		upd.Name = &name
		rules = append(rules, validator.MaxLen("name", name, maxNameLength))
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		upd.Avatar = &avatar
		rules = append(rules, validator.When(avatar != "", avatarRule(avatar)))
	}
	if in.Password != nil {
		rules = append(rules, passwordRule(*in.Password))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	if upd.Empty() {
		return s.GetUser(ctx, userID)
	}

	user, err := s.storage.UpdateUser(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func federatedError(err error) error {
	if errors.Is(err, ErrFederatedAuthFailed) {
		return err
	}
	return errors.Join(ErrFederatedAuthFailed, err)
}

func passwordRule(password string) validator.Rule {
	return validator.ByteLenBetween("password", password, minPasswordBytes, maxPasswordBytes)
}

// avatarRule accepts http(s) URLs and absolute paths served by this API.
func avatarRule(avatar string) validator.Rule {
	return validator.Custom("avatar", "must be an http(s) URL or an absolute path", func() bool {
		if strings.HasPrefix(avatar, "/") && !strings.HasPrefix(avatar, "//") {
			return true
		}
		return validator.URL("avatar", avatar, "http", "https").Check()
	})
}
