package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
	"github.com/flappyv/platform/internal/pkg/token"
)

// AuthService implements registration, login and credential checks.
type AuthService struct {
	repo        ports.AuthRepository
	issuer      *token.Issuer
	auth        *token.Authenticator
	tokenTTL    time.Duration
	rememberTTL time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewAuthService(
	repo ports.AuthRepository,
	issuer *token.Issuer,
	auth *token.Authenticator,
	tokenTTL, rememberTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		repo:        repo,
		issuer:      issuer,
		auth:        auth,
		tokenTTL:    tokenTTL,
		rememberTTL: rememberTTL,
		log:         log,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return s.session(created, s.tokenTTL)
}

// Login verifies the password and issues a credential. rememberMe selects
// the long-lived variant. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	ttl := s.tokenTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	return s.session(user, ttl)
}

// Check authenticates raw against this process and resolves the principal
// it names. A credential for a deleted user is unauthenticated.
func (s *AuthService) Check(ctx context.Context, rawToken string) (*domain.User, error) {
	claims, err := s.auth.Authenticate(rawToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID())
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: unknown principal", domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) session(user *domain.User, ttl time.Duration) (*ports.Session, error) {
	raw, expiresAt, err := s.issuer.Issue(token.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Admin:  user.IsAdmin,
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return &ports.Session{
		Token:     raw,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(ttl / time.Second),
		User:      user,
	}, nil
}

// SetAdmin grants or revokes the admin flag. It is an operator action and
// takes effect on the principal's next login.
func (s *AuthService) SetAdmin(ctx context.Context, email string, admin bool) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := s.repo.SetAdmin(ctx, email, admin); err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	s.log.Info().Str("email", email).Bool("admin", admin).Msg("admin flag changed")
	return nil
}
