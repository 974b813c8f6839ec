package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/config"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/email"
	"github.com/fundvault/dataroom-service/internal/ratelimit"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// AuthService coordinates admin login, magic links and API tokens.
type AuthService struct {
	teams       repository.TeamRepository
	users       repository.UserRepository
	tokens      repository.APITokenRepository
	magicLink   *auth.MagicLink
	validator   *auth.TokenValidator
	authLimiter *ratelimit.Limiter
	mailer      email.Mailer
	logger      *zap.Logger
	tokenPrefix string
	tokenTTL    time.Duration
	bcryptCost  int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	TeamRepo    repository.TeamRepository
	UserRepo    repository.UserRepository
	TokenRepo   repository.APITokenRepository
	MagicLink   *auth.MagicLink
	AuthLimiter *ratelimit.Limiter
	Mailer      email.Mailer
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		teams:       deps.TeamRepo,
		users:       deps.UserRepo,
		tokens:      deps.TokenRepo,
		magicLink:   deps.MagicLink,
		validator:   auth.NewTokenValidator(deps.TokenRepo, deps.Logger),
		authLimiter: deps.AuthLimiter,
		mailer:      deps.Mailer,
		logger:      deps.Logger,
		tokenPrefix: cfg.Auth.APITokenPrefix,
		tokenTTL:    time.Duration(cfg.Auth.AccessTokenTTLMinutes) * time.Minute,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// defaultScopes are granted to tokens minted through a login flow.
var defaultScopes = []domain.Scope{
	domain.ScopeDataroomsRead,
	domain.ScopeDataroomsWrite,
	domain.ScopeInvestorsRead,
	domain.ScopeInvestorsWrite,
	domain.ScopeBilling,
}

// RegisterTeam creates a team with its first admin user and mints a
// bearer token for that user.
func (s *AuthService) RegisterTeam(ctx context.Context, teamName, slug, adminName, adminEmail, password, callerIP string) (*domain.User, string, *domain.APIToken, error) {
	if res := s.authLimiter.Check(ctx, callerIP); !res.Success {
		return nil, "", nil, apperrors.NewTooManyRequests("too many registration attempts")
	}

	if _, err := s.teams.GetBySlug(ctx, slug); err == nil {
		return nil, "", nil, apperrors.NewConflict("team slug already taken", map[string]any{"slug": slug})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", nil, err
	}

	team := &domain.Team{Name: teamName, Slug: slug, IsActive: true}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, "", nil, err
	}

	user := &domain.User{
		TeamID:       team.ID,
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", nil, err
	}

	secret, token, err := s.issueToken(ctx, user, "registration", defaultScopes)
	if err != nil {
		return nil, "", nil, err
	}
	return user, secret, token, nil
}

// LoginAdmin authenticates by password and mints a bearer token. The
// raw secret is returned exactly once and never stored.
func (s *AuthService) LoginAdmin(ctx context.Context, emailAddr, password, callerIP string) (*domain.User, string, *domain.APIToken, error) {
	if res := s.authLimiter.Check(ctx, callerIP); !res.Success {
		return nil, "", nil, apperrors.NewTooManyRequests("too many login attempts")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", nil, apperrors.NewForbidden("user suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
	}

	secret, token, err := s.issueToken(ctx, user, "login", defaultScopes)
	if err != nil {
		return nil, "", nil, err
	}
	return user, secret, token, nil
}

// RequestMagicLink issues a passwordless sign-in link and emails it.
// Unknown emails are not reported to the caller; the handler responds
// identically either way.
func (s *AuthService) RequestMagicLink(ctx context.Context, emailAddr, callbackURL, callerIP string) error {
	if res := s.authLimiter.Check(ctx, callerIP); !res.Success {
		return apperrors.NewTooManyRequests("too many magic link requests")
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("magic link requested for unknown email")
			return nil
		}
		return err
	}

	link, err := s.magicLink.Issue(ctx, emailAddr, callbackURL)
	if err != nil {
		return err
	}

	if s.mailer == nil {
		s.logger.Warn("mailer not configured; magic link not delivered")
		return nil
	}
	subject, html, text := email.MagicLinkMessage(link)
	return s.mailer.Send(emailAddr, subject, html, text)
}

// VerifyMagicLink consumes a presented token and mints a bearer token
// for the bound user.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token, emailAddr string) (*domain.User, string, *domain.APIToken, error) {
	record, ok := s.magicLink.Verify(ctx, token, emailAddr)
	if !ok {
		return nil, "", nil, apperrors.NewUnauthorized("invalid or expired link")
	}

	user, err := s.users.GetByEmail(ctx, record.Email)
	if err != nil {
		return nil, "", nil, err
	}

	secret, apiToken, err := s.issueToken(ctx, user, "magic-link", defaultScopes)
	if err != nil {
		return nil, "", nil, err
	}
	return user, secret, apiToken, nil
}

// CreateAPIToken mints a named token with an explicit scope set.
func (s *AuthService) CreateAPIToken(ctx context.Context, user *domain.User, name string, scopes []domain.Scope, expiresAt *time.Time) (string, *domain.APIToken, error) {
	secret, hash, err := auth.GenerateSecret(s.tokenPrefix)
	if err != nil {
		return "", nil, err
	}
	token := &domain.APIToken{
		TeamID:    user.TeamID,
		UserID:    user.ID,
		Name:      name,
		TokenHash: hash,
		Prefix:    s.tokenPrefix,
		Scopes:    scopes,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", nil, err
	}
	return secret, token, nil
}

// ListAPITokens lists the team's tokens without their secrets.
func (s *AuthService) ListAPITokens(ctx context.Context, teamID string) ([]domain.APIToken, error) {
	return s.tokens.ListByTeam(ctx, teamID)
}

// Validator exposes the token validator for middleware wiring.
func (s *AuthService) Validator() *auth.TokenValidator {
	return s.validator
}

func (s *AuthService) issueToken(ctx context.Context, user *domain.User, name string, scopes []domain.Scope) (string, *domain.APIToken, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	return s.CreateAPIToken(ctx, user, name, scopes, &expiresAt)
}
