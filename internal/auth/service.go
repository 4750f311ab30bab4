package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// PermissionResolver yields the effective permission set of a user.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, userID int64) (rbac.EffectiveSet, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	hasher      *Hasher
	tokens      *TokenManager
	revocations RevocationStore
	resolver    PermissionResolver
	logger      *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher *Hasher, tokens *TokenManager, revocations RevocationStore, resolver PermissionResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		resolver:    resolver,
		logger:      logger,
	}
}

// VerifyCredentials checks a username/password pair. Unknown users and wrong
// passwords both yield shared.ErrInvalidCredentials; store failures do not.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, shared.ErrInvalidCredentials
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		s.hasher.CompareDummy(password)
		return User{}, shared.ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: verify credentials: %w", err)
	}
	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("stored password hash unusable", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return User{}, shared.ErrInvalidCredentials
	}
	if !ok {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs a session token for user.
func (s *Service) IssueToken(user User) (string, Claims, error) {
	return s.tokens.Issue(user.ID, user.RoleID, user.RoleName)
}

// VerifyToken validates the token and resolves its user. A revoked token or
// a deleted user yields shared.ErrTokenInvalid.
func (s *Service) VerifyToken(ctx context.Context, token string) (User, Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return User{}, Claims{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return User{}, Claims{}, err
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return User{}, Claims{}, fmt.Errorf("auth: verify token: %w: %w", shared.ErrInternal, err)
		}
		if revoked {
			return User{}, Claims{}, fmt.Errorf("auth: token revoked: %w", shared.ErrTokenInvalid)
		}
	}
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return User{}, Claims{}, fmt.Errorf("auth: token subject %d gone: %w", userID, shared.ErrTokenInvalid)
	}
	if err != nil {
		return User{}, Claims{}, fmt.Errorf("auth: verify token: %w", err)
	}
	return user, claims, nil
}

// Login verifies credentials, issues a token and returns the profile with
// effective permissions.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}
	token, claims, err := s.IssueToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	set, err := s.resolver.ResolvePermissions(ctx, user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: login permissions: %w", err)
	}
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("role", user.RoleName))
	return LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      newProfile(user, set),
	}, nil
}

// Logout revokes the token identified by the principal.
func (s *Service) Logout(ctx context.Context, p shared.Principal) error {
	if s.revocations == nil || p.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return fmt.Errorf("auth: logout: %w: %w", shared.ErrInternal, err)
	}
	s.logger.Info("user logged out", slog.Int64("user_id", p.UserID))
	return nil
}

// Profile returns the user with effective permissions. set may be nil, in
// which case it is resolved.
func (s *Service) Profile(ctx context.Context, userID int64, set rbac.EffectiveSet) (Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: profile: %w", err)
	}
	if set == nil {
		if set, err = s.resolver.ResolvePermissions(ctx, userID); err != nil {
			return Profile{}, fmt.Errorf("auth: profile permissions: %w", err)
		}
	}
	return newProfile(user, set), nil
}

// Principal converts a verified user and its claims into a request principal.
func Principal(user User, claims Claims) shared.Principal {
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return shared.Principal{
		UserID:    user.ID,
		RoleID:    user.RoleID,
		RoleName:  user.RoleName,
		TokenID:   claims.ID,
		ExpiresAt: exp,
	}
}
