// Package services wires the core state machines to the backend ports:
// the auth service owns the session lifecycle and the cart service owns
// the cart engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pretorsport/storefront/core"
)

// AuthService drives the four legal session transitions. It is the only
// writer of the token store and the session state; authorization
// decisions read the session state, never raw storage.
type AuthService struct {
	api     core.AuthAPI
	tokens  *core.TokenStore
	session *core.SessionState
	logger  *zap.Logger
}

func NewAuthService(api core.AuthAPI, tokens *core.TokenStore, session *core.SessionState, refresher *core.RefreshCoordinator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{api: api, tokens: tokens, session: session, logger: logger}
	if refresher != nil {
		refresher.Bind(s.refreshTokens)
	}
	return s
}

// Login authenticates with email and password and establishes the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, error) {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, core.ErrAuthenticationFailed) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.establish(result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Register creates a new account; a successful registration signs the
// user in immediately, exactly like a login.
func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.User, error) {
	result, err := s.api.Register(ctx, input)
	if err != nil {
		var apiErr *core.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 409 {
			return nil, core.ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	if err := s.establish(result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Logout tears the session down. The server call is best effort: local
// state is wiped even when the backend cannot be reached, so the user is
// never stuck signed in.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.teardown()
	if err != nil {
		s.logger.Warn("server logout failed, session cleared locally anyway", zap.Error(err))
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me fetches the current profile from the backend and refreshes the
// persisted copy.
func (s *AuthService) Me(ctx context.Context) (*core.User, error) {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SetUser(user); err != nil {
		return nil, err
	}
	s.session.Establish(user)
	return user, nil
}

// Bootstrap restores the session from local storage at process start.
// A still-valid access token authenticates immediately; an expired one
// triggers exactly one refresh attempt using the stored refresh token.
// On failure, or with no refresh token at hand, storage is cleared and
// the session starts unauthenticated. This runs once at startup, not
// per request.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	pair := s.tokens.Tokens()
	if pair.Empty() {
		s.session.TearDown()
		return nil
	}

	if pair.Valid(time.Now()) {
		s.session.Establish(s.tokens.User())
		return nil
	}

	if pair.RefreshToken == "" {
		s.logger.Debug("stored token expired with no refresh token, clearing")
		s.teardown()
		return nil
	}

	if err := s.refreshTokens(ctx); err != nil {
		s.logger.Debug("startup refresh failed, starting unauthenticated", zap.Error(err))
		return nil
	}
	return nil
}

// refreshTokens is the single refresh operation run by the coordinator.
// Success rotates the pair and re-establishes the session; failure is
// irrecoverable and cascades to a forced logout.
func (s *AuthService) refreshTokens(ctx context.Context) error {
	refreshToken := s.tokens.RefreshToken()
	if refreshToken == "" {
		s.teardown()
		return fmt.Errorf("%w: %s", core.ErrAuthenticationFailed, core.ErrNoRefreshToken)
	}

	result, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.teardown()
		return fmt.Errorf("%w: token refresh rejected: %v", core.ErrAuthenticationFailed, err)
	}

	if err := s.establish(result); err != nil {
		s.teardown()
		return fmt.Errorf("%w: could not store refreshed tokens: %v", core.ErrAuthenticationFailed, err)
	}
	return nil
}

func (s *AuthService) establish(result *core.AuthResult) error {
	if err := s.tokens.SetTokens(result.Tokens); err != nil {
		return err
	}
	if err := s.tokens.SetUser(result.User); err != nil {
		return err
	}
	s.session.Establish(result.User)
	return nil
}

func (s *AuthService) teardown() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("failed to clear token storage", zap.Error(err))
	}
	s.session.TearDown()
}

// CurrentUser returns the session's current user, or nil.
func (s *AuthService) CurrentUser() *core.User {
	return s.session.Current().CurrentUser
}

// IsAuthenticated reports the session's published state.
func (s *AuthService) IsAuthenticated() bool {
	return s.session.Current().IsAuthenticated
}

// Role convenience checks, all computed from the session state.

func (s *AuthService) IsAdmin() bool    { return s.CurrentUser().IsAdmin() }
func (s *AuthService) IsEmployee() bool { return s.CurrentUser().IsEmployee() }
func (s *AuthService) IsClient() bool   { return s.CurrentUser().IsClient() }

func (s *AuthService) CanManageProducts() bool {
	u := s.CurrentUser()
	return u != nil && u.Role.CanManageProducts()
}

func (s *AuthService) CanViewReports() bool {
	u := s.CurrentUser()
	return u != nil && u.Role.CanViewReports()
}
