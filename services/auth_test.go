package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pretorsport/storefront/adapters/localstore"
	"github.com/pretorsport/storefront/core"
)

func newAuthFixture(api core.AuthAPI) (*AuthService, *core.TokenStore, *core.SessionState) {
	tokens := core.NewTokenStore(localstore.NewMemory(), nil)
	session := core.NewSessionState()
	service := NewAuthService(api, tokens, session, nil, nil)
	return service, tokens, session
}

func expiringToken(t *testing.T, lifetime time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": time.Now().Add(lifetime).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("could not sign test token: %v", err)
	}
	return token
}

// Requirement: a successful login persists the token pair and the user,
// and establishes the session; a 401 maps to invalid credentials and
// leaves everything untouched.
func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name     string
		loginErr error
		wantErr  error
		wantAuth bool
	}{
		{
			name:     "valid credentials establish session",
			wantAuth: true,
		},
		{
			name:     "401 maps to invalid credentials",
			loginErr: &core.APIError{StatusCode: 401, Message: "bad credentials"},
			wantErr:  core.ErrInvalidCredentials,
		},
		{
			name:     "server failure passes through unmapped",
			loginErr: &core.APIError{StatusCode: 500},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			api := NewFakeAuthAPI()
			api.loginErr = test.loginErr
			service, tokens, session := newAuthFixture(api)

			// Act
			user, err := service.Login(context.Background(), "alice@example.com", "secret")

			// Assert
			switch {
			case test.loginErr == nil:
				if err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				if user == nil || user.Email != "alice@example.com" {
					t.Errorf("Login() user = %+v", user)
				}
				if tokens.AccessToken() != "access-token" {
					t.Error("token pair should be persisted after login")
				}
			case test.wantErr != nil:
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, test.wantErr)
				}
			default:
				// A 500 must stay a plain API error, not an auth sentinel.
				if err == nil || errors.Is(err, core.ErrInvalidCredentials) {
					t.Fatalf("Login() error = %v, want an unmapped server error", err)
				}
			}

			if got := session.Current().IsAuthenticated; got != test.wantAuth {
				t.Errorf("IsAuthenticated = %v, want %v", got, test.wantAuth)
			}
		})
	}
}

// Requirement: registration signs the user in on success; a 409 maps to
// the already-registered sentinel.
func TestAuthService_Register(t *testing.T) {
	t.Run("success establishes session", func(t *testing.T) {
		api := NewFakeAuthAPI()
		service, _, session := newAuthFixture(api)

		user, err := service.Register(context.Background(), core.RegisterInput{
			Name: "Alice", Surname: "Doe", Email: "alice@example.com", Password: "secret",
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user == nil {
			t.Fatal("Register() should return the new user")
		}
		if !session.Current().IsAuthenticated {
			t.Error("registration should establish the session")
		}
	})

	t.Run("conflict maps to already registered", func(t *testing.T) {
		api := NewFakeAuthAPI()
		api.registerErr = &core.APIError{StatusCode: 409, Message: "email taken"}
		service, _, _ := newAuthFixture(api)

		_, err := service.Register(context.Background(), core.RegisterInput{Email: "alice@example.com"})
		if !errors.Is(err, core.ErrEmailAlreadyRegistered) {
			t.Fatalf("Register() error = %v, want ErrEmailAlreadyRegistered", err)
		}
	})
}

// Requirement: logout wipes local state even when the server call fails.
func TestAuthService_Logout(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
		wantErr   bool
	}{
		{name: "server logout succeeds", logoutErr: nil, wantErr: false},
		{name: "server unreachable still clears locally", logoutErr: errors.New("connection refused"), wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange: signed-in session
			api := NewFakeAuthAPI()
			service, tokens, session := newAuthFixture(api)
			if _, err := service.Login(context.Background(), "alice@example.com", "secret"); err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			api.logoutErr = test.logoutErr

			// Act
			err := service.Logout(context.Background())

			// Assert
			if (err != nil) != test.wantErr {
				t.Fatalf("Logout() error = %v, wantErr %v", err, test.wantErr)
			}
			if session.Current().IsAuthenticated {
				t.Error("session should be torn down after logout")
			}
			if !tokens.Tokens().Empty() {
				t.Error("tokens should be cleared after logout")
			}
		})
	}
}

// Requirement: startup restores the session from storage: a valid token
// authenticates immediately, an expired one gets exactly one refresh
// attempt, and failure clears storage and starts signed out.
func TestAuthService_Bootstrap(t *testing.T) {
	tests := []struct {
		name        string
		storedPair  func(t *testing.T) core.TokenPair
		refreshErr  error
		wantAuth    bool
		wantRefresh int
		wantCleared bool
	}{
		{
			name:       "no stored tokens starts signed out",
			storedPair: func(t *testing.T) core.TokenPair { return core.TokenPair{} },
			wantAuth:   false,
		},
		{
			name: "valid token authenticates without network",
			storedPair: func(t *testing.T) core.TokenPair {
				return core.TokenPair{AccessToken: expiringToken(t, time.Hour), RefreshToken: "r"}
			},
			wantAuth:    true,
			wantRefresh: 0,
		},
		{
			name: "expired token refreshes once",
			storedPair: func(t *testing.T) core.TokenPair {
				return core.TokenPair{AccessToken: expiringToken(t, -time.Minute), RefreshToken: "r"}
			},
			wantAuth:    true,
			wantRefresh: 1,
		},
		{
			name: "expired token with failing refresh clears storage",
			storedPair: func(t *testing.T) core.TokenPair {
				return core.TokenPair{AccessToken: expiringToken(t, -time.Minute), RefreshToken: "r"}
			},
			refreshErr:  &core.APIError{StatusCode: 401, Message: "refresh token revoked"},
			wantAuth:    false,
			wantRefresh: 1,
			wantCleared: true,
		},
		{
			name: "expired token without refresh token clears storage",
			storedPair: func(t *testing.T) core.TokenPair {
				return core.TokenPair{AccessToken: expiringToken(t, -time.Minute)}
			},
			wantAuth:    false,
			wantRefresh: 0,
			wantCleared: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			api := NewFakeAuthAPI()
			api.refreshErr = test.refreshErr
			service, tokens, session := newAuthFixture(api)
			pair := test.storedPair(t)
			if !pair.Empty() {
				if err := tokens.SetTokens(pair); err != nil {
					t.Fatalf("SetTokens() error = %v", err)
				}
				if err := tokens.SetUser(&core.User{ID: 1, Email: "alice@example.com"}); err != nil {
					t.Fatalf("SetUser() error = %v", err)
				}
			}

			// Act
			if err := service.Bootstrap(context.Background()); err != nil {
				t.Fatalf("Bootstrap() error = %v", err)
			}

			// Assert
			if got := session.Current().IsAuthenticated; got != test.wantAuth {
				t.Errorf("IsAuthenticated = %v, want %v", got, test.wantAuth)
			}
			if got := api.RefreshCalls(); got != test.wantRefresh {
				t.Errorf("refresh ran %d times, want %d", got, test.wantRefresh)
			}
			if test.wantCleared && !tokens.Tokens().Empty() {
				t.Error("storage should be cleared after a failed restore")
			}
		})
	}
}

// Requirement: a rejected refresh is an authentication failure that tears
// the session down; a successful one rotates the pair and re-establishes.
func TestAuthService_RefreshTokens(t *testing.T) {
	t.Run("success rotates the pair", func(t *testing.T) {
		api := NewFakeAuthAPI()
		api.refreshResult.Tokens.AccessToken = "rotated-access"
		service, tokens, session := newAuthFixture(api)
		if err := tokens.SetTokens(core.TokenPair{AccessToken: "old", RefreshToken: "r"}); err != nil {
			t.Fatalf("SetTokens() error = %v", err)
		}

		if err := service.refreshTokens(context.Background()); err != nil {
			t.Fatalf("refreshTokens() error = %v", err)
		}
		if tokens.AccessToken() != "rotated-access" {
			t.Errorf("AccessToken = %q, want rotated-access", tokens.AccessToken())
		}
		if !session.Current().IsAuthenticated {
			t.Error("session should be established after refresh")
		}
	})

	t.Run("rejection forces logout", func(t *testing.T) {
		api := NewFakeAuthAPI()
		api.refreshErr = &core.APIError{StatusCode: 401, Message: "revoked"}
		service, tokens, session := newAuthFixture(api)
		if err := tokens.SetTokens(core.TokenPair{AccessToken: "old", RefreshToken: "r"}); err != nil {
			t.Fatalf("SetTokens() error = %v", err)
		}
		session.Establish(&core.User{ID: 1})

		err := service.refreshTokens(context.Background())
		if !errors.Is(err, core.ErrAuthenticationFailed) {
			t.Fatalf("refreshTokens() error = %v, want ErrAuthenticationFailed", err)
		}
		if session.Current().IsAuthenticated {
			t.Error("session should be torn down after a rejected refresh")
		}
		if !tokens.Tokens().Empty() {
			t.Error("tokens should be cleared after a rejected refresh")
		}
	})

	t.Run("missing refresh token fails without a network call", func(t *testing.T) {
		api := NewFakeAuthAPI()
		service, _, _ := newAuthFixture(api)

		err := service.refreshTokens(context.Background())
		if !errors.Is(err, core.ErrAuthenticationFailed) {
			t.Fatalf("refreshTokens() error = %v, want ErrAuthenticationFailed", err)
		}
		if api.RefreshCalls() != 0 {
			t.Error("refresh endpoint should not be called without a refresh token")
		}
	})
}

// Requirement: role checks are computed from the published session state.
func TestAuthService_RoleChecks(t *testing.T) {
	api := NewFakeAuthAPI()
	service, _, session := newAuthFixture(api)

	if service.IsAuthenticated() || service.IsAdmin() || service.CanManageProducts() {
		t.Fatal("signed-out session should hold no capabilities")
	}

	session.Establish(&core.User{ID: 1, Role: core.RoleEmployee})
	if !service.IsEmployee() || !service.CanManageProducts() || !service.CanViewReports() {
		t.Error("employee capabilities misreported")
	}
	if service.IsAdmin() || service.IsClient() {
		t.Error("employee misclassified")
	}

	session.Establish(&core.User{ID: 2, Role: core.RoleClient})
	if service.CanManageProducts() || service.CanViewReports() {
		t.Error("client should hold no staff capabilities")
	}
}
