package core

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("could not sign test token: %v", err)
	}
	return token
}

// Requirement: token validity is decided from the expiry claim alone and
// anything that cannot be decoded is treated as expired.
func TestIsTokenValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name: "future expiry is valid",
			token: func(t *testing.T) string {
				return signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
			},
			want: true,
		},
		{
			name: "past expiry is invalid",
			token: func(t *testing.T) string {
				return signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
			},
			want: false,
		},
		{
			name: "missing expiry claim fails closed",
			token: func(t *testing.T) string {
				return signedToken(t, jwt.MapClaims{"sub": "1"})
			},
			want: false,
		},
		{
			name:  "empty token is invalid",
			token: func(t *testing.T) string { return "" },
			want:  false,
		},
		{
			name:  "garbage token fails closed",
			token: func(t *testing.T) string { return "not.a.jwt" },
			want:  false,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := IsTokenValid(test.token(t), now); got != test.want {
				t.Fatalf("IsTokenValid() = %v, want %v", got, test.want)
			}
		})
	}
}

// Requirement: a token pair is usable only while its access token is
// unexpired, and Empty reflects the absence of an access token.
func TestTokenPair_Valid(t *testing.T) {
	now := time.Now()

	live := TokenPair{AccessToken: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})}
	if !live.Valid(now) {
		t.Error("pair with unexpired access token should be valid")
	}
	if live.Empty() {
		t.Error("pair with access token should not be empty")
	}

	stale := TokenPair{AccessToken: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})}
	if stale.Valid(now) {
		t.Error("pair with expired access token should be invalid")
	}

	var none TokenPair
	if none.Valid(now) {
		t.Error("empty pair should be invalid")
	}
	if !none.Empty() {
		t.Error("zero pair should be empty")
	}
}
