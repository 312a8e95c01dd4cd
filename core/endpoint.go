package core

import (
	"net/url"
	"strings"
)

// allowList is the fixed set of path substrings that never require a
// bearer token: auth endpoints, public catalog reads and health checks.
// Matching is against the request's path component only; the query string
// is ignored.
var allowList = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh",
	"/auth/verify-email",
	"/auth/health",
	"/auth/roles",
	"/public/",
}

// AllowList returns a copy of the no-token-required path patterns.
func AllowList() []string {
	out := make([]string, len(allowList))
	copy(out, allowList)
	return out
}

// RequiresToken classifies a request URL: anything not matched by the
// allow-list is protected. Protected requests get the bearer header and
// are eligible for the 401-refresh-retry flow; allow-listed requests must
// never carry a token, even when one is available.
func RequiresToken(u *url.URL) bool {
	path := u.Path
	for _, pattern := range allowList {
		if strings.Contains(path, pattern) {
			return false
		}
	}
	return true
}
