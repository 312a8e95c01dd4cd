// Package rest is the adapter for the remote storefront REST API: a
// http.RoundTripper implementing the authenticated request pipeline, and
// a client exposing the auth and cart endpoint surfaces.
package rest

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pretorsport/storefront/core"
)

// Transport is the per-request policy of the pipeline: classify the URL
// against the allow-list, attach the bearer credential to protected
// requests, and on a 401 defer to the refresh coordinator and replay the
// request exactly once with the refreshed token.
//
// A second 401 after a successful refresh is returned as-is and surfaces
// as an authentication failure downstream; it never triggers another
// refresh, so an expired-token loop is impossible.
type Transport struct {
	base      http.RoundTripper
	tokens    *core.TokenStore
	refresher *core.RefreshCoordinator
	logger    *zap.Logger
}

func NewTransport(base http.RoundTripper, tokens *core.TokenStore, refresher *core.RefreshCoordinator, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{base: base, tokens: tokens, refresher: refresher, logger: logger}
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !core.RequiresToken(req.URL) {
		// Never attach a credential to an allow-listed endpoint, even
		// when one is available.
		return t.base.RoundTrip(req)
	}

	token := t.tokens.AccessToken()
	resp, err := t.base.RoundTrip(withBearer(req, token))
	if err != nil {
		return nil, err
	}

	// Only a 401 on a protected request that actually carried a token is
	// eligible for the refresh flow; with no token to renew there is
	// nothing the coordinator could do.
	if resp.StatusCode != http.StatusUnauthorized || token == "" {
		return resp, nil
	}

	drain(resp)
	t.logger.Debug("401 on protected request, deferring to refresh coordinator",
		zap.String("path", req.URL.Path))

	if err := t.refresher.Await(req.Context()); err != nil {
		return nil, err
	}

	fresh := t.tokens.AccessToken()
	if fresh == "" {
		return nil, core.ErrAuthenticationFailed
	}

	retry, err := replayable(req)
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(withBearer(retry, fresh))
}

// withBearer returns a clone of req carrying the bearer header, or the
// request unmodified when there is no token to attach.
func withBearer(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	return out
}

// replayable rebuilds the request body for the single post-refresh retry.
func replayable(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot replay request with one-shot body: %w", core.ErrAuthenticationFailed)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	out.Body = body
	return out, nil
}

// drain discards an abandoned response so the underlying connection can
// be reused.
func drain(resp *http.Response) {
	if resp.Body != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}
}
