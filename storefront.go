// Package storefront is a client for the retail storefront REST API.
// It owns the two pieces of client state that have to stay consistent
// under concurrent requests: the authenticated session (bearer token
// attach/refresh with a single-flight guarantee) and the cart with its
// derived totals.
package storefront

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pretorsport/storefront/adapters/localstore"
	"github.com/pretorsport/storefront/adapters/rest"
	"github.com/pretorsport/storefront/core"
	"github.com/pretorsport/storefront/services"
)

// interfaces
type (
	KeyValueStore = core.KeyValueStore
	AuthAPI       = core.AuthAPI
	CartAPI       = core.CartAPI
)

// domain types
type (
	User            = core.User
	Role            = core.Role
	Product         = core.Product
	Variant         = core.Variant
	Cart            = core.Cart
	CartItem        = core.CartItem
	CartSummary     = core.CartSummary
	Coupon          = core.Coupon
	TokenPair       = core.TokenPair
	RegisterInput   = core.RegisterInput
	CheckoutRequest = core.CheckoutRequest
	SessionSnapshot = core.SessionSnapshot

	APIError        = core.APIError
	ValidationError = core.ValidationError
)

const (
	RoleClient   = core.RoleClient
	RoleEmployee = core.RoleEmployee
	RoleAdmin    = core.RoleAdmin
)

// Constructors & helpers (convenience re-exports)
var (
	NewFileStore   = localstore.NewFile
	NewMemoryStore = localstore.NewMemory
	IsTokenValid   = core.IsTokenValid
	AllowList      = core.AllowList
)

var (
	ErrInvalidCredentials     = core.ErrInvalidCredentials
	ErrAuthenticationFailed   = core.ErrAuthenticationFailed
	ErrInsufficientPrivilege  = core.ErrInsufficientPrivilege
	ErrEmailAlreadyRegistered = core.ErrEmailAlreadyRegistered
)

var (
	ErrBaseURLRequired = core.ErrBaseURLRequired
	ErrInvalidBaseURL  = core.ErrInvalidBaseURL
)

const defaultTimeout = 30 * time.Second

type Config struct {
	// BaseURL is the root of the remote storefront API,
	// e.g. "https://api.example.com".
	BaseURL string

	// Optional config
	Store      KeyValueStore // client-local durable storage; in-memory when nil
	HTTPClient *http.Client  // outbound client to wrap; a default is built when nil
	Logger     *zap.Logger   // zap.NewNop() when nil
}

// Storefront bundles the wired client: session/auth operations, the cart
// engine, and the observable session state.
type Storefront struct {
	Auth    *services.AuthService
	Cart    *services.CartService
	Session *core.SessionState
	Tokens  *core.TokenStore
	API     *rest.Client
}

func New(config Config) (*Storefront, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := config.Store
	if store == nil {
		store = localstore.NewMemory()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	tokens := core.NewTokenStore(store, logger)
	session := core.NewSessionState()
	refresher := core.NewRefreshCoordinator(logger)

	// Every outbound request flows through the authenticated pipeline.
	pipeline := &http.Client{
		Transport: rest.NewTransport(httpClient.Transport, tokens, refresher, logger),
		Timeout:   httpClient.Timeout,
	}

	api, err := rest.NewClient(config.BaseURL, pipeline, logger)
	if err != nil {
		return nil, err
	}

	auth := services.NewAuthService(api, tokens, session, refresher, logger)
	cart := services.NewCartService(api, store, logger)

	return &Storefront{
		Auth:    auth,
		Cart:    cart,
		Session: session,
		Tokens:  tokens,
		API:     api,
	}, nil
}

// Bootstrap restores the persisted session. Call it once at process
// start, before issuing requests.
func (s *Storefront) Bootstrap(ctx context.Context) error {
	return s.Auth.Bootstrap(ctx)
}
