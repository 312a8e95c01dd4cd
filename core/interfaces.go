package core

import "context"

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORT (client-local durable storage)
// ============================================

// KeyValueStore is the client-local durable storage the tokens and the
// cart cache live in, keyed by fixed string keys with JSON values.
//
// Get must treat a corrupt or unreadable value as absence, never as a
// fatal error; Set must be durable before it returns.
type KeyValueStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
}

// ============================================
// BACKEND PORTS (remote REST API)
// ============================================

// AuthAPI is the authentication surface of the backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
}

// CartAPI is the cart surface of the backend. Every call returns the full
// authoritative Cart (never a partial patch), which the engine uses to
// replace local state wholesale.
type CartAPI interface {
	GetCart(ctx context.Context) (*Cart, error)
	AddItem(ctx context.Context, productID int64, quantity int, variant *Variant) (*Cart, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*Cart, error)
	ClearCart(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) (*Cart, error)
	RemoveCoupon(ctx context.Context) (*Cart, error)
	Checkout(ctx context.Context, req CheckoutRequest) (*Cart, error)
}
