package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pretorsport/storefront/core"
)

// FakeAuthAPI is a test-only fake implementing core.AuthAPI.
// Each operation returns its canned result and exposes error fields for
// behavior injection; call counters record how often the backend was hit.
type FakeAuthAPI struct {
	mu sync.Mutex

	loginResult   *core.AuthResult
	refreshResult *core.AuthResult
	user          *core.User

	loginErr    error
	registerErr error
	refreshErr  error
	logoutErr   error
	userErr     error

	loginCalls   int
	refreshCalls int
	logoutCalls  int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	user := &core.User{
		ID:          1,
		Email:       "alice@example.com",
		Name:        "Alice",
		Surname:     "Doe",
		DisplayName: "Alice Doe",
		Role:        core.RoleClient,
	}
	tokens := core.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		IssuedAt:     time.Now(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	return &FakeAuthAPI{
		loginResult:   &core.AuthResult{User: user, Tokens: tokens},
		refreshResult: &core.AuthResult{User: user, Tokens: tokens},
		user:          user,
	}
}

func (f *FakeAuthAPI) Login(ctx context.Context, email, password string) (*core.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *FakeAuthAPI) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.loginResult, nil
}

func (f *FakeAuthAPI) Refresh(ctx context.Context, refreshToken string) (*core.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResult, nil
}

func (f *FakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *FakeAuthAPI) CurrentUser(ctx context.Context) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *FakeAuthAPI) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// FakeCartAPI is a test-only fake implementing core.CartAPI.
// Mutations apply to an in-memory server cart so tests can observe the
// authoritative copy the service is expected to adopt.
type FakeCartAPI struct {
	mu sync.Mutex

	cart *core.Cart

	getErr      error
	addErr      error
	updateErr   error
	removeErr   error
	clearErr    error
	couponErr   error
	checkoutErr error

	getCalls      int
	checkoutCalls int
}

func NewFakeCartAPI() *FakeCartAPI {
	return &FakeCartAPI{cart: core.NewEmptyCart(time.Now())}
}

func (f *FakeCartAPI) GetCart(ctx context.Context) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) AddItem(ctx context.Context, productID int64, quantity int, variant *core.Variant) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	price := decimal.RequireFromString("10.00")
	f.cart.Items = append(f.cart.Items, core.CartItem{
		ID:        "srv_" + strconv.Itoa(len(f.cart.Items)+1),
		Product:   core.Product{ID: productID, Name: "server product", Price: price, Stock: 99},
		Quantity:  quantity,
		UnitPrice: price,
		Variant:   variant,
		AddedAt:   time.Now(),
	})
	f.cart.Recompute(time.Now())
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) UpdateItem(ctx context.Context, itemID string, quantity int) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if item := f.cart.ItemByID(itemID); item != nil {
		item.Quantity = quantity
	}
	f.cart.Recompute(time.Now())
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) RemoveItem(ctx context.Context, itemID string) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	kept := f.cart.Items[:0]
	for _, item := range f.cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	f.cart.Items = kept
	f.cart.Recompute(time.Now())
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) ClearCart(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cart = core.NewEmptyCart(time.Now())
	return nil
}

func (f *FakeCartAPI) ApplyCoupon(ctx context.Context, code string) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.couponErr != nil {
		return nil, f.couponErr
	}
	f.cart.Coupon = &core.Coupon{Code: code, Discount: decimal.RequireFromString("5.00"), Kind: core.CouponFixedAmount}
	f.cart.Discount = f.cart.Coupon.Discount
	f.cart.Recompute(time.Now())
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) RemoveCoupon(ctx context.Context) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.couponErr != nil {
		return nil, f.couponErr
	}
	f.cart.Coupon = nil
	f.cart.Discount = decimal.Zero
	f.cart.Recompute(time.Now())
	return f.cart.Clone(), nil
}

func (f *FakeCartAPI) Checkout(ctx context.Context, req core.CheckoutRequest) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutCalls++
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	confirmed := f.cart.Clone()
	confirmed.ID = "order-1"
	f.cart = core.NewEmptyCart(time.Now())
	return confirmed, nil
}
