package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pretorsport/storefront/core"
	"github.com/pretorsport/storefront/pkg/nanoid"
)

// KeyCart is the fixed local-storage key the cart cache lives under.
const KeyCart = "storefront_cart"

// CartService is the cart engine. It owns the authoritative in-memory
// cart and its derived summary, supports locally-optimistic mutation for
// offline use, and treats local state as a cache: any successful server
// round trip replaces it wholesale (server truth wins at the
// reconciliation boundary).
//
// Every local mutation recomputes the derived totals and writes the cart
// through to durable storage before the new summary is published, so a
// reload never loses state already acknowledged to the caller.
type CartService struct {
	mu     sync.Mutex
	api    core.CartAPI
	store  core.KeyValueStore
	logger *zap.Logger

	cart       *core.Cart
	reconciled bool // last state came from the server

	fetch singleflight.Group // collapses concurrent GetCart round trips

	subsMu sync.Mutex
	subs   map[int]func(core.CartSummary)
	nextID int
}

func NewCartService(api core.CartAPI, store core.KeyValueStore, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CartService{
		api:    api,
		store:  store,
		logger: logger,
		subs:   make(map[int]func(core.CartSummary)),
	}
	s.cart = s.loadFromStore()
	return s
}

// loadFromStore restores the cached cart. Corrupt data reads as no cart.
func (s *CartService) loadFromStore() *core.Cart {
	raw, ok := s.store.Get(KeyCart)
	if !ok {
		return nil
	}
	var cart core.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		s.logger.Warn("corrupt cart cache, starting empty", zap.Error(err))
		return nil
	}
	return &cart
}

// ============================================
// LOCAL (OPTIMISTIC) OPERATIONS
// ============================================

// AddLocal adds a product to the cart without a server round trip. Lines
// are merged by (product, variant) identity: an existing line has its
// quantity incremented, never duplicated. Quantities below one count as
// one. Stock is not checked here; it is the caller's advisory concern
// before calling.
func (s *CartService) AddLocal(product core.Product, quantity int, variant *core.Variant) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.cart == nil {
		s.cart = core.NewEmptyCart(now)
	}

	if item := s.cart.FindItem(product.ID, variant); item != nil {
		item.Quantity += quantity
	} else {
		id, err := nanoid.NewItemID()
		if err != nil {
			return fmt.Errorf("failed to generate item id: %w", err)
		}
		s.cart.Items = append(s.cart.Items, core.CartItem{
			ID:        id,
			Product:   product,
			Quantity:  quantity,
			UnitPrice: product.Price,
			AddedAt:   now,
			Variant:   variant,
		})
	}

	s.cart.Recompute(now)
	s.reconciled = false
	return s.persistAndPublishLocked()
}

// UpdateQuantity sets a line's quantity. Zero or negative behaves as
// RemoveItem. A quantity above the line's last-known stock figure is
// rejected with a ValidationError and the cart is left unchanged, never
// silently clamped.
func (s *CartService) UpdateQuantity(itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil
	}
	item := s.cart.ItemByID(itemID)
	if item == nil {
		return nil
	}
	if quantity > item.Product.Stock {
		return core.NewStockError(quantity, item.Product.Stock)
	}

	item.Quantity = quantity
	s.cart.Recompute(time.Now())
	s.reconciled = false
	return s.persistAndPublishLocked()
}

// RemoveItem deletes a line; removing an absent line is a no-op.
func (s *CartService) RemoveItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil
	}
	found := false
	items := s.cart.Items[:0]
	for _, it := range s.cart.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		items = append(items, it)
	}
	if !found {
		return nil
	}
	s.cart.Items = items
	s.cart.Recompute(time.Now())
	s.reconciled = false
	return s.persistAndPublishLocked()
}

// Clear empties the cart locally and drops the durable cache.
func (s *CartService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *CartService) clearLocked() error {
	s.cart = nil
	s.reconciled = false
	if err := s.store.Delete(KeyCart); err != nil {
		return fmt.Errorf("failed to clear cart cache: %w", err)
	}
	s.publish()
	return nil
}

// ============================================
// SERVER-BACKED OPERATIONS
// ============================================
//
// Each of these leaves local state untouched on failure and, on success,
// replaces it with the server's authoritative cart.

// GetCart fetches the server cart and reconciles local state to it.
// Concurrent calls collapse into a single round trip.
func (s *CartService) GetCart(ctx context.Context) (*core.Cart, error) {
	v, err, _ := s.fetch.Do(KeyCart, func() (any, error) {
		cart, err := s.api.GetCart(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.replaceFromServer(cart); err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Cart).Clone(), nil
}

// AddToCart adds an item server-side.
func (s *CartService) AddToCart(ctx context.Context, productID int64, quantity int, variant *core.Variant) (*core.Cart, error) {
	return s.roundTrip(func() (*core.Cart, error) {
		return s.api.AddItem(ctx, productID, quantity, variant)
	})
}

// UpdateCartItem changes a line's quantity server-side.
func (s *CartService) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*core.Cart, error) {
	return s.roundTrip(func() (*core.Cart, error) {
		return s.api.UpdateItem(ctx, itemID, quantity)
	})
}

// RemoveFromCart deletes a line server-side.
func (s *CartService) RemoveFromCart(ctx context.Context, itemID string) (*core.Cart, error) {
	return s.roundTrip(func() (*core.Cart, error) {
		return s.api.RemoveItem(ctx, itemID)
	})
}

// ClearCart empties the server cart, then the local one.
func (s *CartService) ClearCart(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// ApplyCoupon delegates discount pricing to the backend; the returned
// cart replaces local state, discarding any optimistic math.
func (s *CartService) ApplyCoupon(ctx context.Context, code string) (*core.Cart, error) {
	return s.roundTrip(func() (*core.Cart, error) {
		return s.api.ApplyCoupon(ctx, code)
	})
}

// RemoveCoupon drops the active coupon server-side.
func (s *CartService) RemoveCoupon(ctx context.Context) (*core.Cart, error) {
	return s.roundTrip(func() (*core.Cart, error) {
		return s.api.RemoveCoupon(ctx)
	})
}

// Checkout completes the purchase; on success the local cart is cleared.
func (s *CartService) Checkout(ctx context.Context, req core.CheckoutRequest) (*core.Cart, error) {
	result, err := s.api.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clearLocked(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CartService) roundTrip(call func() (*core.Cart, error)) (*core.Cart, error) {
	cart, err := call()
	if err != nil {
		return nil, err
	}
	if err := s.replaceFromServer(cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// replaceFromServer is the reconciliation point: the server's cart
// unconditionally overwrites local state (last-writer-wins at this
// boundary, by policy).
func (s *CartService) replaceFromServer(cart *core.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = cart.Clone()
	s.reconciled = true
	return s.persistAndPublishLocked()
}

// ============================================
// READ SIDE
// ============================================

// Current returns a copy of the cart, or nil when empty.
func (s *CartService) Current() *core.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Summary returns the derived projection of the current cart.
func (s *CartService) Summary() core.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Summary()
}

// IsEmpty reports whether the cart has no lines.
func (s *CartService) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.IsEmpty()
}

// TotalItems returns the summed quantity across lines.
func (s *CartService) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

// Reconciled reports whether the current state came from the server
// rather than optimistic local edits.
func (s *CartService) Reconciled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciled
}

// Subscribe registers a summary listener and returns its unsubscribe
// function. The listener immediately receives the current summary.
// Listeners run on the mutating goroutine while the cart is locked, so
// they must not call back into the service beyond unsubscribing.
func (s *CartService) Subscribe(fn func(core.CartSummary)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	fn(s.Summary())

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// persistAndPublishLocked serializes the cart into durable storage and
// only then publishes the new summary. Caller holds s.mu.
func (s *CartService) persistAndPublishLocked() error {
	raw, err := json.Marshal(s.cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.store.Set(KeyCart, raw); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.publish()
	return nil
}

// publish notifies summary subscribers. Caller holds s.mu (or is
// clearing under it); listeners run outside subsMu so they may
// unsubscribe from within the callback.
func (s *CartService) publish() {
	summary := s.cart.Summary()

	s.subsMu.Lock()
	listeners := make([]func(core.CartSummary), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
}
