package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User represents the storefront account profile
//
// This is the "identity" - who the authenticated customer is.
// The last-known copy is persisted alongside the tokens so the UI can
// render without a network round trip at startup.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Surname       string    `json:"surname"`
	DisplayName   string    `json:"displayName"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	RegisteredAt  time.Time `json:"registeredAt"`
	LastAccessAt  time.Time `json:"lastAccessAt"`
}

// Category is the catalog category a product belongs to.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is the slice of catalog data the cart carries per line:
// enough to render the line and to run the advisory stock check.
// The full catalog surface is an external collaborator.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category *Category       `json:"category,omitempty"`
}

// Variant distinguishes otherwise-identical products (size/color/gender).
// Two cart lines with the same product and the same variant tuple are the
// same line for merge purposes.
type Variant struct {
	Size   string `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Key returns the normalized merge-key component for the variant.
// A nil variant and a zero-value variant produce the same key.
func (v *Variant) Key() string {
	if v == nil {
		return "||"
	}
	return strings.Join([]string{v.Size, v.Color, v.Gender}, "|")
}

// CartItem is one line in the cart.
//
// Invariant: LineTotal == Quantity * UnitPrice.
type CartItem struct {
	ID        string          `json:"id"` // opaque, locally generated for offline items
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	AddedAt   time.Time       `json:"addedAt"`
	Variant   *Variant        `json:"variant,omitempty"`
}

// CouponKind is how a coupon's discount is expressed server-side.
type CouponKind string

const (
	CouponPercentage  CouponKind = "PERCENTAGE"
	CouponFixedAmount CouponKind = "FIXED_AMOUNT"
)

// Coupon is the discount code attached to the cart. The discount amount
// is authoritative server-side pricing; the client only carries it.
type Coupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Kind     CouponKind      `json:"kind"`
}

// Cart is the authoritative in-memory representation of the cart.
//
// Invariant: Total == Subtotal + Shipping - Discount, recomputed after
// every mutation and never stored stale.
type Cart struct {
	ID        string          `json:"id,omitempty"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Coupon    *Coupon         `json:"coupon,omitempty"`
}

// CartSummary is the derived, read-only projection published to observers.
// It is recomputed from the item list, never independently mutated.
type CartSummary struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

// TokenPair holds the bearer credentials issued by the auth endpoints.
// It is owned exclusively by the TokenStore and replaced atomically on
// login, registration and refresh.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuthResult is what every successful auth round trip returns:
// a fresh token pair plus the server's view of the user.
type AuthResult struct {
	User   *User     `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// RegisterInput contains the data needed to register a new customer.
type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ShippingAddress is the delivery address collected at checkout.
type ShippingAddress struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// PaymentKind enumerates the accepted payment methods.
type PaymentKind string

const (
	PaymentCard     PaymentKind = "CARD"
	PaymentPayPal   PaymentKind = "PAYPAL"
	PaymentTransfer PaymentKind = "TRANSFER"
)

// ShippingKind enumerates the shipping service levels.
type ShippingKind string

const (
	ShippingStandard ShippingKind = "STANDARD"
	ShippingExpress  ShippingKind = "EXPRESS"
	ShippingPremium  ShippingKind = "PREMIUM"
)

// CheckoutRequest is the payload for POST /cart/checkout.
type CheckoutRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentKind     `json:"paymentMethod"`
	ShippingMethod  ShippingKind    `json:"shippingMethod"`
	CouponCode      string          `json:"couponCode,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}
