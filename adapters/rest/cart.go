package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pretorsport/storefront/core"
)

// Ensure Client implements the cart port.
var _ core.CartAPI = (*Client)(nil)

type addItemRequest struct {
	ProductID int64         `json:"productId"`
	Quantity  int           `json:"quantity"`
	Variant   *core.Variant `json:"variant,omitempty"`
}

type updateItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

func (c *Client) GetCart(ctx context.Context) (*core.Cart, error) {
	var cart core.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddItem(ctx context.Context, productID int64, quantity int, variant *core.Variant) (*core.Cart, error) {
	var cart core.Cart
	req := addItemRequest{ProductID: productID, Quantity: quantity, Variant: variant}
	if err := c.do(ctx, http.MethodPost, "/cart/add", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) (*core.Cart, error) {
	var cart core.Cart
	req := updateItemRequest{ItemID: itemID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/cart/update", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (*core.Cart, error) {
	var cart core.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(itemID), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) ApplyCoupon(ctx context.Context, code string) (*core.Cart, error) {
	var cart core.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/coupon", couponRequest{Code: code}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCoupon(ctx context.Context) (*core.Cart, error) {
	var cart core.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/coupon", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) Checkout(ctx context.Context, req core.CheckoutRequest) (*core.Cart, error) {
	var cart core.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
