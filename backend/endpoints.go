package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// ListProducts returns the storefront product list. The backend may answer
// with a bare array or a paginated envelope.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	body, err := c.get(ctx, PathProducts, nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[Product](body, ResultsField)
}

// ListShops returns a page of shops (page starts at 1)
func (c *Client) ListShops(ctx context.Context, page int) (Page[Shop], error) {
	body, err := c.get(ctx, PathShops, pageQuery(page))
	if err != nil {
		return Page[Shop]{}, err
	}
	return DecodePage[Shop](body)
}

func (c *Client) GetShop(ctx context.Context, id int64) (Shop, error) {
	var s Shop
	err := c.getJSON(ctx, fmt.Sprintf(PathShop, id), nil, &s)
	return s, err
}

func (c *Client) ListShopProducts(ctx context.Context, shopID int64) ([]Product, error) {
	body, err := c.get(ctx, fmt.Sprintf(PathShopProducts, shopID), nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[Product](body, ResultsField)
}

// RequestOTP asks the backend to send a one-time code to phone.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	return c.postJSON(ctx, PathOTPSend, map[string]string{"phone": phone}, nil, nil)
}

// VerifyOTP exchanges a one-time code for tokens.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (Tokens, error) {
	var t Tokens
	err := c.postJSON(ctx, PathOTPVerify, map[string]string{"phone": phone, "otp": code}, &t, nil)
	if err == nil && t.Access == "" {
		err = fmt.Errorf("POST %s: response has no access token", PathOTPVerify)
	}
	return t, err
}

// Login exchanges a username (phone or email) and password for tokens.
func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	var t Tokens
	err := c.postJSON(ctx, PathLogin, map[string]string{"username": username, "password": password}, &t, nil)
	if err == nil && t.Access == "" {
		err = fmt.Errorf("POST %s: response has no access token", PathLogin)
	}
	return t, err
}

// PlaceOrder submits an order. Each call carries a fresh Idempotency-Key so
// a retried HTTP request cannot create a second order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := c.requireToken(); err != nil {
		return Order{}, err
	}
	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	h := http.Header{}
	h.Set("Idempotency-Key", uuid.NewString())

	var o Order
	err := c.postJSON(ctx, PathOrders, req, &o, h)
	return o, err
}

func (c *Client) ListOrders(ctx context.Context, page int) (Page[Order], error) {
	if err := c.requireToken(); err != nil {
		return Page[Order]{}, err
	}
	body, err := c.get(ctx, PathOrders, pageQuery(page))
	if err != nil {
		return Page[Order]{}, err
	}
	return DecodePage[Order](body)
}

// ListTransactions returns a page of the signed-in user's wallet, trade or
// currency ledger.
func (c *Client) ListTransactions(ctx context.Context, kind TransactionKind, page int) (Page[Transaction], error) {
	if err := c.requireToken(); err != nil {
		return Page[Transaction]{}, err
	}
	p, ok := transactionPaths[kind]
	if !ok {
		return Page[Transaction]{}, fmt.Errorf("unknown transaction kind %q", kind)
	}
	body, err := c.get(ctx, p, pageQuery(page))
	if err != nil {
		return Page[Transaction]{}, err
	}
	return DecodePage[Transaction](body)
}

// Dashboard returns the shop owner's summary.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	if err := c.requireToken(); err != nil {
		return Dashboard{}, err
	}
	var d Dashboard
	err := c.getJSON(ctx, PathDashboard, nil, &d)
	return d, err
}

func pageQuery(page int) map[string]string {
	if page <= 1 {
		return nil
	}
	return map[string]string{"page": strconv.Itoa(page)}
}
