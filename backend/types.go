package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PlaceholderImage is served when the backend has no image for a product or shop.
const PlaceholderImage = "/static/img/placeholder.png"

// Amount is a decimal money value kept as text. The backend sends decimals
// as strings ("12.50") but some endpoints emit plain numbers; both decode.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Amount(n.String())
	}
	return nil
}

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Price       Amount `json:"price"`
	Image       string `json:"image,omitempty"`
	Stock       int    `json:"stock"`
	ShopID      int64  `json:"shop,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ImageURL returns the product image or the placeholder.
func (p Product) ImageURL() string {
	if p.Image == "" {
		return PlaceholderImage
	}
	return p.Image
}

type Shop struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	OwnerID     int64  `json:"owner,omitempty"`
}

// LogoURL returns the shop logo or the placeholder.
func (s Shop) LogoURL() string {
	if s.Logo == "" {
		return PlaceholderImage
	}
	return s.Logo
}

// Tokens is the pair issued by the backend after OTP or password login.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type OrderLine struct {
	ProductID int64 `json:"product"`
	Quantity  int   `json:"quantity"`
}

type OrderRequest struct {
	ShopID        int64       `json:"shop,omitempty"`
	Items         []OrderLine `json:"items"`
	Address       string      `json:"address,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Note          string      `json:"note,omitempty"`
	PaymentMethod string      `json:"payment_method,omitempty"`
}

// Validate checks the request before it is sent to the backend.
func (r OrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("order has no items")
	}
	for i, it := range r.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("item %d: product is required", i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
	}
	return nil
}

type OrderItem struct {
	ProductID int64  `json:"product"`
	Name      string `json:"product_name,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     Amount `json:"price"`
}

type Order struct {
	ID        int64       `json:"id"`
	Status    string      `json:"status"`
	Total     Amount      `json:"total"`
	ShopID    int64       `json:"shop,omitempty"`
	Items     []OrderItem `json:"items"`
	CreatedAt string      `json:"created_at,omitempty"`
}

// TransactionKind selects one of the backend's transaction ledgers.
type TransactionKind string

const (
	TransactionWallet   TransactionKind = "wallet"
	TransactionTrade    TransactionKind = "trade"
	TransactionCurrency TransactionKind = "currency"
)

// ParseTransactionKind validates a ledger name.
func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(s)
	if _, ok := transactionPaths[k]; !ok {
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
	return k, nil
}

type Transaction struct {
	ID           int64  `json:"id"`
	Type         string `json:"transaction_type"`
	Amount       Amount `json:"amount"`
	Currency     string `json:"currency,omitempty"`
	Status       string `json:"status,omitempty"`
	Reference    string `json:"reference,omitempty"`
	BalanceAfter Amount `json:"balance_after,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Dashboard is the shop owner's summary.
type Dashboard struct {
	ShopID        int64   `json:"shop"`
	TotalOrders   int     `json:"total_orders"`
	PendingOrders int     `json:"pending_orders"`
	TotalProducts int     `json:"total_products"`
	TotalRevenue  Amount  `json:"total_revenue"`
	WalletBalance Amount  `json:"wallet_balance"`
	RecentOrders  []Order `json:"recent_orders"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}
