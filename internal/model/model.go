// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Account is a registered identity. Accounts are never mutated or deleted after creation.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"` // normalized: trimmed + lowercase
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is a denormalized snapshot of the authenticated identity.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionOf returns the session snapshot for an account.
func SessionOf(a Account) Session {
	return Session{Name: a.Name, Email: a.Email}
}

// Category tags a product.
type Category string

// Known categories. CategoryAll is the "no filtering" sentinel.
const (
	CategoryAll      Category = "todos"
	CategoryShirts   Category = "camisetas"
	CategorySneakers Category = "tenis"
	CategoryPants    Category = "calcas"
)

// CategoryInfo pairs a category key with its display label.
type CategoryInfo struct {
	Key   Category `json:"key"`
	Label string   `json:"label"`
}

// Product is a catalog entry. Stock is the only mutable field.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Category  Category        `json:"category"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image"`
}

// CartLine is a product with a quantity in [1, Product.Stock].
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns quantity * unit price without rounding.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockDecrement is a single line of an inventory batch.
type StockDecrement struct {
	ProductID int64
	Amount    int
}

// Receipt is returned by a successful checkout.
type Receipt struct {
	ID        uuid.UUID       `json:"id"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Capability is the access level of the caller: Guest or Authenticated.
type Capability interface {
	capability()
}

// Guest may browse but not mutate the cart.
type Guest struct{}

// Authenticated carries the current session and may mutate the cart.
type Authenticated struct {
	Session Session
}

func (Guest) capability()         {}
func (Authenticated) capability() {}
