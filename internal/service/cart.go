package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartEntry struct {
	productID int64
	quantity  int
}

// Cart is the in-progress order. Lines keep insertion order, one per product,
// each with quantity in [1, current stock].
type Cart struct {
	mu    sync.Mutex
	inv   *Inventory
	log   *zap.Logger
	now   func() time.Time
	lines []cartEntry
}

// NewCart constructs an empty cart validated against inv.
func NewCart(inv *Inventory, log *zap.Logger) *Cart {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cart{inv: inv, log: log, now: time.Now}
}

func requireAuthenticated(c model.Capability) error {
	if _, ok := c.(model.Authenticated); !ok {
		return errs.ErrForbidden
	}
	return nil
}

func (c *Cart) find(productID int64) int {
	for i, l := range c.lines {
		if l.productID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of a product. Out-of-stock products and lines already at
// the stock ceiling are left unchanged without error.
func (c *Cart) AddItem(who model.Capability, productID int64) error {
	if err := requireAuthenticated(who); err != nil {
		return err
	}
	p, ok := c.inv.Product(productID)
	if !ok {
		return fmt.Errorf("product %d: %w", productID, errs.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p.Stock <= 0 {
		return nil
	}
	i := c.find(productID)
	switch {
	case i < 0:
		c.lines = append(c.lines, cartEntry{productID: productID, quantity: 1})
	case c.lines[i].quantity < p.Stock:
		c.lines[i].quantity++
	default:
		c.log.Debug("stock ceiling reached", zap.Int64("product", productID), zap.Int("stock", p.Stock))
	}
	return nil
}

// RemoveItem deletes the line for productID if present.
func (c *Cart) RemoveItem(who model.Capability, productID int64) error {
	if err := requireAuthenticated(who); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
	return nil
}

func (c *Cart) remove(productID int64) {
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQuantity sets the quantity of an existing line. quantity <= 0 removes the
// line; a quantity above the product's current stock fails with errs.ErrExceedsStock.
// Setting a product that has no line is a no-op.
func (c *Cart) SetQuantity(who model.Capability, productID int64, quantity int) error {
	if err := requireAuthenticated(who); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(productID)
		return nil
	}
	i := c.find(productID)
	if i < 0 {
		return nil
	}
	p, ok := c.inv.Product(productID)
	if !ok {
		return fmt.Errorf("product %d: %w", productID, errs.ErrNotFound)
	}
	if quantity > p.Stock {
		return fmt.Errorf("product %d: want %d, have %d: %w", productID, quantity, p.Stock, errs.ErrExceedsStock)
	}
	c.lines[i].quantity = quantity
	return nil
}

// Checkout decrements stock for every line as one batch and empties the cart.
// On any failure neither the cart nor the inventory changes.
func (c *Cart) Checkout(ctx context.Context, who model.Capability) (model.Receipt, error) {
	if err := requireAuthenticated(who); err != nil {
		return model.Receipt{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return model.Receipt{}, errs.ErrEmptyCart
	}
	lines := c.snapshot()
	batch := make([]model.StockDecrement, len(c.lines))
	for i, l := range c.lines {
		batch[i] = model.StockDecrement{ProductID: l.productID, Amount: l.quantity}
	}
	if err := c.inv.DecrementBatch(ctx, batch); err != nil {
		return model.Receipt{}, fmt.Errorf("checkout: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Receipt{}, err
	}
	r := model.Receipt{
		ID:        id,
		Lines:     lines,
		ItemCount: itemCount(lines),
		Total:     total(lines),
		CreatedAt: c.now(),
	}
	c.lines = nil

	c.log.Info("checkout committed",
		zap.String("receipt", r.ID.String()),
		zap.Int("items", r.ItemCount),
		zap.String("total", r.Total.StringFixed(2)),
	)
	return r, nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// snapshot resolves lines against the current inventory. Caller holds c.mu.
func (c *Cart) snapshot() []model.CartLine {
	out := make([]model.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		p, ok := c.inv.Product(l.productID)
		if !ok {
			continue
		}
		out = append(out, model.CartLine{Product: p, Quantity: l.quantity})
	}
	return out
}

// Lines returns the cart lines in insertion order with current product state.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// TotalItemCount returns the sum of line quantities.
func (c *Cart) TotalItemCount() int {
	return itemCount(c.Lines())
}

// TotalPrice returns the exact sum of line subtotals. Round only for display.
func (c *Cart) TotalPrice() decimal.Decimal {
	return total(c.Lines())
}

func itemCount(lines []model.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func total(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
