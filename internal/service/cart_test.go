package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/shopspring/decimal"
)

var ana = model.Authenticated{Session: model.Session{Name: "Ana", Email: "ana@x.com"}}

func newTestCart(t *testing.T) (*Cart, *Inventory) {
	t.Helper()
	inv := NewInventory(context.Background(), testCatalog(), newFakeStore(), nil)
	return NewCart(inv, nil), inv
}

func TestCart_StockCeilingScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, inv := newTestCart(t)

	for i := 0; i < 3; i++ {
		if err := c.AddItem(ana, 1); err != nil {
			t.Fatalf("AddItem #%d: %v", i, err)
		}
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("want one line of 2, got %+v", lines)
	}
	if !c.TotalPrice().Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("want 20.00, got %s", c.TotalPrice())
	}

	r, err := c.Checkout(ctx, ana)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if r.ItemCount != 2 || r.Total.StringFixed(2) != "20.00" || len(r.Lines) != 1 {
		t.Fatalf("bad receipt: %+v", r)
	}
	if p, _ := inv.Product(1); p.Stock != 0 {
		t.Fatalf("want stock 0, got %d", p.Stock)
	}
	if !c.IsEmpty() || c.TotalItemCount() != 0 {
		t.Fatalf("cart must be empty after checkout")
	}
}

func TestCart_GuestCannotMutate(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)
	guest := model.Guest{}

	if err := c.AddItem(guest, 1); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("AddItem: want ErrForbidden, got %v", err)
	}
	if err := c.RemoveItem(guest, 1); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("RemoveItem: want ErrForbidden, got %v", err)
	}
	if err := c.SetQuantity(guest, 1, 1); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("SetQuantity: want ErrForbidden, got %v", err)
	}
	if _, err := c.Checkout(context.Background(), guest); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("Checkout: want ErrForbidden, got %v", err)
	}
	if err := c.AddItem(nil, 1); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("nil capability: want ErrForbidden, got %v", err)
	}
}

func TestCart_AddItem_OutOfStockAndUnknown(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)

	if err := c.AddItem(ana, 3); err != nil {
		t.Fatalf("out of stock must be a silent no-op, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("out of stock product must not be added")
	}
	if err := c.AddItem(ana, 404); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCart_RemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)
	_ = c.AddItem(ana, 1)
	_ = c.AddItem(ana, 2)

	_ = c.RemoveItem(ana, 1)
	once := c.Lines()
	_ = c.RemoveItem(ana, 1)
	twice := c.Lines()

	if len(once) != 1 || len(twice) != 1 ||
		once[0].Product.ID != twice[0].Product.ID || once[0].Quantity != twice[0].Quantity {
		t.Fatalf("remove not idempotent: %+v vs %+v", once, twice)
	}
	if err := c.RemoveItem(ana, 404); err != nil {
		t.Fatalf("removing absent line: %v", err)
	}
}

func TestCart_SetQuantity(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)
	_ = c.AddItem(ana, 2)
	_ = c.AddItem(ana, 1)

	if err := c.SetQuantity(ana, 2, 5); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if err := c.SetQuantity(ana, 2, 6); !errors.Is(err, errs.ErrExceedsStock) {
		t.Fatalf("want ErrExceedsStock, got %v", err)
	}
	if got := c.Lines()[0]; got.Product.ID != 2 || got.Quantity != 5 {
		t.Fatalf("rejected update must not change the line: %+v", got)
	}

	if err := c.SetQuantity(ana, 2, 0); err != nil {
		t.Fatalf("SetQuantity 0: %v", err)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Product.ID != 1 {
		t.Fatalf("zero quantity must remove the line: %+v", lines)
	}
	if err := c.SetQuantity(ana, 1, -4); err != nil || !c.IsEmpty() {
		t.Fatalf("negative quantity must remove the line: %v", err)
	}

	if err := c.SetQuantity(ana, 2, 1); err != nil || !c.IsEmpty() {
		t.Fatalf("setting an absent line must be a no-op: %v", err)
	}
}

func TestCart_InsertionOrderAndTotals(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)
	_ = c.AddItem(ana, 2)
	_ = c.AddItem(ana, 1)
	_ = c.AddItem(ana, 2)
	_ = c.AddItem(ana, 2)

	lines := c.Lines()
	if lines[0].Product.ID != 2 || lines[1].Product.ID != 1 {
		t.Fatalf("insertion order lost: %+v", lines)
	}
	if c.TotalItemCount() != 4 {
		t.Fatalf("want 4 items, got %d", c.TotalItemCount())
	}
	// 3 * 0.10 + 10.00 accumulates exactly
	if !c.TotalPrice().Equal(decimal.RequireFromString("10.30")) {
		t.Fatalf("want 10.30, got %s", c.TotalPrice())
	}
}

func TestCart_CheckoutIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, inv := newTestCart(t)

	_ = c.AddItem(ana, 2)
	_ = c.AddItem(ana, 2)
	_ = c.AddItem(ana, 1)
	_ = c.AddItem(ana, 1)

	// external stock change below the line quantity
	if err := inv.DecrementStock(ctx, 1, 1); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	before := c.Lines()

	if _, err := c.Checkout(ctx, ana); !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	after := c.Lines()
	if len(after) != len(before) || after[0].Quantity != 2 || after[1].Quantity != 2 {
		t.Fatalf("cart changed: %+v", after)
	}
	p1, _ := inv.Product(1)
	p2, _ := inv.Product(2)
	if p1.Stock != 1 || p2.Stock != 5 {
		t.Fatalf("stock partially decremented: %d %d", p1.Stock, p2.Stock)
	}
}

func TestCart_CheckoutEmpty(t *testing.T) {
	t.Parallel()
	c, _ := newTestCart(t)
	if _, err := c.Checkout(context.Background(), ana); !errors.Is(err, errs.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
}

func TestCart_QuantityInvariantUnderRandomOps(t *testing.T) {
	t.Parallel()
	c, inv := newTestCart(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 2000; i++ {
		id := int64(rng.IntN(3) + 1)
		switch rng.IntN(3) {
		case 0:
			_ = c.AddItem(ana, id)
		case 1:
			_ = c.SetQuantity(ana, id, rng.IntN(9)-2)
		case 2:
			_ = c.RemoveItem(ana, id)
		}
		for _, l := range c.Lines() {
			p, _ := inv.Product(l.Product.ID)
			if l.Quantity < 1 || l.Quantity > p.Stock {
				t.Fatalf("step %d: quantity %d out of [1,%d]", i, l.Quantity, p.Stock)
			}
		}
	}
}
