package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/repository"
	"go.uber.org/zap"
)

type stockLevel struct {
	ID    int64 `json:"id"`
	Stock int   `json:"stock"`
}

// Inventory owns the catalog and per-product stock. DecrementBatch is the only
// mutator of stock.
type Inventory struct {
	mu       sync.RWMutex
	store    repository.Store
	log      *zap.Logger
	products []model.Product // catalog order
	index    map[int64]int
}

// NewInventory builds the inventory from catalog and overlays persisted stock levels.
func NewInventory(ctx context.Context, catalog []model.Product, store repository.Store, log *zap.Logger) *Inventory {
	if log == nil {
		log = zap.NewNop()
	}
	inv := &Inventory{
		store:    store,
		log:      log,
		products: append([]model.Product(nil), catalog...),
		index:    make(map[int64]int, len(catalog)),
	}
	for i, p := range inv.products {
		inv.index[p.ID] = i
	}
	inv.load(ctx)
	return inv
}

func (inv *Inventory) load(ctx context.Context) {
	raw, err := inv.store.Get(ctx, repository.KeyStock)
	if errors.Is(err, errs.ErrNotFound) {
		return
	}
	var levels []stockLevel
	if err == nil {
		err = json.Unmarshal(raw, &levels)
	}
	if err == nil {
		for _, l := range levels {
			if l.Stock < 0 {
				err = fmt.Errorf("negative stock %d for product %d", l.Stock, l.ID)
				break
			}
		}
	}
	if err != nil {
		inv.log.Warn("discarding unreadable stock levels, using catalog stock",
			zap.String("key", repository.KeyStock),
			zap.Error(fmt.Errorf("%w: %v", errs.ErrCorruptState, err)))
		return
	}
	for _, l := range levels {
		if i, ok := inv.index[l.ID]; ok {
			inv.products[i].Stock = l.Stock
		}
	}
}

// List returns all products in catalog order.
func (inv *Inventory) List() []model.Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return append([]model.Product(nil), inv.products...)
}

// FilterByCategory lazily yields the products of category c in catalog order.
// model.CategoryAll yields everything.
func (inv *Inventory) FilterByCategory(c model.Category) iter.Seq[model.Product] {
	snapshot := inv.List()
	return func(yield func(model.Product) bool) {
		for _, p := range snapshot {
			if c != model.CategoryAll && p.Category != c {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Product returns the current state of a product.
func (inv *Inventory) Product(id int64) (model.Product, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	i, ok := inv.index[id]
	if !ok {
		return model.Product{}, false
	}
	return inv.products[i], true
}

// DecrementStock removes amount units of a single product.
func (inv *Inventory) DecrementStock(ctx context.Context, productID int64, amount int) error {
	return inv.DecrementBatch(ctx, []model.StockDecrement{{ProductID: productID, Amount: amount}})
}

// DecrementBatch applies all decrements or none. Validation rules:
// - each Amount > 0
// - each ProductID exists
// - the summed amount per product does not exceed its current stock
// Readers never observe a partially applied batch.
func (inv *Inventory) DecrementBatch(ctx context.Context, batch []model.StockDecrement) error {
	if len(batch) == 0 {
		return nil
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	want := make(map[int64]int, len(batch))
	for i, d := range batch {
		if d.Amount <= 0 {
			return fmt.Errorf("%w: decrement[%d] non-positive amount", errs.ErrValidation, i)
		}
		if _, ok := inv.index[d.ProductID]; !ok {
			return fmt.Errorf("decrement[%d] product %d: %w", i, d.ProductID, errs.ErrNotFound)
		}
		want[d.ProductID] += d.Amount
	}

	next := append([]model.Product(nil), inv.products...)
	for id, amount := range want {
		p := &next[inv.index[id]]
		if amount > p.Stock {
			return fmt.Errorf("product %d: want %d, have %d: %w", id, amount, p.Stock, errs.ErrInsufficientStock)
		}
		p.Stock -= amount
	}

	if err := inv.persist(ctx, next); err != nil {
		return fmt.Errorf("persist stock: %w", err)
	}
	inv.products = next
	return nil
}

func (inv *Inventory) persist(ctx context.Context, products []model.Product) error {
	levels := make([]stockLevel, len(products))
	for i, p := range products {
		levels[i] = stockLevel{ID: p.ID, Stock: p.Stock}
	}
	raw, err := json.Marshal(levels)
	if err != nil {
		return err
	}
	return inv.store.Set(ctx, repository.KeyStock, raw)
}
