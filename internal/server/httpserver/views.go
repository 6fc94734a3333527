package httpserver

import (
	"time"

	"github.com/and161185/storefront/internal/model"
	"github.com/shopspring/decimal"
)

// Prices leave the core as exact decimals and are rounded to cents only here.

type productView struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Price    string         `json:"price"`
	Category model.Category `json:"category"`
	Stock    int            `json:"stock"`
	Image    string         `json:"image"`
}

type lineView struct {
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal string      `json:"subtotal"`
}

type cartView struct {
	Lines     []lineView `json:"lines"`
	ItemCount int        `json:"item_count"`
	Total     string     `json:"total"`
}

type receiptView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	cartView
}

func viewProduct(p model.Product) productView {
	return productView{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.UnitPrice.StringFixed(2),
		Category: p.Category,
		Stock:    p.Stock,
		Image:    p.Image,
	}
}

func viewCart(lines []model.CartLine) cartView {
	v := cartView{Lines: make([]lineView, 0, len(lines))}
	total := decimal.Zero
	for _, l := range lines {
		sub := l.Subtotal()
		v.Lines = append(v.Lines, lineView{
			Product:  viewProduct(l.Product),
			Quantity: l.Quantity,
			Subtotal: sub.StringFixed(2),
		})
		v.ItemCount += l.Quantity
		total = total.Add(sub)
	}
	v.Total = total.StringFixed(2)
	return v
}

func viewReceipt(r model.Receipt) receiptView {
	v := receiptView{ID: r.ID.String(), CreatedAt: r.CreatedAt, cartView: viewCart(r.Lines)}
	v.ItemCount = r.ItemCount
	v.Total = r.Total.StringFixed(2)
	return v
}
