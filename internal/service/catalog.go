package service

import (
	"github.com/and161185/storefront/internal/model"
	"github.com/shopspring/decimal"
)

// Categories returns the category menu in display order, "all" first.
func Categories() []model.CategoryInfo {
	return []model.CategoryInfo{
		{Key: model.CategoryAll, Label: "Todos os Produtos"},
		{Key: model.CategoryShirts, Label: "Camisetas"},
		{Key: model.CategorySneakers, Label: "Tênis"},
		{Key: model.CategoryPants, Label: "Calças"},
	}
}

func product(id int64, name, price string, c model.Category, stock int, image string) model.Product {
	return model.Product{
		ID:        id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Category:  c,
		Stock:     stock,
		Image:     image,
	}
}

// DefaultCatalog returns a fresh copy of the fixed product catalog.
func DefaultCatalog() []model.Product {
	return []model.Product{
		product(1, "Camiseta Básica Branca", "29.90", model.CategoryShirts, 20, "/images/produtos/camisetas/camiseta-branca.jpg"),
		product(2, "Camiseta Estampada Azul", "39.90", model.CategoryShirts, 15, "/images/produtos/camisetas/camiseta-azul.jpg"),
		product(3, "Camiseta Polo Preta", "49.90", model.CategoryShirts, 10, "/images/produtos/camisetas/camiseta-preta.jpg"),
		product(4, "Camiseta Manga Longa Verde", "44.90", model.CategoryShirts, 15, "/images/produtos/camisetas/camiseta-verde.jpg"),

		product(5, "Tênis Esportivo Nike", "199.90", model.CategorySneakers, 10, "/images/produtos/tenis/tenis-nike.jpg"),
		product(6, "Tênis Casual Adidas", "179.90", model.CategorySneakers, 10, "/images/produtos/tenis/tenis-adidas.jpg"),
		product(7, "Tênis Running Puma", "159.90", model.CategorySneakers, 20, "/images/produtos/tenis/tenis-puma.jpg"),
		product(8, "Tênis Skateboard Vans", "149.90", model.CategorySneakers, 10, "/images/produtos/tenis/tenis-vans.jpg"),

		product(9, "Calça Jeans Azul", "89.90", model.CategoryPants, 15, "/images/produtos/calcas/calca-jeans.jpg"),
		product(10, "Calça Social Preta", "119.90", model.CategoryPants, 15, "/images/produtos/calcas/calca-social.jpg"),
		product(11, "Calça Cargo Bege", "99.90", model.CategoryPants, 20, "/images/produtos/calcas/calca-cargo.jpg"),
		product(12, "Calça Legging Preta", "59.90", model.CategoryPants, 15, "/images/produtos/calcas/calca-legging.jpg"),
	}
}
