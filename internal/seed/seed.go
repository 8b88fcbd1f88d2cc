// Package seed наполняет пустой магазин демонстрационным каталогом.
package seed

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type CategoryStore interface {
	GetOrCreate(ctx context.Context, category *domain.Category) (*domain.Category, bool, error)
}

type ProductStore interface {
	CreateIfAbsent(ctx context.Context, product *domain.Product) (bool, error)
}

type categoryData struct {
	name        string
	description string
}

type productData struct {
	name        string
	category    string
	price       string
	stock       int
	description string
}

var categories = []categoryData{
	{"Electronics", "Latest electronic gadgets and devices"},
	{"Clothing", "Fashion and apparel for all ages"},
	{"Home & Garden", "Everything for your home and garden"},
	{"Sports", "Sports equipment and fitness gear"},
	{"Books", "Books and educational materials"},
	{"Beauty", "Beauty and personal care products"},
}

var products = []productData{
	{"Smartphone Pro Max", "Electronics", "999.99", 50, "Latest smartphone with advanced features and premium camera system."},
	{"Wireless Headphones", "Electronics", "199.99", 100, "High-quality wireless headphones with noise cancellation."},
	{"Laptop Ultra", "Electronics", "1299.99", 25, "Powerful laptop for work and gaming with long battery life."},
	{"Smart Watch", "Electronics", "299.99", 75, "Fitness tracking smartwatch with health monitoring features."},

	{"Cotton T-Shirt", "Clothing", "24.99", 200, "Comfortable cotton t-shirt in various colors and sizes."},
	{"Denim Jeans", "Clothing", "79.99", 150, "Classic denim jeans with perfect fit and durability."},
	{"Winter Jacket", "Clothing", "149.99", 80, "Warm winter jacket with water-resistant material."},
	{"Running Shoes", "Clothing", "89.99", 120, "Comfortable running shoes with excellent cushioning."},

	{"Coffee Maker", "Home & Garden", "89.99", 60, "Automatic coffee maker for perfect morning brew."},
	{"Garden Tools Set", "Home & Garden", "49.99", 90, "Complete set of garden tools for all your gardening needs."},
	{"LED Desk Lamp", "Home & Garden", "39.99", 110, "Adjustable LED desk lamp with multiple brightness levels."},
	{"Plant Pot Set", "Home & Garden", "29.99", 200, "Set of decorative plant pots for indoor plants."},

	{"Yoga Mat", "Sports", "34.99", 80, "Non-slip yoga mat for comfortable workouts."},
	{"Dumbbell Set", "Sports", "79.99", 40, "Adjustable dumbbell set for home fitness."},
	{"Basketball", "Sports", "24.99", 100, "Official size basketball for indoor and outdoor play."},
	{"Tennis Racket", "Sports", "89.99", 50, "Professional tennis racket for all skill levels."},

	{"Programming Guide", "Books", "49.99", 75, "Comprehensive guide to modern programming languages."},
	{"Cookbook Collection", "Books", "29.99", 120, "Collection of delicious recipes from around the world."},
	{"History Book", "Books", "19.99", 90, "Fascinating journey through world history."},
	{"Science Fiction Novel", "Books", "14.99", 150, "Award-winning science fiction novel."},

	{"Skincare Set", "Beauty", "59.99", 100, "Complete skincare routine set for all skin types."},
	{"Makeup Kit", "Beauty", "79.99", 80, "Professional makeup kit with all essential products."},
	{"Hair Care Bundle", "Beauty", "39.99", 120, "Premium hair care products for healthy hair."},
	{"Perfume Collection", "Beauty", "99.99", 60, "Luxury perfume collection with multiple fragrances."},
}

// Result — сколько записей создано за запуск.
type Result struct {
	Categories int
	Products   int
}

// Run создаёт недостающие категории и товары в одной транзакции. Повторный запуск ничего не меняет.
func Run(ctx context.Context, txManager usecase.TxManager, categoryStore CategoryStore, productStore ProductStore, log logger.Logger) (*Result, error) {
	const op = "seed.Run"

	res := &Result{}
	err := txManager.Do(ctx, func(ctx context.Context) error {
		ids := make(map[string]int64, len(categories))
		for _, c := range categories {
			category, created, err := categoryStore.GetOrCreate(ctx, domain.NewCategory(c.name, c.description))
			if err != nil {
				return err
			}
			ids[c.name] = category.ID
			if created {
				res.Categories++
				log.Infof("Created category: %s", category.Name)
			}
		}

		for _, p := range products {
			categoryID, ok := ids[p.category]
			if !ok {
				return fmt.Errorf("product %s: %w", p.name, e.ErrCategoryNotFound)
			}

			price, err := decimal.NewFromString(p.price)
			if err != nil {
				return fmt.Errorf("product %s: %w", p.name, e.ErrInvalidPrice)
			}

			created, err := productStore.CreateIfAbsent(ctx, domain.NewProduct(p.name, categoryID, p.description, price, p.stock, true))
			if err != nil {
				return err
			}
			if created {
				res.Products++
				log.Infof("Created product: %s", p.name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}
