package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogCfg() *cfg.CatalogCfg {
	return &cfg.CatalogCfg{PageSize: 12, HomeCategories: 4, HomeFeaturedHalf: 4}
}

func TestCatalogUseCase_Home(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()

	for _, name := range []string{"Sports", "Books", "Beauty", "Clothing", "Electronics", "Home & Garden"} {
		en.store.addCategory(name)
	}
	cat := en.store.addCategory("Toys")

	var withImage []int64
	for i := range 6 {
		p := en.store.addProduct(fmt.Sprintf("Product %d", i), cat.ID, "10.00", 5)
		if i%2 == 0 {
			key := fmt.Sprintf("products/%d.png", p.ID)
			p.ImageKey = &key
			_, err := en.products.Update(ctx, p)
			require.NoError(t, err)
			withImage = append(withImage, p.ID)
		}
	}
	soldOut := en.store.addProduct("Sold out", cat.ID, "10.00", 0)

	res, err := en.catalog.Home(ctx)
	require.NoError(t, err)

	assert.Len(t, res.Categories, 4)
	assert.Equal(t, "Beauty", res.Categories[0].Name)

	require.Len(t, res.Featured, 6)
	// сначала товары с изображением, без повторов и без нулевого остатка
	seen := map[int64]bool{}
	for i, p := range res.Featured {
		if i < len(withImage) {
			assert.True(t, p.HasImage())
		}
		assert.False(t, seen[p.ID])
		assert.NotEqual(t, soldOut.ID, p.ID)
		seen[p.ID] = true
	}
}

func TestCatalogUseCase_ListProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	books := en.store.addCategory("Books")
	sports := en.store.addCategory("Sports")

	en.store.addProduct("Novel", books.ID, "14.99", 10)
	en.store.addProduct("Cookbook", books.ID, "29.99", 10)
	en.store.addProduct("Basketball", sports.ID, "24.99", 10)
	hidden := en.store.addProduct("Old Novel", books.ID, "4.99", 10)
	_, err := en.products.SetActive(ctx, []int64{hidden.ID}, false)
	require.NoError(t, err)

	page, err := en.catalog.ListProducts(ctx, ProductFilter{CategoryID: &books.ID, Sort: SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Novel", page.Products[0].Name)
	assert.Equal(t, "Cookbook", page.Products[1].Name)

	// несуществующая категория игнорируется
	bogus := int64(9999)
	page, err = en.catalog.ListProducts(ctx, ProductFilter{CategoryID: &bogus})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = en.catalog.ListProducts(ctx, ProductFilter{Search: "  novel "})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Novel", page.Products[0].Name)

	page, err = en.catalog.ListProducts(ctx, ProductFilter{Limit: 2, Page: 50, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Novel", page.Products[0].Name)

	page, err = en.catalog.ListProducts(ctx, ProductFilter{Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Products, 3)
}

func TestCatalogUseCase_ListCategoriesCountsProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	books := en.store.addCategory("Books")
	en.store.addCategory("Beauty")
	en.store.addProduct("Novel", books.ID, "14.99", 10)
	en.store.addProduct("Cookbook", books.ID, "29.99", 10)

	categories, err := en.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Beauty", categories[0].Category.Name)
	assert.Equal(t, 0, categories[0].ProductCount)
	assert.Equal(t, 2, categories[1].ProductCount)
}

func TestCatalogUseCase_GetProductPrice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Electronics")
	phone := en.store.addProduct("Phone", cat.ID, "999.99", 5)
	_, err := en.products.SetActive(ctx, []int64{phone.ID}, false)
	require.NoError(t, err)

	price, err := en.catalog.GetProductPrice(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, "999.99", price.StringFixed(2))

	_, err = en.catalog.GetProductPrice(ctx, 404)
	require.ErrorIs(t, err, e.ErrProductNotFound)
}
