package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_Home(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)
	c.postJSON("/api/v1/cart/add", `{"product_id": 1, "quantity": 2}`)

	rec := c.get("/api/v1/home")
	require.Equal(t, http.StatusOK, rec.Code)

	var home HomeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &home))
	assert.Equal(t, 2, home.CartCount)
	assert.Len(t, home.Categories, 1)
	require.Len(t, home.Featured, 1)
	assert.Equal(t, "999.99", home.Featured[0].Price)
}

func TestCatalogHandler_ProductsAndCategories(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)

	rec := c.get("/api/v1/products?category=1&sort=-price&page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var page ProductPageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	rec = c.get("/api/v1/products?category=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Zero(t, page.Total)

	rec = c.get("/api/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []CategoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	require.NotNil(t, categories[0].ProductCount)
	assert.Equal(t, 1, *categories[0].ProductCount)
}

func TestCatalogHandler_ProductPrice(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)

	rec := c.get("/api/v1/products/1/price")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price": 999.99}`, rec.Body.String())

	for _, path := range []string{"/api/v1/products/404/price", "/api/v1/products/abc/price"} {
		rec = c.get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error": "Product not found"}`, rec.Body.String(), path)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	rec := en.client(t).get("/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var res HealthDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res.Status)
	assert.False(t, res.Timestamp.IsZero())
}
