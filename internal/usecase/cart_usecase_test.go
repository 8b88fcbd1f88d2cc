package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartUseCase_AddProperty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, stock := range []int{0, 1, 5} {
		for existing := 0; existing <= stock; existing++ {
			for q := -1; q <= stock+1; q++ {
				en := newEnv()
				cat := en.store.addCategory("Electronics")
				p := en.store.addProduct("Phone", cat.ID, "999.99", stock)

				cart := domain.NewCart()
				if existing > 0 {
					cart[domain.CartKey(p.ID)] = existing
				}

				res, err := en.cart.Add(ctx, cart, p.ID, q)
				wantOK := q > 0 && existing+q <= stock
				if wantOK {
					require.NoError(t, err, "stock=%d existing=%d q=%d", stock, existing, q)
					assert.Equal(t, existing+q, res.Cart.Quantity(p.ID))
				} else {
					require.Error(t, err, "stock=%d existing=%d q=%d", stock, existing, q)
					assert.Nil(t, res)
				}
				assert.Equal(t, existing, cart.Quantity(p.ID), "input cart must not change")
			}
		}
	}
}

func TestCartUseCase_AddErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Electronics")
	phone := en.store.addProduct("Phone", cat.ID, "999.99", 5)
	hidden := en.store.addProduct("Hidden", cat.ID, "1.00", 5)
	_, err := en.products.SetActive(ctx, []int64{hidden.ID}, false)
	require.NoError(t, err)

	_, err = en.cart.Add(ctx, domain.NewCart(), phone.ID, 0)
	require.ErrorIs(t, err, e.ErrInvalidQuantity)

	_, err = en.cart.Add(ctx, domain.NewCart(), 999, 1)
	require.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = en.cart.Add(ctx, domain.NewCart(), hidden.ID, 1)
	require.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = en.cart.Add(ctx, domain.NewCart(), phone.ID, 6)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 5, stockErr.Available)
}

func TestCartUseCase_PhoneScenarioCartCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Electronics")
	phone := en.store.addProduct("Phone", cat.ID, "999.99", 5)

	res, err := en.cart.Add(ctx, domain.NewCart(), phone.ID, 3)
	require.NoError(t, err)
	cart := res.Cart

	view, err := en.cart.View(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, 3, view.View.Count)

	_, err = en.cart.Add(ctx, cart, phone.ID, 3)
	require.ErrorIs(t, err, e.ErrInsufficientStock)

	view, err = en.cart.View(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, 3, view.View.Count)
}

func TestCartUseCase_UpdateRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Books")
	book := en.store.addProduct("Novel", cat.ID, "14.99", 10)

	res, err := en.cart.Add(ctx, domain.NewCart(), book.ID, 2)
	require.NoError(t, err)
	res, err = en.cart.Add(ctx, res.Cart, book.ID, 3)
	require.NoError(t, err)

	res, err = en.cart.Update(ctx, res.Cart, book.ID, 4)
	require.NoError(t, err)

	view, err := en.cart.View(ctx, res.Cart)
	require.NoError(t, err)
	assert.Equal(t, 4, view.View.Count)
	for line := range view.View.Lines() {
		assert.Equal(t, 4, line.Quantity)
		assert.Equal(t, "59.96", line.LineTotal.StringFixed(2))
	}

	_, err = en.cart.Update(ctx, res.Cart, book.ID, 11)
	require.ErrorIs(t, err, e.ErrInsufficientStock)
}

func TestCartUseCase_RemoveAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()

	cart := domain.Cart{"1": 2, "2": 1}

	res, err := en.cart.Remove(ctx, cart, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"2": 1}, res)

	_, err = en.cart.Remove(ctx, res, 1)
	require.ErrorIs(t, err, e.ErrItemNotFound)

	assert.True(t, en.cart.Clear(ctx, res).IsEmpty())
}

func TestCartUseCase_ViewSweepsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Sports")
	ball := en.store.addProduct("Basketball", cat.ID, "24.99", 10)
	mat := en.store.addProduct("Yoga Mat", cat.ID, "34.99", 1)

	cart := domain.Cart{
		domain.CartKey(ball.ID): 2,
		domain.CartKey(mat.ID):  2, // остатка не хватает: скрыт, но не удалён
		"404":                   1, // товара нет: удаляется
	}

	first, err := en.cart.View(ctx, cart)
	require.NoError(t, err)
	assert.True(t, first.Swept)
	assert.Equal(t, domain.Cart{domain.CartKey(ball.ID): 2, domain.CartKey(mat.ID): 2}, first.Cart)
	assert.Equal(t, 2, first.View.Count)
	assert.Equal(t, "49.98", first.View.Total.StringFixed(2))

	second, err := en.cart.View(ctx, first.Cart)
	require.NoError(t, err)
	assert.False(t, second.Swept)
	assert.Equal(t, first.View.Count, second.View.Count)
	assert.True(t, first.View.Total.Equal(second.View.Total))
}

func TestCartUseCase_ViewUsesCacheAndFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Beauty")
	kit := en.store.addProduct("Makeup Kit", cat.ID, "79.99", 10)

	cached := *kit
	cached.Name = "Makeup Kit (cached)"
	en.cache.put(&cached)

	res, err := en.cart.View(ctx, domain.Cart{domain.CartKey(kit.ID): 1})
	require.NoError(t, err)
	for line := range res.View.Lines() {
		assert.Equal(t, "Makeup Kit (cached)", line.Product.Name)
	}

	en.cache.failGet = true
	res, err = en.cart.View(ctx, domain.Cart{domain.CartKey(kit.ID): 1})
	require.NoError(t, err)
	for line := range res.View.Lines() {
		assert.Equal(t, "Makeup Kit", line.Product.Name)
	}
}

func TestCartUseCase_ViewPopulatesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()
	cat := en.store.addCategory("Books")
	book := en.store.addProduct("History Book", cat.ID, "19.99", 90)

	_, err := en.cart.View(ctx, domain.Cart{domain.CartKey(book.ID): 1})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := en.cache.GetProducts(ctx, []int64{book.ID})
		_, ok := got[book.ID]
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestCartUseCase_LoadSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()

	cart, err := en.cart.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	require.NoError(t, en.cart.Save(ctx, "sid-1", domain.Cart{"3": 2}))

	cart, err = en.cart.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Quantity(3))
}

func TestCartUseCase_OrdersAreScopedToSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	en := newEnv()

	require.NoError(t, en.cart.RememberOrder(ctx, "buyer", 3))

	ok, err := en.cart.OwnsOrder(ctx, "buyer", 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = en.cart.OwnsOrder(ctx, "buyer", 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = en.cart.OwnsOrder(ctx, "stranger", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}
