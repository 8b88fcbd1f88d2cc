package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *clients.RedisClient, *cfg.RedisCfg) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCfg := &cfg.RedisCfg{
		Addr:       mr.Addr(),
		SessionTTL: 24 * time.Hour,
		ProductTTL: 5 * time.Minute,
	}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client, redisCfg
}

func TestSessionRepo_SaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewSessionRepo(client, converter.CartConverter{}, redisCfg, logger.NewNop())

	cart, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	require.NoError(t, repo.Save(ctx, "abc", domain.Cart{"1": 3, "5": 1}))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:abc"))

	cart, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"1": 3, "5": 1}, cart)

	// пустая корзина удаляет ключ
	require.NoError(t, repo.Save(ctx, "abc", domain.NewCart()))
	assert.False(t, mr.Exists("cart:abc"))
}

func TestSessionRepo_CorruptedCartIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewSessionRepo(client, converter.CartConverter{}, redisCfg, logger.NewNop())

	require.NoError(t, mr.Set("cart:broken", "{not json"))

	cart, err := repo.Get(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSessionRepo_Expires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewSessionRepo(client, converter.CartConverter{}, redisCfg, logger.NewNop())

	require.NoError(t, repo.Save(ctx, "old", domain.Cart{"2": 1}))
	mr.FastForward(25 * time.Hour)

	cart, err := repo.Get(ctx, "old")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestSessionRepo_OrdersBelongToSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewSessionRepo(client, converter.CartConverter{}, redisCfg, logger.NewNop())

	require.NoError(t, repo.AddOrder(ctx, "buyer", 7))
	require.NoError(t, repo.AddOrder(ctx, "buyer", 9))
	assert.Equal(t, 24*time.Hour, mr.TTL("orders:buyer"))

	ok, err := repo.HasOrder(ctx, "buyer", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasOrder(ctx, "other", 7)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(25 * time.Hour)
	ok, err = repo.HasOrder(ctx, "buyer", 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewCacheRepo(client, converter.ProductConverter{}, redisCfg, logger.NewNop())

	key := "products/phone.png"
	phone := &domain.Product{ID: 1, Name: "Phone", CategoryID: 2, Price: decimal.RequireFromString("999.99"), Stock: 5, IsActive: true, ImageKey: &key}
	cable := &domain.Product{ID: 2, Name: "Cable", CategoryID: 2, Price: decimal.RequireFromString("10.50"), Stock: 100, IsActive: true}

	gens, err := repo.Generations(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 0, 2: 0}, gens)

	require.NoError(t, repo.SetProducts(ctx, []*domain.Product{phone, cable}, gens))
	assert.Equal(t, 5*time.Minute, mr.TTL("product:1"))

	got, err := repo.GetProducts(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "999.99", got[1].Price.StringFixed(2))
	assert.Equal(t, "Cable", got[2].Name)
	assert.Equal(t, key, *got[1].ImageKey)

	require.NoError(t, repo.DeleteProducts(ctx, []int64{1}))
	got, err = repo.GetProducts(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCacheRepo_SkipsCorruptedAndMismatched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewCacheRepo(client, converter.ProductConverter{}, redisCfg, logger.NewNop())

	require.NoError(t, mr.Set("product:1", "garbage"))
	require.NoError(t, mr.Set("product:2", `{"id":99,"name":"Other","price_cents":100}`))

	got, err := repo.GetProducts(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, mr.Exists("product:2"))
}

func TestCacheRepo_Unavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewCacheRepo(client, converter.ProductConverter{}, redisCfg, logger.NewNop())
	mr.Close()

	_, err := repo.GetProducts(ctx, []int64{1})
	require.Error(t, err)
}

func TestCacheRepo_InvalidationBeatsLateFill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client, redisCfg := newTestClient(t)
	repo := NewCacheRepo(client, converter.ProductConverter{}, redisCfg, logger.NewNop())

	phone := &domain.Product{ID: 1, Name: "Phone", Price: decimal.RequireFromString("999.99"), Stock: 5, IsActive: true}
	cable := &domain.Product{ID: 2, Name: "Cable", Price: decimal.RequireFromString("10.50"), Stock: 100, IsActive: true}

	// поколения прочитаны до чтения из БД
	gens, err := repo.Generations(ctx, []int64{1, 2})
	require.NoError(t, err)

	// между чтением из БД и записью в кэш товар 1 изменился
	require.NoError(t, repo.DeleteProducts(ctx, []int64{1}))
	got, err := mr.Get("product:gen:1")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Positive(t, mr.TTL("product:gen:1"))

	require.NoError(t, repo.SetProducts(ctx, []*domain.Product{phone, cable}, gens))
	assert.False(t, mr.Exists("product:1"))
	assert.True(t, mr.Exists("product:2"))

	// свежее поколение снова разрешает запись
	gens, err = repo.Generations(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), gens[1])
	require.NoError(t, repo.SetProducts(ctx, []*domain.Product{phone}, gens))
	assert.True(t, mr.Exists("product:1"))
}
