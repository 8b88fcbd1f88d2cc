package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует товары для отображения корзины.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts возвращает закэшированные продукты по ID, игнорируя промахи и логируя их
func (r *CacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Product{}, nil
	}
	keys := r.buildProductCacheKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]*domain.Product, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		model, err := r.unmarshalProductFromCache(data)
		if err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", ids[i], model.ID)
			if err := r.client.Client.Del(ctx, keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}
		result[ids[i]] = r.conv.ToEntity(model)
	}

	return result, nil
}

// generationTTL — срок жизни счётчика поколения. Он заведомо больше времени между
// чтением поколения и фоновой записью в кэш.
const generationTTL = time.Hour

// setIfCurrent записывает товар, только если его поколение не изменилось с момента чтения из БД.
// KEYS: пары (ключ поколения, ключ товара). ARGV[1] — TTL в мс, далее пары (ожидаемое поколение, данные).
var setIfCurrent = goredis.NewScript(`
local written = 0
for i = 1, #KEYS, 2 do
	local gen = redis.call('GET', KEYS[i]) or '0'
	if gen == ARGV[i + 1] then
		redis.call('SET', KEYS[i + 1], ARGV[i + 2], 'PX', ARGV[1])
		written = written + 1
	end
end
return written
`)

// Generations возвращает текущие поколения товаров. Отсутствующий счётчик означает поколение 0.
func (r *CacheRepo) Generations(ctx context.Context, ids []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.generationKey(id)
	}

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if data == nil {
			result[ids[i]] = 0
			continue
		}
		gen, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[ids[i]] = gen
	}

	return result, nil
}

// SetProducts кэширует товары с заданным TTL. Товар пропускается, если его нет в generations
// или если после чтения поколения товар был инвалидирован.
// Ошибки сериализации только логируются.
func (r *CacheRepo) SetProducts(ctx context.Context, products []*domain.Product, generations map[int64]int64) error {
	models := r.conv.ToArrRedisModel(products)
	if len(models) == 0 {
		return nil
	}

	keys := make([]string, 0, 2*len(models))
	args := []any{r.cfg.ProductTTL.Milliseconds()}
	for _, model := range models {
		gen, ok := generations[model.ID]
		if !ok {
			continue
		}

		data, err := r.marshalProductForCache(model)
		if err != nil {
			r.logger.Warnf("Failed to marshal product for caching (Product ID: %d): %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		keys = append(keys, r.generationKey(model.ID), r.productKey(model.ID))
		args = append(args, strconv.FormatInt(gen, 10), data)
	}

	if len(keys) == 0 {
		return nil
	}

	written, err := setIfCurrent.Run(ctx, r.client.Client, keys, args...).Int()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if skipped := len(keys)/2 - written; skipped > 0 {
		r.logger.Debugf("%d products not cached: invalidated while being read", skipped)
	}

	return nil
}

// DeleteProducts удаляет товары из кэша и увеличивает их поколение,
// чтобы запоздавшая фоновая запись не вернула устаревшие данные.
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.client.Client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range ids {
			genKey := r.generationKey(id)
			pipe.Incr(ctx, genKey)
			pipe.Expire(ctx, genKey, generationTTL)
		}
		pipe.Del(ctx, r.buildProductCacheKeys(ids)...)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// marshalProductForCache сериализует продукт в JSON для кэша
func (r *CacheRepo) marshalProductForCache(model *converter.ProductRedisModel) ([]byte, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// unmarshalProductFromCache десериализует JSON из кэша в модель продукта
func (r *CacheRepo) unmarshalProductFromCache(data []byte) (*converter.ProductRedisModel, error) {
	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildProductCacheKeys формирует Redis-ключи из ID продуктов
func (r *CacheRepo) buildProductCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.productKey(id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного продукта
func (r *CacheRepo) productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *CacheRepo) generationKey(id int64) string {
	return fmt.Sprintf("product:gen:%d", id)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val any, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
