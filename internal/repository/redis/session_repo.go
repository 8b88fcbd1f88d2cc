package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// SessionRepo хранит корзины покупателей и их заказы по идентификатору сессии.
// TTL продлевается при каждом сохранении.
type SessionRepo struct {
	client *clients.RedisClient
	conv   converter.CartConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewSessionRepo(client *clients.RedisClient, conv converter.CartConverter, cfg *cfg.RedisCfg, logger logger.Logger) *SessionRepo {
	return &SessionRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// Get возвращает корзину сессии. Отсутствующая или повреждённая корзина считается пустой.
func (s *SessionRepo) Get(ctx context.Context, sid string) (domain.Cart, error) {
	data, err := s.client.Client.Get(ctx, cartKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return domain.NewCart(), nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CartRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		s.logger.Warnf("Corrupted cart for session %s, resetting: %v", sid, e.Wrap(whereami.WhereAmI(), err))
		return domain.NewCart(), nil
	}

	return s.conv.ToEntity(&model), nil
}

// Save сохраняет корзину. Пустая корзина удаляет ключ.
func (s *SessionRepo) Save(ctx context.Context, sid string, cart domain.Cart) error {
	if cart.IsEmpty() {
		if err := s.client.Client.Del(ctx, cartKey(sid)).Err(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	}

	data, err := json.Marshal(s.conv.ToRedisModel(cart))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := s.client.Client.Set(ctx, cartKey(sid), data, s.cfg.SessionTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// AddOrder запоминает заказ сессии. Множество живёт столько же, сколько сессия.
func (s *SessionRepo) AddOrder(ctx context.Context, sid string, orderID int64) error {
	key := ordersKey(sid)
	_, err := s.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		pipe.SAdd(ctx, key, orderID)
		pipe.Expire(ctx, key, s.cfg.SessionTTL)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SessionRepo) HasOrder(ctx context.Context, sid string, orderID int64) (bool, error) {
	ok, err := s.client.Client.SIsMember(ctx, ordersKey(sid), orderID).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return ok, nil
}

func cartKey(sid string) string {
	return fmt.Sprintf("cart:%s", sid)
}

func ordersKey(sid string) string {
	return fmt.Sprintf("orders:%s", sid)
}
