package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	// Featured возвращает активные товары в наличии: с изображением (withImage=true) или любые новые,
	// исключая excludeIDs.
	Featured(ctx context.Context, withImage bool, excludeIDs []int64, limit int) ([]*domain.Product, error)
	SetActive(ctx context.Context, ids []int64, active bool) (int64, error)
	Delete(ctx context.Context, ids []int64) ([]*domain.Product, error)
	// DecrementStock уменьшает остаток, только если его хватает. false — остатка недостаточно.
	DecrementStock(ctx context.Context, id int64, quantity int) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	// List возвращает категории по имени; limit <= 0 — без ограничения.
	List(ctx context.Context, limit int) ([]CategoryWithCount, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	AddItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// UpdateStatus перезаписывает статус и возвращает предыдущий.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.OrderStatus, error)
	UpdateStatuses(ctx context.Context, ids []int64, status domain.OrderStatus) (map[int64]domain.OrderStatus, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

// CartRepository хранит корзины покупателей по идентификатору сессии.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	AddOrder(ctx context.Context, sessionID string, orderID int64) error
	HasOrder(ctx context.Context, sessionID string, orderID int64) (bool, error)
}

// CacheRepository — кэш товаров. У каждого товара есть поколение, которое растёт при удалении
// из кэша; запись с устаревшим поколением игнорируется.
type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	Generations(ctx context.Context, ids []int64) (map[int64]int64, error)
	SetProducts(ctx context.Context, products []*domain.Product, generations map[int64]int64) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
