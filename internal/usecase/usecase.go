package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// SessionOrders — заказы, оформленные в сессии покупателя. Подтверждение заказа
// показывается только сессии, которая его оформила.
type SessionOrders interface {
	RememberOrder(ctx context.Context, sessionID string, orderID int64) error
	OwnsOrder(ctx context.Context, sessionID string, orderID int64) (bool, error)
}

// CartUC — операции над корзиной. Корзина передаётся значением и возвращается новой,
// сохранение в сессию выполняет вызывающий слой через Load/Save.
type CartUC interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Add(ctx context.Context, cart domain.Cart, productID int64, quantity int) (*CartRes, error)
	Update(ctx context.Context, cart domain.Cart, productID int64, quantity int) (*CartRes, error)
	Remove(ctx context.Context, cart domain.Cart, productID int64) (domain.Cart, error)
	Clear(ctx context.Context, cart domain.Cart) domain.Cart
	View(ctx context.Context, cart domain.Cart) (*CartViewRes, error)
	SessionOrders
}

type CheckoutUC interface {
	PlaceOrder(ctx context.Context, cart domain.Cart, req *PlaceOrderReq) (*PlaceOrderRes, error)
}

// OrderStatusUpdater — единственный допустимый способ изменить существующий заказ.
type OrderStatusUpdater interface {
	ChangeStatus(ctx context.Context, orderID string, newStatus string) (*StatusChange, error)
	BulkChangeStatus(ctx context.Context, orderIDs []int64, newStatus string) ([]StatusChange, error)
}

type OrderQuery interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error)
}

type CatalogUC interface {
	Home(ctx context.Context) (*HomeRes, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	ListCategories(ctx context.Context) ([]CategoryWithCount, error)
	GetProductPrice(ctx context.Context, id int64) (decimal.Decimal, error)
}

type AdminCatalogUC interface {
	CreateCategory(ctx context.Context, req *SaveCategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *SaveCategoryReq) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateProduct(ctx context.Context, req *SaveProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *SaveProductReq) (*domain.Product, error)
	SetProductsActive(ctx context.Context, ids []int64, active bool) (int64, error)
	DeleteProducts(ctx context.Context, ids []int64) (int64, error)
}
