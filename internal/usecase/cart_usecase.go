package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// CartUseCase реализует операции с корзиной покупателя.
type CartUseCase struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	reader      *ProductReader
	metrics     ShopMetrics
	logger      logger.Logger
}

func NewCartUC(
	cartRepo CartRepository,
	productRepo ProductRepository,
	reader *ProductReader,
	metrics ShopMetrics,
	logger logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		reader:      reader,
		metrics:     metrics,
		logger:      logger,
	}
}

// Load возвращает корзину сессии; для новой сессии — пустую корзину.
func (c *CartUseCase) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	const op = "CartUseCase.Load"

	cart, err := c.cartRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if cart == nil {
		return domain.NewCart(), nil
	}

	return cart, nil
}

func (c *CartUseCase) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	const op = "CartUseCase.Save"

	if err := c.cartRepo.Save(ctx, sessionID, cart); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// RememberOrder привязывает оформленный заказ к сессии.
func (c *CartUseCase) RememberOrder(ctx context.Context, sessionID string, orderID int64) error {
	const op = "CartUseCase.RememberOrder"

	if err := c.cartRepo.AddOrder(ctx, sessionID, orderID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *CartUseCase) OwnsOrder(ctx context.Context, sessionID string, orderID int64) (bool, error) {
	const op = "CartUseCase.OwnsOrder"

	ok, err := c.cartRepo.HasOrder(ctx, sessionID, orderID)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return ok, nil
}

// Add увеличивает количество товара в корзине, сверяясь с текущим остатком в БД.
func (c *CartUseCase) Add(ctx context.Context, cart domain.Cart, productID int64, quantity int) (*CartRes, error) {
	const op = "CartUseCase.Add"

	res, err := c.change(ctx, cart, productID, quantity, domain.Cart.Add)
	c.metrics.CartChanged("add", err == nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Update устанавливает количество товара в корзине.
func (c *CartUseCase) Update(ctx context.Context, cart domain.Cart, productID int64, quantity int) (*CartRes, error) {
	const op = "CartUseCase.Update"

	res, err := c.change(ctx, cart, productID, quantity, domain.Cart.Update)
	c.metrics.CartChanged("update", err == nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

func (c *CartUseCase) Remove(ctx context.Context, cart domain.Cart, productID int64) (domain.Cart, error) {
	const op = "CartUseCase.Remove"

	res, err := cart.Remove(domain.CartKey(productID))
	c.metrics.CartChanged("remove", err == nil)
	if err != nil {
		return cart, e.Wrap(op, err)
	}

	return res, nil
}

func (c *CartUseCase) Clear(_ context.Context, cart domain.Cart) domain.Cart {
	c.metrics.CartChanged("clear", true)
	return cart.Clear()
}

// View материализует корзину по актуальным данным товаров.
func (c *CartUseCase) View(ctx context.Context, cart domain.Cart) (*CartViewRes, error) {
	const op = "CartUseCase.View"

	ids, _ := cart.ProductIDs()
	products, err := c.reader.GetProducts(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	view, cleaned, swept := domain.Materialize(cart, products)
	if swept {
		c.logger.Debugf("swept %d stale cart entries", len(cart)-len(cleaned))
	}

	return &CartViewRes{View: view, Cart: cleaned, Swept: swept}, nil
}

// change проверяет количество и наличие товара, затем применяет операцию к корзине.
func (c *CartUseCase) change(
	ctx context.Context,
	cart domain.Cart,
	productID int64,
	quantity int,
	apply func(domain.Cart, *domain.Product, int) (domain.Cart, error),
) (*CartRes, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := c.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, e.ErrProductNotFound
	}

	res, err := apply(cart, product, quantity)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			c.logger.Debugf("insufficient stock for product %d: requested %d, available %d",
				stockErr.ProductID, stockErr.Requested, stockErr.Available)
		}
		return nil, err
	}

	return NewCartRes(res, product), nil
}
