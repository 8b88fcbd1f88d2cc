package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// CheckoutUseCase оформляет заказ из корзины покупателя.
type CheckoutUseCase struct {
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	reader      *ProductReader
	validate    *validator.Validate
	metrics     ShopMetrics
	logger      logger.Logger
	now         func() time.Time
}

func NewCheckoutUC(
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	reader *ProductReader,
	validate *validator.Validate,
	metrics ShopMetrics,
	logger logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		reader:      reader,
		validate:    validate,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// PlaceOrder создаёт заказ из корзины.
//
// Заказ, его позиции, списание остатков и событие order.created записываются в одной транзакции.
// Остаток списывается условным UPDATE (stock >= quantity), поэтому два параллельных заказа
// последней единицы товара не могут оба завершиться успешно.
func (c *CheckoutUseCase) PlaceOrder(ctx context.Context, cart domain.Cart, req *PlaceOrderReq) (*PlaceOrderRes, error) {
	const op = "CheckoutUseCase.PlaceOrder"

	// Пустая корзина проверяется до формы: покупателя возвращают в корзину без ошибок полей
	empty, err := c.isEmpty(ctx, cart)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if empty {
		c.metrics.CheckoutFailed(failureReason(e.ErrEmptyCart))
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}

	// Валидация данных покупателя
	if err := c.validateCustomer(req); err != nil {
		c.metrics.CheckoutFailed("validation")
		return nil, e.Wrap(op, err)
	}

	var order *domain.Order
	err = c.txManager.Do(ctx, func(ctx context.Context) error {
		// Материализация корзины по данным из БД; товары могли исчезнуть после предварительной проверки
		ids, _ := cart.ProductIDs()
		products, err := c.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		view, _, _ := domain.Materialize(cart, indexProducts(products))
		if view.IsEmpty() {
			return e.ErrEmptyCart
		}

		// Создание заказа
		order, err = c.orderRepo.Create(ctx, domain.NewOrder(customerFromReq(req)))
		if err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, view.Len())
		for line := range view.Lines() {
			item := domain.NewOrderItem(order.ID, line.Product.ID, line.Quantity, line.UnitPrice)
			item.ProductName = line.Product.Name
			items = append(items, *item)
		}

		if err := c.orderRepo.AddItems(ctx, order.ID, items); err != nil {
			return err
		}
		order.Items = items

		// Списание остатков
		for _, item := range items {
			if err := c.decrementStock(ctx, item); err != nil {
				return err
			}
		}

		// Событие для outbox
		event, err := NewOrderCreatedEvent(order, c.now())
		if err != nil {
			return err
		}
		if _, err := c.outboxRepo.Create(ctx, event); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		c.metrics.CheckoutFailed(failureReason(err))
		return nil, e.Wrap(op, err)
	}

	// Остатки изменились — удаляем товары из кэша
	productIDs := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	c.reader.Invalidate(ctx, productIDs)

	c.metrics.OrderPlaced(order.TotalAmount(), order.TotalItems())
	c.logger.Infof("order %d placed: %d items, total %s", order.ID, order.TotalItems(), order.TotalAmount().StringFixed(2))

	return &PlaceOrderRes{Order: order, Cart: cart.Clear()}, nil
}

// isEmpty материализует корзину вне транзакции через кэш товаров.
func (c *CheckoutUseCase) isEmpty(ctx context.Context, cart domain.Cart) (bool, error) {
	if cart.IsEmpty() {
		return true, nil
	}

	ids, _ := cart.ProductIDs()
	products, err := c.reader.GetProducts(ctx, ids)
	if err != nil {
		return false, err
	}

	view, _, _ := domain.Materialize(cart, products)
	return view.IsEmpty(), nil
}

// decrementStock списывает остаток позиции; при нехватке возвращает InsufficientStockError с актуальным остатком.
func (c *CheckoutUseCase) decrementStock(ctx context.Context, item domain.OrderItem) error {
	ok, err := c.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	available := 0
	if product, err := c.productRepo.GetByID(ctx, item.ProductID); err == nil && product.IsActive {
		available = product.Stock
	}

	return &domain.InsufficientStockError{
		ProductID: item.ProductID,
		Requested: item.Quantity,
		Available: available,
	}
}

// validateCustomer проверяет обязательные поля формы. Пробелы по краям отбрасываются.
func (c *CheckoutUseCase) validateCustomer(req *PlaceOrderReq) error {
	if req == nil {
		req = &PlaceOrderReq{}
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.Notes = strings.TrimSpace(req.Notes)

	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	res := &ValidationError{}
	for _, fe := range fieldErrs {
		res.Fields = append(res.Fields, FieldError{
			Field:   formFieldName(fe.Field()),
			Message: fieldMessage(fe),
		})
	}

	return res
}

func customerFromReq(req *PlaceOrderReq) domain.Customer {
	return domain.Customer{
		Name:    req.CustomerName,
		Email:   req.CustomerEmail,
		Phone:   req.CustomerPhone,
		Address: req.ShippingAddress,
		Notes:   req.Notes,
	}
}

func indexProducts(products []*domain.Product) map[int64]*domain.Product {
	res := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		res[p.ID] = p
	}
	return res
}

// formFieldName переводит имя поля структуры в имя поля формы.
func formFieldName(field string) string {
	switch field {
	case "CustomerName":
		return "customer_name"
	case "CustomerEmail":
		return "customer_email"
	case "CustomerPhone":
		return "customer_phone"
	case "ShippingAddress":
		return "shipping_address"
	case "CategoryID":
		return "category_id"
	default:
		return strings.ToLower(field)
	}
}

func fieldMessage(fe validator.FieldError) string {
	name := formFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, e.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, e.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "internal"
	}
}
