package usecase

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
)

// CART USECASE

// CartRes — результат изменения корзины: новая корзина и товар, к которому относилась операция.
type CartRes struct {
	Cart    domain.Cart
	Product *domain.Product
}

// CartViewRes — материализованная корзина. Cart — корзина после удаления устаревших записей,
// Swept сообщает, что её нужно сохранить обратно в сессию.
type CartViewRes struct {
	View  *domain.CartView
	Cart  domain.Cart
	Swept bool
}

// CHECKOUT USECASE

// PlaceOrderReq — данные покупателя из формы оформления заказа.
type PlaceOrderReq struct {
	CustomerName    string `validate:"required,max=100"`
	CustomerEmail   string `validate:"required,email,max=254"`
	CustomerPhone   string `validate:"omitempty,max=20"`
	ShippingAddress string `validate:"required"`
	Notes           string
}

// PlaceOrderRes — результат успешного оформления заказа.
type PlaceOrderRes struct {
	Order *domain.Order
	Cart  domain.Cart // всегда пустая корзина, которую нужно сохранить в сессию
}

// FieldError описывает ошибку одного поля формы.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError содержит список ошибок полей формы.
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: %s", e.ErrValidation.Error(), strings.Join(msgs, "; "))
}

func (v *ValidationError) Unwrap() error {
	return e.ErrValidation
}

// Messages возвращает тексты ошибок в порядке полей формы.
func (v *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

// ORDER USECASE

// StatusChange — результат смены статуса заказа.
type StatusChange struct {
	OrderID   int64
	OldStatus domain.OrderStatus
	NewStatus domain.OrderStatus
}

// OrderFilter — фильтр списка заказов в админке.
type OrderFilter struct {
	Status domain.OrderStatus // пустое значение — все статусы
	Search string             // поиск по имени, email и телефону покупателя
	Page   int
	Limit  int
}

type OrderPage struct {
	Orders []*domain.Order
	Total  int
	Page   int
	Pages  int
}

// CATALOG USECASE

// ProductSort — допустимые варианты сортировки каталога.
type ProductSort string

const (
	SortNameAsc       ProductSort = "name"
	SortNameDesc      ProductSort = "-name"
	SortPriceAsc      ProductSort = "price"
	SortPriceDesc     ProductSort = "-price"
	SortCreatedAtAsc  ProductSort = "created_at"
	SortCreatedAtDesc ProductSort = "-created_at"
)

// ParseProductSort возвращает сортировку по умолчанию (-created_at) для неизвестных значений.
func ParseProductSort(s string) ProductSort {
	switch sort := ProductSort(s); sort {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortCreatedAtAsc, SortCreatedAtDesc:
		return sort
	default:
		return SortCreatedAtDesc
	}
}

// ProductFilter — параметры выборки товаров каталога.
type ProductFilter struct {
	CategoryID *int64
	Search     string
	Sort       ProductSort
	Page       int
	Limit      int
	OnlyActive bool
}

type ProductPage struct {
	Products []*domain.Product
	Total    int
	Page     int
	Pages    int
}

// CategoryWithCount — категория с количеством товаров в ней.
type CategoryWithCount struct {
	Category     *domain.Category
	ProductCount int
}

// HomeRes — данные главной страницы.
type HomeRes struct {
	Categories []*domain.Category
	Featured   []*domain.Product
}

// ADMIN CATALOG USECASE

// SaveCategoryReq — данные для создания или изменения категории.
type SaveCategoryReq struct {
	Name        string `validate:"required,max=100"`
	Description string
}

// SaveProductReq — данные для создания или изменения товара. Image необязателен.
type SaveProductReq struct {
	Name        string `validate:"required,max=200"`
	CategoryID  int64  `validate:"required,gt=0"`
	Description string
	Price       decimal.Decimal
	Stock       int `validate:"gte=0"`
	IsActive    bool
	Image       *ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// INFRASTRUCTURE

// UploadImageReq — запрос на загрузку изображения товара.
type UploadImageReq struct {
	ProductName string
	Image       ProductImage
}

// WriteRawMessageReq — готовое к отправке сообщение брокера.
type WriteRawMessageReq struct {
	Key       int64 // ID заказа: события одного заказа попадают в одну партицию
	EventType OutboxEventType
	Payload   []byte
}

// MAPPERS

func NewCartRes(cart domain.Cart, product *domain.Product) *CartRes {
	return &CartRes{Cart: cart, Product: product}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageReq(productName string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{
		ProductName: productName,
		Image:       image,
	}
}

func NewWriteRawMessageReq(key int64, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}

// pages считает количество страниц; для пустой выборки возвращает 1.
func pages(total, limit int) int {
	if limit <= 0 || total == 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// normalizePage приводит номер страницы к диапазону [1, pages].
func normalizePage(page, total, limit int) int {
	if page < 1 {
		return 1
	}
	if p := pages(total, limit); page > p {
		return p
	}
	return page
}
