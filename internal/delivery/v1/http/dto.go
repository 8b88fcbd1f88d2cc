package http

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// Денежные суммы отдаются строкой с двумя знаками после запятой.

type CategoryDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount *int   `json:"product_count,omitempty"`
}

type ProductDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CategoryID  int64  `json:"category_id"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
	ImageKey    string `json:"image_key,omitempty"`
}

type CartItemDTO struct {
	Product   ProductDTO `json:"product"`
	Quantity  int        `json:"quantity"`
	LineTotal string     `json:"line_total"`
}

type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total string        `json:"total"`
	Count int           `json:"count"`
}

type CartCountDTO struct {
	Count int `json:"count"`
}

type OrderItemDTO struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	TotalPrice  string `json:"total_price"`
}

type OrderDTO struct {
	ID              int64          `json:"id"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone,omitempty"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes,omitempty"`
	Status          string         `json:"status"`
	TotalAmount     string         `json:"total_amount"`
	TotalItems      int            `json:"total_items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Items           []OrderItemDTO `json:"items,omitempty"`
}

type ProductPageDTO struct {
	Products []ProductDTO `json:"products"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	Pages    int          `json:"pages"`
}

type OrderPageDTO struct {
	Orders []OrderDTO `json:"orders"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Pages  int        `json:"pages"`
}

type HomeDTO struct {
	Categories []CategoryDTO `json:"categories"`
	Featured   []ProductDTO  `json:"featured"`
	CartCount  int           `json:"cart_count"`
}

type PriceDTO struct {
	Price float64 `json:"price"`
}

type ValidationErrorsDTO struct {
	Errors []string `json:"errors"`
}

type HealthDTO struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryReq — тело создания и изменения категории.
type CategoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CartItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type BulkStatusReq struct {
	OrderIDs []int64 `json:"order_ids"`
	Status   string  `json:"status"`
}

func toCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toCategoryDTOs(categories []*domain.Category) []CategoryDTO {
	res := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		res = append(res, toCategoryDTO(c))
	}
	return res
}

func toCategoryCountDTOs(categories []usecase.CategoryWithCount) []CategoryDTO {
	res := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dto := toCategoryDTO(c.Category)
		count := c.ProductCount
		dto.ProductCount = &count
		res = append(res, dto)
	}
	return res
}

func toProductDTO(p *domain.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		IsActive:    p.IsActive,
	}
	if p.HasImage() {
		dto.ImageKey = *p.ImageKey
	}
	return dto
}

func toProductDTOs(products []*domain.Product) []ProductDTO {
	res := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		res = append(res, toProductDTO(p))
	}
	return res
}

func toCartDTO(view *domain.CartView) CartDTO {
	dto := CartDTO{Items: []CartItemDTO{}, Total: view.Total.StringFixed(2), Count: view.Count}
	for line := range view.Lines() {
		dto.Items = append(dto.Items, CartItemDTO{
			Product:   toProductDTO(line.Product),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal.StringFixed(2),
		})
	}
	return dto
}

func toOrderDTO(o *domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Status:          o.Status.String(),
		TotalAmount:     o.TotalAmount().StringFixed(2),
		TotalItems:      o.TotalItems(),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
			TotalPrice:  item.TotalPrice().StringFixed(2),
		})
	}
	return dto
}
