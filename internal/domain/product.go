package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID          int64
	Name        string
	CategoryID  int64
	Description string
	Price       decimal.Decimal // Цена с точностью до копеек
	Stock       int
	IsActive    bool
	ImageKey    *string // Ключ объекта в бакете, если изображение загружено
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(name string, categoryID int64, description string, price decimal.Decimal, stock int, isActive bool) *Product {
	return &Product{
		Name:        name,
		CategoryID:  categoryID,
		Description: description,
		Price:       price,
		Stock:       stock,
		IsActive:    isActive,
	}
}

// HasImage сообщает, есть ли у товара загруженное изображение.
func (p *Product) HasImage() bool {
	return p.ImageKey != nil && *p.ImageKey != ""
}

// CanSupply проверяет, хватает ли остатка на складе для указанного количества.
func (p *Product) CanSupply(quantity int) bool {
	return p.IsActive && quantity <= p.Stock
}
