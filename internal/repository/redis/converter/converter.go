package converter

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует товары между domain и моделью кэша.
type ProductConverter struct{}

func (ProductConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	if entity == nil {
		return nil
	}
	return &ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		CategoryID:  entity.CategoryID,
		Description: entity.Description,
		PriceCents:  entity.Price.Round(2).Shift(2).IntPart(),
		Stock:       entity.Stock,
		IsActive:    entity.IsActive,
		ImageKey:    entity.ImageKey,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductRedisModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		CategoryID:  model.CategoryID,
		Description: model.Description,
		Price:       decimal.New(model.PriceCents, -2),
		Stock:       model.Stock,
		IsActive:    model.IsActive,
		ImageKey:    model.ImageKey,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (c ProductConverter) ToArrRedisModel(entities []*domain.Product) []*ProductRedisModel {
	res := make([]*ProductRedisModel, 0, len(entities))
	for _, entity := range entities {
		if entity != nil {
			res = append(res, c.ToRedisModel(entity))
		}
	}
	return res
}

// CartConverter преобразует корзину между domain и моделью Redis.
type CartConverter struct{}

func (CartConverter) ToRedisModel(cart domain.Cart) *CartRedisModel {
	return &CartRedisModel{Items: map[string]int(cart.Clone())}
}

func (CartConverter) ToEntity(model *CartRedisModel) domain.Cart {
	if model == nil || model.Items == nil {
		return domain.NewCart()
	}
	return domain.Cart(model.Items)
}
