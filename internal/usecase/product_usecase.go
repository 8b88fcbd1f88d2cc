package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// ProductReader читает товары для отображения корзины: сначала из кэша, промахи — из БД.
type ProductReader struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductReader(productRepo ProductRepository, cacheRepo CacheRepository, logger logger.Logger) *ProductReader {
	return &ProductReader{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// GetProducts возвращает найденные товары по ID. Отсутствующие ID в результат не попадают.
func (p *ProductReader) GetProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	const op = "ProductReader.GetProducts"

	if len(ids) == 0 {
		return map[int64]*domain.Product{}, nil
	}

	// Поиск товаров в кэше
	cached, cacheErr := p.cacheRepo.GetProducts(ctx, ids)
	var nonCacheable []int64
	if cacheErr != nil {
		nonCacheable = ids
		cached = nil
	} else {
		for _, id := range ids {
			if _, ok := cached[id]; !ok {
				nonCacheable = append(nonCacheable, id)
			}
		}
	}

	result := make(map[int64]*domain.Product, len(ids))
	for id, product := range cached {
		result[id] = product
	}

	if len(nonCacheable) == 0 {
		return result, nil
	}

	// Поколения читаются до БД: если товар инвалидируют после чтения, запись в кэш не пройдёт
	var (
		generations map[int64]int64
		genErr      = cacheErr
	)
	if genErr == nil {
		generations, genErr = p.cacheRepo.Generations(ctx, nonCacheable)
		if genErr != nil {
			p.logger.Warnf("Failed to read cache generations: %v", e.Wrap(op, genErr))
		}
	}

	// Получение товаров из БД
	fromDB, err := p.productRepo.GetByIDs(ctx, nonCacheable)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	for _, product := range fromDB {
		result[product.ID] = product
	}

	// Фоновое добавление товаров в кэш
	if len(fromDB) > 0 && genErr == nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := p.cacheRepo.SetProducts(bgCtx, fromDB, generations); err != nil {
				p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return result, nil
}

// Invalidate удаляет товары из кэша. Ошибки только логируются.
func (p *ProductReader) Invalidate(ctx context.Context, ids []int64) {
	const op = "ProductReader.Invalidate"

	if len(ids) == 0 {
		return
	}

	if err := p.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		p.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}
