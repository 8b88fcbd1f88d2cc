package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// CatalogUseCase реализует просмотр каталога покупателями.
type CatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cfg          *cfg.CatalogCfg
	logger       logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cfg *cfg.CatalogCfg,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Home возвращает первые категории и витрину: сначала товары с изображением, затем новые.
func (c *CatalogUseCase) Home(ctx context.Context) (*HomeRes, error) {
	const op = "CatalogUseCase.Home"

	categories, err := c.categoryRepo.List(ctx, c.cfg.HomeCategories)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	withImages, err := c.productRepo.Featured(ctx, true, nil, c.cfg.HomeFeaturedHalf)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	exclude := make([]int64, 0, len(withImages))
	for _, p := range withImages {
		exclude = append(exclude, p.ID)
	}

	newest, err := c.productRepo.Featured(ctx, false, exclude, c.cfg.HomeFeaturedHalf)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &HomeRes{
		Categories: make([]*domain.Category, 0, len(categories)),
		Featured:   append(withImages, newest...),
	}
	for _, cat := range categories {
		res.Categories = append(res.Categories, cat.Category)
	}

	return res, nil
}

// ListProducts возвращает страницу активных товаров с фильтром по категории и поиском.
// Несуществующая категория игнорируется, номер страницы вне диапазона приводится к ближайшему.
func (c *CatalogUseCase) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	const op = "CatalogUseCase.ListProducts"

	filter.OnlyActive = true
	filter.Sort = ParseProductSort(string(filter.Sort))
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit <= 0 {
		filter.Limit = c.cfg.PageSize
	}

	if filter.CategoryID != nil {
		if _, err := c.categoryRepo.GetByID(ctx, *filter.CategoryID); err != nil {
			c.logger.Debugf("ignoring category filter %d: %v", *filter.CategoryID, err)
			filter.CategoryID = nil
		}
	}

	total, err := c.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	filter.Page = normalizePage(filter.Page, total, filter.Limit)

	products, err := c.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Pages:    pages(total, filter.Limit),
	}, nil
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx, 0)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// GetProductPrice возвращает цену товара независимо от его активности.
func (c *CatalogUseCase) GetProductPrice(ctx context.Context, id int64) (decimal.Decimal, error) {
	const op = "CatalogUseCase.GetProductPrice"

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, e.Wrap(op, err)
	}

	return product.Price, nil
}
