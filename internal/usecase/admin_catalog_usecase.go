package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AdminCatalogUseCase реализует управление каталогом сотрудниками магазина.
type AdminCatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	txManager    TxManager
	imagesInfra  ImagesInfra
	reader       *ProductReader
	validate     *validator.Validate
	logger       logger.Logger
}

func NewAdminCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	txManager TxManager,
	imagesInfra ImagesInfra,
	reader *ProductReader,
	validate *validator.Validate,
	logger logger.Logger,
) *AdminCatalogUseCase {
	return &AdminCatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		txManager:    txManager,
		imagesInfra:  imagesInfra,
		reader:       reader,
		validate:     validate,
		logger:       logger,
	}
}

func (a *AdminCatalogUseCase) CreateCategory(ctx context.Context, req *SaveCategoryReq) (*domain.Category, error) {
	const op = "AdminCatalogUseCase.CreateCategory"

	req.Name = strings.TrimSpace(req.Name)
	if err := a.validate.Struct(req); err != nil {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	category, err := a.categoryRepo.Create(ctx, domain.NewCategory(req.Name, strings.TrimSpace(req.Description)))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (a *AdminCatalogUseCase) UpdateCategory(ctx context.Context, id int64, req *SaveCategoryReq) (*domain.Category, error) {
	const op = "AdminCatalogUseCase.UpdateCategory"

	req.Name = strings.TrimSpace(req.Name)
	if err := a.validate.Struct(req); err != nil {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	category := domain.NewCategory(req.Name, strings.TrimSpace(req.Description))
	category.ID = id

	res, err := a.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// DeleteCategory удаляет категорию; категорию с товарами удалить нельзя.
func (a *AdminCatalogUseCase) DeleteCategory(ctx context.Context, id int64) error {
	const op = "AdminCatalogUseCase.DeleteCategory"

	if err := a.categoryRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// CreateProduct создаёт товар и при наличии загружает изображение в MinIO.
// Если запись в БД не удалась, загруженное изображение удаляется в фоне.
func (a *AdminCatalogUseCase) CreateProduct(ctx context.Context, req *SaveProductReq) (*domain.Product, error) {
	const op = "AdminCatalogUseCase.CreateProduct"

	if err := a.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		product  *domain.Product
		imageKey string
	)
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := a.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			return err
		}

		newProduct := domain.NewProduct(req.Name, req.CategoryID, req.Description, req.Price, req.Stock, req.IsActive)
		if req.Image != nil {
			key, err := a.imagesInfra.UploadImage(ctx, NewUploadImageReq(req.Name, *req.Image))
			if err != nil {
				return err
			}
			imageKey = key
			newProduct.ImageKey = &imageKey
		}

		var err error
		product, err = a.productRepo.Create(ctx, newProduct)
		return err
	})
	if err != nil {
		if imageKey != "" {
			a.logger.Warnf("Cleaning up orphaned image after transaction failure. product_name: %s, error: %v", req.Name, e.Wrap(op, err))
			a.imagesInfra.CleanupImages([]string{imageKey})
		}
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("product %d (%s) created", product.ID, product.Name)
	return product, nil
}

// UpdateProduct изменяет товар. Новое изображение заменяет старое, старое удаляется после коммита.
func (a *AdminCatalogUseCase) UpdateProduct(ctx context.Context, id int64, req *SaveProductReq) (*domain.Product, error) {
	const op = "AdminCatalogUseCase.UpdateProduct"

	if err := a.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		product     *domain.Product
		newImageKey string
		oldImageKey string
	)
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := a.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := a.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			return err
		}

		updated := domain.NewProduct(req.Name, req.CategoryID, req.Description, req.Price, req.Stock, req.IsActive)
		updated.ID = id
		updated.ImageKey = current.ImageKey
		updated.CreatedAt = current.CreatedAt

		if req.Image != nil {
			key, err := a.imagesInfra.UploadImage(ctx, NewUploadImageReq(req.Name, *req.Image))
			if err != nil {
				return err
			}
			newImageKey = key
			if current.HasImage() {
				oldImageKey = *current.ImageKey
			}
			updated.ImageKey = &newImageKey
		}

		product, err = a.productRepo.Update(ctx, updated)
		return err
	})
	if err != nil {
		if newImageKey != "" {
			a.imagesInfra.CleanupImages([]string{newImageKey})
		}
		return nil, e.Wrap(op, err)
	}

	if oldImageKey != "" {
		a.imagesInfra.CleanupImages([]string{oldImageKey})
	}
	a.reader.Invalidate(ctx, []int64{id})

	return product, nil
}

// SetProductsActive включает или выключает товары (мягкое удаление).
func (a *AdminCatalogUseCase) SetProductsActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	const op = "AdminCatalogUseCase.SetProductsActive"

	if len(ids) == 0 {
		return 0, e.Wrap(op, e.ErrNoIDs)
	}

	updated, err := a.productRepo.SetActive(ctx, ids, active)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	a.reader.Invalidate(ctx, ids)
	a.logger.Infof("%d products set active=%t", updated, active)

	return updated, nil
}

// DeleteProducts удаляет товары в одной транзакции. Если хотя бы один товар есть в заказах,
// не удаляется ни один.
func (a *AdminCatalogUseCase) DeleteProducts(ctx context.Context, ids []int64) (int64, error) {
	const op = "AdminCatalogUseCase.DeleteProducts"

	if len(ids) == 0 {
		return 0, e.Wrap(op, e.ErrNoIDs)
	}

	var deleted []*domain.Product
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = a.productRepo.Delete(ctx, ids)
		return err
	})
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	var imageKeys []string
	for _, p := range deleted {
		if p.HasImage() {
			imageKeys = append(imageKeys, *p.ImageKey)
		}
	}
	a.imagesInfra.CleanupImages(imageKeys)
	a.reader.Invalidate(ctx, ids)
	a.logger.Infof("%d products deleted", len(deleted))

	return int64(len(deleted)), nil
}

// validateProduct проверяет корректность данных товара.
func (a *AdminCatalogUseCase) validateProduct(req *SaveProductReq) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if req.Stock < 0 {
		return e.ErrInvalidStock
	}
	if err := a.validate.Struct(req); err != nil {
		return e.ErrMissingFields
	}

	if req.Price.LessThan(decimal.Zero) {
		return e.ErrInvalidPrice
	}
	if req.Price.Exponent() < -2 && !req.Price.Equal(req.Price.Round(2)) {
		return e.ErrPricePrecision
	}

	return nil
}
