package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	cartUsecase    usecase.CartUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, cartUsecase usecase.CartUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, cartUsecase: cartUsecase, logger: logger}
}

// home
//
//	@Summary		Главная страница
//	@Description	Первые категории по алфавиту, избранные товары и количество товаров в корзине
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	HomeDTO
//	@Router			/home [get]
func (h *CatalogHandler) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.catalogUsecase.Home(ctx)
	if err != nil {
		h.logger.Errorf(err, "home")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, HomeDTO{
		Categories: toCategoryDTOs(res.Categories),
		Featured:   toProductDTOs(res.Featured),
		CartCount:  h.cartCount(r),
	})
}

// cartCount считает товары в корзине для шапки страницы. Ошибки не мешают отдать каталог.
func (h *CatalogHandler) cartCount(r *http.Request) int {
	ctx := r.Context()

	cart, err := h.cartUsecase.Load(ctx, SessionID(ctx))
	if err != nil {
		h.logger.Warnf("load cart for counter: %s", err.Error())
		return 0
	}

	res, err := h.cartUsecase.View(ctx, cart)
	if err != nil {
		h.logger.Warnf("cart counter: %s", err.Error())
		return 0
	}
	return res.View.Count
}

// listProducts
//
//	@Summary	Каталог товаров
//	@Tags		catalog
//	@Produce	json
//	@Param		category	query		int		false	"ID категории"
//	@Param		search		query		string	false	"Поиск по названию и описанию"
//	@Param		sort		query		string	false	"name, -name, price, -price, created_at, -created_at"
//	@Param		page		query		int		false	"Номер страницы"
//	@Success	200			{object}	ProductPageDTO
//	@Router		/products [get]
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := usecase.ProductFilter{
		Search: q.Get("search"),
		Sort:   usecase.ProductSort(q.Get("sort")),
		Page:   queryInt(r, "page", 1),
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil {
		filter.CategoryID = &id
	}

	page, err := h.catalogUsecase.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Errorf(err, "list products")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ProductPageDTO{
		Products: toProductDTOs(page.Products),
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
	})
}

// listCategories
//
//	@Summary	Категории с количеством товаров
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}	CategoryDTO
//	@Router		/categories [get]
func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		h.logger.Errorf(err, "list categories")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryCountDTOs(categories))
}

// productPrice
//
//	@Summary	Цена товара
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	PriceDTO
//	@Failure	404	{object}	map[string]string
//	@Router		/products/{id}/price [get]
func (h *CatalogHandler) productPrice(w http.ResponseWriter, r *http.Request) {
	notFound := map[string]string{"error": "Product not found"}

	id, err := pathID(r, "id")
	if err != nil {
		WriteSuccess(w, http.StatusNotFound, notFound)
		return
	}

	price, err := h.catalogUsecase.GetProductPrice(r.Context(), id)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			WriteSuccess(w, http.StatusNotFound, notFound)
			return
		}
		h.logger.Errorf(err, "product price %d", id)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, PriceDTO{Price: price.InexactFloat64()})
}

// health
//
//	@Summary	Проверка состояния
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	HealthDTO
//	@Router		/health [get]
func health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, HealthDTO{
		Status:    "healthy",
		Message:   "Storefront is running",
		Timestamp: time.Now().UTC(),
	})
}
