package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type ProductHandler struct {
	adminUsecase usecase.AdminCatalogUC
	maxImageSize int64
	logger       logger.Logger
}

func NewProductHandler(adminUsecase usecase.AdminCatalogUC, maxImageSize int64, logger logger.Logger) *ProductHandler {
	return &ProductHandler{adminUsecase: adminUsecase, maxImageSize: maxImageSize, logger: logger}
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Создает товар в каталоге, изображение необязательно
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		StaffToken
//	@Param			name		formData	string			true	"Название товара"
//	@Param			category_id	formData	int				true	"ID категории"
//	@Param			description	formData	string			false	"Описание"
//	@Param			price		formData	string			true	"Цена, не более двух знаков после запятой"
//	@Param			stock		formData	int				true	"Остаток на складе"
//	@Param			is_active	formData	bool			false	"Показывать в каталоге (по умолчанию true)"
//	@Param			image		formData	file			false	"Изображение товара"
//	@Success		201			{object}	ProductDTO		"Успешное создание"
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409			{object}	ErrorResponse	"Товар с таким названием уже есть"
//	@Router			/admin/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := p.readProductForm(w, r)
	if !ok {
		return
	}

	product, err := p.adminUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		p.writeErr(w, err)
		return
	}

	p.logger.Infof("product %d %q created", product.ID, product.Name)
	WriteSuccess(w, http.StatusCreated, toProductDTO(product))
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Новое изображение заменяет старое, без изображения текущее сохраняется
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		StaffToken
//	@Param			id			path		int				true	"ID товара"
//	@Param			name		formData	string			true	"Название товара"
//	@Param			category_id	formData	int				true	"ID категории"
//	@Param			description	formData	string			false	"Описание"
//	@Param			price		formData	string			true	"Цена"
//	@Param			stock		formData	int				true	"Остаток на складе"
//	@Param			is_active	formData	bool			false	"Показывать в каталоге"
//	@Param			image		formData	file			false	"Новое изображение"
//	@Success		200			{object}	ProductDTO
//	@Failure		404			{object}	ErrorResponse
//	@Router			/admin/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	req, ok := p.readProductForm(w, r)
	if !ok {
		return
	}

	product, err := p.adminUsecase.UpdateProduct(r.Context(), id, req)
	if err != nil {
		p.writeErr(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductDTO(product))
}

// activateProducts
//
//	@Summary	Включение товаров в каталог
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	StaffToken
//	@Param		body	body		IDsRequest	true	"ID товаров"
//	@Success	200		{object}	AjaxResponse
//	@Router		/admin/products/activate [post]
func (p *ProductHandler) activateProducts(w http.ResponseWriter, r *http.Request) {
	p.setActive(w, r, true)
}

// deactivateProducts
//
//	@Summary	Скрытие товаров из каталога
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	StaffToken
//	@Param		body	body		IDsRequest	true	"ID товаров"
//	@Success	200		{object}	AjaxResponse
//	@Router		/admin/products/deactivate [post]
func (p *ProductHandler) deactivateProducts(w http.ResponseWriter, r *http.Request) {
	p.setActive(w, r, false)
}

func (p *ProductHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	var body IDsRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	updated, err := p.adminUsecase.SetProductsActive(r.Context(), body.IDs, active)
	if err != nil {
		p.writeErr(w, err)
		return
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	WriteSuccess(w, http.StatusOK, AjaxResponse{Success: true, Message: fmt.Sprintf("%d products %s successfully.", updated, verb)})
}

// deleteProducts
//
//	@Summary		Удаление товаров
//	@Description	Удаляет все товары в одной транзакции; товар из заказа отменяет удаление всей пачки
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		StaffToken
//	@Param			body	body		IDsRequest		true	"ID товаров"
//	@Success		200		{object}	AjaxResponse
//	@Failure		409		{object}	ErrorResponse	"Товар используется в заказах"
//	@Router			/admin/products/delete [post]
func (p *ProductHandler) deleteProducts(w http.ResponseWriter, r *http.Request) {
	var body IDsRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	deleted, err := p.adminUsecase.DeleteProducts(r.Context(), body.IDs)
	if err != nil {
		p.writeErr(w, err)
		return
	}

	p.logger.Infof("%d products deleted", deleted)
	WriteSuccess(w, http.StatusOK, AjaxResponse{Success: true, Message: fmt.Sprintf("Successfully deleted %d products.", deleted)})
}

// readProductForm разбирает multipart-форму товара. При ошибке ответ уже записан.
func (p *ProductHandler) readProductForm(w http.ResponseWriter, r *http.Request) (*usecase.SaveProductReq, bool) {
	const maxMemory = 8 << 20

	r.Body = http.MaxBytesReader(w, r.Body, p.maxImageSize+maxMemory)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return nil, false
	}

	req, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return nil, false
	}

	image, err := parseImage(r.MultipartForm, "image", p.maxImageSize)
	if err != nil {
		p.logger.Warnf("product image rejected: %s", err.Error())
		WriteError(w, err)
		return nil, false
	}
	req.Image = image

	return req, true
}

func (p *ProductHandler) writeErr(w http.ResponseWriter, err error) {
	if code, _ := ToHTTPResponse(err); code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "admin product operation")
	} else {
		p.logger.Warnf("%s", err.Error())
	}
	WriteError(w, err)
}

func parseProductForm(r *http.Request) (*usecase.SaveProductReq, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return nil, e.ErrMissingFields
	}

	categoryID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("category_id")), 10, 64)
	if err != nil || categoryID <= 0 {
		return nil, e.ErrMissingFields
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		return nil, err
	}

	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock")))
	if err != nil {
		return nil, e.ErrInvalidStock
	}

	return &usecase.SaveProductReq{
		Name:        name,
		CategoryID:  categoryID,
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		Stock:       stock,
		IsActive:    formBool(r.FormValue("is_active"), true),
	}, nil
}
