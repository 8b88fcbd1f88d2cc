package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type CategoryHandler struct {
	adminUsecase usecase.AdminCatalogUC
	logger       logger.Logger
}

func NewCategoryHandler(adminUsecase usecase.AdminCatalogUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{adminUsecase: adminUsecase, logger: logger}
}

// createCategory
//
//	@Summary	Создание категории
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	StaffToken
//	@Param		body	body		CategoryReq		true	"Категория"
//	@Success	201		{object}	CategoryDTO
//	@Failure	409		{object}	ErrorResponse	"Категория уже существует"
//	@Router		/admin/categories [post]
func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var body CategoryReq
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	category, err := h.adminUsecase.CreateCategory(r.Context(), &usecase.SaveCategoryReq{Name: body.Name, Description: body.Description})
	if err != nil {
		h.writeErr(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryDTO(category))
}

// updateCategory
//
//	@Summary	Изменение категории
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	StaffToken
//	@Param		id		path		int				true	"ID категории"
//	@Param		body	body		CategoryReq		true	"Категория"
//	@Success	200		{object}	CategoryDTO
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/categories/{id} [put]
func (h *CategoryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, e.ErrCategoryNotFound)
		return
	}

	var body CategoryReq
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	category, err := h.adminUsecase.UpdateCategory(r.Context(), id, &usecase.SaveCategoryReq{Name: body.Name, Description: body.Description})
	if err != nil {
		h.writeErr(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryDTO(category))
}

// deleteCategory
//
//	@Summary	Удаление категории
//	@Tags		admin
//	@Security	StaffToken
//	@Param		id	path	int	true	"ID категории"
//	@Success	204
//	@Failure	409	{object}	ErrorResponse	"В категории есть товары"
//	@Router		/admin/categories/{id} [delete]
func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, e.ErrCategoryNotFound)
		return
	}

	if err := h.adminUsecase.DeleteCategory(r.Context(), id); err != nil {
		h.writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) writeErr(w http.ResponseWriter, err error) {
	if code, _ := ToHTTPResponse(err); code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "admin category operation")
	} else {
		h.logger.Warnf("%s", err.Error())
	}
	WriteError(w, err)
}
