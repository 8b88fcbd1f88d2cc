package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type OrderHandler struct {
	orderQuery    usecase.OrderQuery
	statusUpdater usecase.OrderStatusUpdater
	sessions      usecase.SessionOrders
	logger        logger.Logger
}

func NewOrderHandler(
	orderQuery usecase.OrderQuery,
	statusUpdater usecase.OrderStatusUpdater,
	sessions usecase.SessionOrders,
	logger logger.Logger,
) *OrderHandler {
	return &OrderHandler{orderQuery: orderQuery, statusUpdater: statusUpdater, sessions: sessions, logger: logger}
}

// orderConfirmation
//
//	@Summary		Подтверждение заказа
//	@Description	Доступно только сессии, оформившей заказ
//	@Tags			orders
//	@Produce	json
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	OrderDTO
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id}/confirmation [get]
func (h *OrderHandler) orderConfirmation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, e.ErrOrderNotFound)
		return
	}

	owns, err := h.sessions.OwnsOrder(r.Context(), SessionID(r.Context()), id)
	if err != nil {
		h.logger.Errorf(err, "check order %d session", id)
		WriteError(w, err)
		return
	}
	if !owns {
		WriteError(w, e.ErrOrderNotFound)
		return
	}

	h.writeOrder(w, r)
}

// getOrder
//
//	@Summary	Заказ с позициями
//	@Tags		admin
//	@Produce	json
//	@Security	StaffToken
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	OrderDTO
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/orders/{id} [get]
func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	h.writeOrder(w, r)
}

func (h *OrderHandler) writeOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, e.ErrOrderNotFound)
		return
	}

	order, err := h.orderQuery.GetOrder(r.Context(), id)
	if err != nil {
		if !errors.Is(err, e.ErrOrderNotFound) {
			h.logger.Errorf(err, "get order %d", id)
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderDTO(order))
}

// listOrders
//
//	@Summary	Список заказов
//	@Tags		admin
//	@Produce	json
//	@Security	StaffToken
//	@Param		status	query		string	false	"Фильтр по статусу"
//	@Param		search	query		string	false	"Поиск по имени, email и телефону"
//	@Param		page	query		int		false	"Номер страницы"
//	@Success	200		{object}	OrderPageDTO
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/orders [get]
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.orderQuery.ListOrders(r.Context(), usecase.OrderFilter{
		Status: domain.OrderStatus(q.Get("status")),
		Search: q.Get("search"),
		Page:   queryInt(r, "page", 1),
	})
	if err != nil {
		if !errors.Is(err, e.ErrInvalidStatus) {
			h.logger.Errorf(err, "list orders")
		}
		WriteError(w, err)
		return
	}

	res := OrderPageDTO{Orders: make([]OrderDTO, 0, len(page.Orders)), Total: page.Total, Page: page.Page, Pages: page.Pages}
	for _, o := range page.Orders {
		res.Orders = append(res.Orders, toOrderDTO(o))
	}
	WriteSuccess(w, http.StatusOK, res)
}

// changeOrderStatus
//
//	@Summary	Смена статуса заказа
//	@Tags		admin
//	@Accept		x-www-form-urlencoded
//	@Produce	json
//	@Security	StaffToken
//	@Param		order_id	formData	string	true	"ID заказа"
//	@Param		new_status	formData	string	true	"Новый статус"
//	@Success	200			{object}	AjaxResponse
//	@Router		/admin/orders/status [post]
func (h *OrderHandler) changeOrderStatus(w http.ResponseWriter, r *http.Request) {
	change, err := h.statusUpdater.ChangeStatus(r.Context(), r.PostFormValue("order_id"), r.PostFormValue("new_status"))
	if err != nil {
		switch {
		case errors.Is(err, e.ErrMissingParameter):
			writeAjax(w, false, "Missing order_id or new_status")
		case errors.Is(err, e.ErrInvalidStatus):
			writeAjax(w, false, "Invalid status")
		case errors.Is(err, e.ErrOrderNotFound):
			writeAjax(w, false, "Order not found")
		default:
			h.logger.Errorf(err, "change order status")
			writeAjax(w, false, e.ErrInternalServerError.Error())
		}
		return
	}

	h.logger.Infof("order %d: %s -> %s", change.OrderID, change.OldStatus, change.NewStatus)
	writeAjax(w, true, fmt.Sprintf("Order #%d status changed from %s to %s", change.OrderID, change.OldStatus, change.NewStatus))
}

// bulkChangeStatus
//
//	@Summary	Массовая смена статуса заказов
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	StaffToken
//	@Param		body	body		BulkStatusReq	true	"ID заказов и новый статус"
//	@Success	200		{object}	AjaxResponse
//	@Router		/admin/orders/bulk-status [post]
func (h *OrderHandler) bulkChangeStatus(w http.ResponseWriter, r *http.Request) {
	var body BulkStatusReq
	if err := decodeJSON(r, &body); err != nil {
		writeAjax(w, false, "Invalid request data")
		return
	}

	changes, err := h.statusUpdater.BulkChangeStatus(r.Context(), body.OrderIDs, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrMissingParameter):
			writeAjax(w, false, "Missing order_ids or status")
		case errors.Is(err, e.ErrInvalidStatus):
			writeAjax(w, false, "Invalid status")
		default:
			h.logger.Errorf(err, "bulk change order status")
			writeAjax(w, false, e.ErrInternalServerError.Error())
		}
		return
	}

	writeAjax(w, true, fmt.Sprintf("%d orders marked as %s.", len(changes), body.Status))
}
