package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const (
	cartPath         = "/api/v1/cart"
	confirmationPath = "/api/v1/orders/%d/confirmation"
)

type CheckoutHandler struct {
	cartUsecase     usecase.CartUC
	checkoutUsecase usecase.CheckoutUC
	logger          logger.Logger
}

func NewCheckoutHandler(cartUsecase usecase.CartUC, checkoutUsecase usecase.CheckoutUC, logger logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{cartUsecase: cartUsecase, checkoutUsecase: checkoutUsecase, logger: logger}
}

type checkoutBody struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// checkoutPreview
//
//	@Summary		Предпросмотр заказа
//	@Description	Возвращает корзину; пустая корзина перенаправляет на /cart
//	@Tags			checkout
//	@Produce		json
//	@Success		200	{object}	CartDTO
//	@Success		303	"Корзина пуста"
//	@Router			/checkout [get]
func (h *CheckoutHandler) checkoutPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cart, err := h.cartUsecase.Load(ctx, SessionID(ctx))
	if err != nil {
		h.logger.Errorf(err, "load cart")
		WriteError(w, err)
		return
	}

	res, err := h.cartUsecase.View(ctx, cart)
	if err != nil {
		h.logger.Errorf(err, "cart view")
		WriteError(w, err)
		return
	}

	if res.Swept {
		if err := h.cartUsecase.Save(ctx, SessionID(ctx), res.Cart); err != nil {
			h.logger.Warnf("save swept cart: %s", err.Error())
		}
	}

	if res.View.IsEmpty() {
		http.Redirect(w, r, cartPath, http.StatusSeeOther)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartDTO(res.View))
}

// placeOrder
//
//	@Summary		Оформление заказа
//	@Description	Принимает форму или JSON. Успех перенаправляет на страницу подтверждения
//	@Tags			checkout
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		checkoutBody		true	"Данные покупателя"
//	@Success		303		"Заказ создан или корзина пуста"
//	@Failure		409		{object}	ErrorResponse		"Не хватает товара на складе"
//	@Failure		422		{object}	ValidationErrorsDTO	"Ошибки заполнения формы"
//	@Router			/checkout [post]
func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseCheckoutReq(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	sid := SessionID(ctx)
	cart, err := h.cartUsecase.Load(ctx, sid)
	if err != nil {
		h.logger.Errorf(err, "load cart")
		WriteError(w, err)
		return
	}

	res, err := h.checkoutUsecase.PlaceOrder(ctx, cart, req)
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			WriteSuccess(w, http.StatusUnprocessableEntity, ValidationErrorsDTO{Errors: vErr.Messages()})
		case errors.Is(err, e.ErrEmptyCart):
			http.Redirect(w, r, cartPath, http.StatusSeeOther)
		case errors.Is(err, e.ErrInsufficientStock):
			h.logger.Infof("checkout rejected for session %s: %s", sid, err.Error())
			writeStockConflict(w, err)
		default:
			h.logger.Errorf(err, "place order")
			WriteError(w, err)
		}
		return
	}

	// заказ уже создан, поэтому ошибки сессии покупателю не отдаются
	if err := h.cartUsecase.Save(ctx, sid, res.Cart); err != nil {
		h.logger.Errorf(err, "clear cart after order %d", res.Order.ID)
	}
	if err := h.cartUsecase.RememberOrder(ctx, sid, res.Order.ID); err != nil {
		h.logger.Errorf(err, "remember order %d for session", res.Order.ID)
	}

	h.logger.Infof("order %d placed: %s, %d items", res.Order.ID, res.Order.TotalAmount().StringFixed(2), res.Order.TotalItems())
	http.Redirect(w, r, fmt.Sprintf(confirmationPath, res.Order.ID), http.StatusSeeOther)
}

func writeStockConflict(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	msg := e.ErrInsufficientStock.Error()
	if errors.As(err, &stockErr) {
		msg = fmt.Sprintf("Only %d items available in stock", stockErr.Available)
	}
	WriteSuccess(w, http.StatusConflict, NewErrorResponse(http.StatusConflict, msg))
}

// parseCheckoutReq читает данные покупателя из JSON или из формы.
func parseCheckoutReq(r *http.Request) (*usecase.PlaceOrderReq, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body checkoutBody
		if err := decodeJSON(r, &body); err != nil {
			return nil, err
		}
		return &usecase.PlaceOrderReq{
			CustomerName:    body.CustomerName,
			CustomerEmail:   body.CustomerEmail,
			CustomerPhone:   body.CustomerPhone,
			ShippingAddress: body.ShippingAddress,
			Notes:           body.Notes,
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, e.ErrInvalidRequestData
	}
	return &usecase.PlaceOrderReq{
		CustomerName:    r.PostFormValue("customer_name"),
		CustomerEmail:   r.PostFormValue("customer_email"),
		CustomerPhone:   r.PostFormValue("customer_phone"),
		ShippingAddress: r.PostFormValue("shipping_address"),
		Notes:           r.PostFormValue("notes"),
	}, nil
}
