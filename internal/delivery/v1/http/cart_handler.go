package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// flexInt принимает целое как числом, так и строкой ("3", " 3 ").
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type cartItemBody struct {
	ProductID flexInt  `json:"product_id"`
	Quantity  *flexInt `json:"quantity"`
}

func (b cartItemBody) quantity() int {
	if b.Quantity == nil {
		return 1
	}
	return int(*b.Quantity)
}

// addToCart
//
//	@Summary	Добавление товара в корзину
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CartItemReq		true	"Товар и количество (по умолчанию 1)"
//	@Success	200		{object}	AjaxResponse	"success=false при ошибке"
//	@Router		/cart/add [post]
func (h *CartHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAjax(w, false, "Invalid request data")
		return
	}

	ctx := r.Context()
	cart, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	quantity := body.quantity()
	res, err := h.cartUsecase.Add(ctx, cart, int64(body.ProductID), quantity)
	if err != nil {
		writeAjax(w, false, h.cartErrorMessage(err, quantity, true))
		return
	}

	if !h.saveCart(w, r, res.Cart) {
		return
	}
	writeAjax(w, true, fmt.Sprintf("%s added to cart successfully!", res.Product.Name))
}

// updateCart
//
//	@Summary	Изменение количества товара в корзине
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CartItemReq		true	"Товар и новое количество"
//	@Success	200		{object}	AjaxResponse
//	@Router		/cart/update [post]
func (h *CartHandler) updateCart(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAjax(w, false, "Invalid request data")
		return
	}

	cart, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	quantity := body.quantity()
	res, err := h.cartUsecase.Update(r.Context(), cart, int64(body.ProductID), quantity)
	if err != nil {
		writeAjax(w, false, h.cartErrorMessage(err, quantity, false))
		return
	}

	if !h.saveCart(w, r, res.Cart) {
		return
	}
	writeAjax(w, true, "Cart updated successfully!")
}

// removeFromCart
//
//	@Summary	Удаление товара из корзины
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CartItemReq		true	"Товар"
//	@Success	200		{object}	AjaxResponse
//	@Router		/cart/remove [post]
func (h *CartHandler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAjax(w, false, "Invalid request data")
		return
	}

	cart, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	res, err := h.cartUsecase.Remove(r.Context(), cart, int64(body.ProductID))
	if err != nil {
		writeAjax(w, false, h.cartErrorMessage(err, 0, false))
		return
	}

	if !h.saveCart(w, r, res) {
		return
	}
	writeAjax(w, true, "Item removed from cart")
}

// clearCart
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	AjaxResponse
//	@Router		/cart/clear [post]
func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	if !h.saveCart(w, r, h.cartUsecase.Clear(r.Context(), cart)) {
		return
	}
	writeAjax(w, true, "Cart cleared successfully!")
}

// viewCart
//
//	@Summary	Содержимое корзины
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartDTO
//	@Failure	500	{object}	ErrorResponse
//	@Router		/cart [get]
func (h *CartHandler) viewCart(w http.ResponseWriter, r *http.Request) {
	view, ok := h.currentView(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, http.StatusOK, toCartDTO(view))
}

// cartCount
//
//	@Summary	Количество товаров в корзине
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartCountDTO
//	@Router		/cart/count [get]
func (h *CartHandler) cartCount(w http.ResponseWriter, r *http.Request) {
	view, ok := h.currentView(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, http.StatusOK, CartCountDTO{Count: view.Count})
}

// currentView материализует корзину сессии и сохраняет её, если из неё были удалены устаревшие записи.
// При ошибке ответ уже записан.
func (h *CartHandler) currentView(w http.ResponseWriter, r *http.Request) (*domain.CartView, bool) {
	cart, ok := h.loadCart(w, r)
	if !ok {
		return nil, false
	}

	res, err := h.cartUsecase.View(r.Context(), cart)
	if err != nil {
		h.logger.Errorf(err, "cart view")
		WriteError(w, err)
		return nil, false
	}

	if res.Swept {
		if err := h.cartUsecase.Save(r.Context(), SessionID(r.Context()), res.Cart); err != nil {
			// просмотр корзины не должен падать из-за сессии
			h.logger.Warnf("save swept cart: %s", err.Error())
		}
	}

	return res.View, true
}

func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (domain.Cart, bool) {
	cart, err := h.cartUsecase.Load(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.logger.Errorf(err, "load cart")
		WriteError(w, err)
		return nil, false
	}
	return cart, true
}

func (h *CartHandler) saveCart(w http.ResponseWriter, r *http.Request, cart domain.Cart) bool {
	if err := h.cartUsecase.Save(r.Context(), SessionID(r.Context()), cart); err != nil {
		h.logger.Errorf(err, "save cart")
		WriteError(w, err)
		return false
	}
	return true
}

// cartErrorMessage переводит ошибку операции с корзиной в сообщение для покупателя.
func (h *CartHandler) cartErrorMessage(err error, quantity int, adding bool) string {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.Is(err, e.ErrInvalidQuantity):
		return "Invalid quantity"
	case errors.Is(err, e.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, e.ErrItemNotFound):
		return "Item not found in cart"
	case errors.As(err, &stockErr):
		if adding && quantity > stockErr.Available {
			return "Not enough stock available"
		}
		return fmt.Sprintf("Only %d items available in stock", stockErr.Available)
	default:
		h.logger.Errorf(err, "cart operation")
		return "Invalid request data"
	}
}
