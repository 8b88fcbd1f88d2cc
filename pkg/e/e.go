package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrStatusBadRequest   = fmt.Errorf("bad request")
	ErrInvalidRequestData = fmt.Errorf("invalid request data")
	ErrExpectedMultipart  = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrInvalidPrice       = fmt.Errorf("invalid price")
	ErrPricePrecision     = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidStock       = fmt.Errorf("stock must be a non-negative integer")
	ErrFileTooLarge       = fmt.Errorf("file too large")
	ErrUnsupportedMedia   = fmt.Errorf("unsupported media type")
	ErrNoIDs              = fmt.Errorf("no ids provided")

	// Корзина и оформление заказа
	ErrValidation        = fmt.Errorf("validation error")
	ErrInvalidQuantity   = fmt.Errorf("invalid quantity")
	ErrInsufficientStock = fmt.Errorf("not enough stock available")
	ErrItemNotFound      = fmt.Errorf("item not found in cart")
	ErrEmptyCart         = fmt.Errorf("cart is empty")

	// Заказы
	ErrMissingParameter = fmt.Errorf("missing order_id or new_status")
	ErrInvalidStatus    = fmt.Errorf("invalid status")

	// 401 / 403
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrForbidden    = fmt.Errorf("forbidden")

	// 404 Not Found
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrCategoryNotFound = fmt.Errorf("category not found")
	ErrOrderNotFound    = fmt.Errorf("order not found")

	// 409 Conflict
	ErrCategoryExists   = fmt.Errorf("category already exists")
	ErrProductExists    = fmt.Errorf("product with this name already exists")
	ErrCategoryNotEmpty = fmt.Errorf("category still has products")
	ErrProductInUse     = fmt.Errorf("product is referenced by orders")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Некорректное окружение
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
