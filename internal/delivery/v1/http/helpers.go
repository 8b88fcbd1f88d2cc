package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AjaxResponse — ответ операций корзины и смены статуса заказа.
type AjaxResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// IDsRequest — тело массовых операций над товарами.
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var httpErrors = []struct {
	err  error
	code int
}{
	{e.ErrStatusBadRequest, http.StatusBadRequest},
	{e.ErrInvalidRequestData, http.StatusBadRequest},
	{e.ErrExpectedMultipart, http.StatusBadRequest},
	{e.ErrMissingFields, http.StatusBadRequest},
	{e.ErrInvalidPrice, http.StatusBadRequest},
	{e.ErrPricePrecision, http.StatusBadRequest},
	{e.ErrInvalidStock, http.StatusBadRequest},
	{e.ErrNoIDs, http.StatusBadRequest},
	{e.ErrInvalidQuantity, http.StatusBadRequest},
	{e.ErrMissingParameter, http.StatusBadRequest},
	{e.ErrInvalidStatus, http.StatusBadRequest},
	{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{e.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
	{e.ErrUnauthorized, http.StatusUnauthorized},
	{e.ErrForbidden, http.StatusForbidden},
	{e.ErrProductNotFound, http.StatusNotFound},
	{e.ErrCategoryNotFound, http.StatusNotFound},
	{e.ErrOrderNotFound, http.StatusNotFound},
	{e.ErrItemNotFound, http.StatusNotFound},
	{e.ErrCategoryExists, http.StatusConflict},
	{e.ErrProductExists, http.StatusConflict},
	{e.ErrCategoryNotEmpty, http.StatusConflict},
	{e.ErrProductInUse, http.StatusConflict},
	{e.ErrInsufficientStock, http.StatusConflict},
	{e.ErrEmptyCart, http.StatusConflict},
	{e.ErrValidation, http.StatusUnprocessableEntity},
}

// ToHTTPResponse переводит ошибку usecase в HTTP-статус и безопасное сообщение.
// Неизвестные ошибки превращаются в 500 без подробностей.
func ToHTTPResponse(err error) (int, string) {
	for _, he := range httpErrors {
		if errors.Is(err, he.err) {
			return he.code, he.err.Error()
		}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAjax отвечает в формате {success, message} со статусом 200.
func writeAjax(w http.ResponseWriter, success bool, message string) {
	WriteSuccess(w, http.StatusOK, AjaxResponse{Success: success, Message: message})
}

// decodeJSON читает JSON-тело запроса. Любая ошибка разбора даёт e.ErrInvalidRequestData.
func decodeJSON(r *http.Request, dst any) error {
	const maxBody = 1 << 20

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), e.ErrInvalidRequestData)
	}
	return nil
}

// pathID читает положительный числовой параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrStatusBadRequest
	}
	return id, nil
}

// queryInt читает необязательный целый параметр запроса; пустое или некорректное значение даёт def.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// parsePrice разбирает цену вида "599.99" или "600".
// Возвращает ошибку, если формат неверный, больше двух знаков после запятой,
// значение отрицательное или превышает разумный предел.
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, e.ErrMissingFields
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return decimal.Zero, e.ErrInvalidPrice
	}

	// Максимум столбца price_cents с запасом: 1 млрд
	if d.GreaterThan(decimal.NewFromInt(1_000_000_000)) {
		return decimal.Zero, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, e.ErrPricePrecision
	}

	return d.Round(2), nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

// parseImage читает необязательный файл изображения из поля формы.
func parseImage(form *multipart.Form, field string, maxSize int64) (*usecase.ProductImage, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}

	fh := form.File[field][0]
	data, mimeType, err := readFile(fh, maxSize)
	if err != nil {
		return nil, err
	}

	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}

// formBool разбирает флажок формы: "true", "on", "1" считаются истиной; пустое значение даёт def.
func formBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
