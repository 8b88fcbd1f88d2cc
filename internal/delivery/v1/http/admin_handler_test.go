package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffOnly(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)

	expired, err := IssueStaffToken(testSecret, "admin", -time.Minute)
	require.NoError(t, err)

	customer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, StaffClaims{
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	foreign, err := IssueStaffToken("other-secret", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "no token", token: "", want: http.StatusUnauthorized},
		{name: "garbage", token: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "expired", token: expired, want: http.StatusUnauthorized},
		{name: "foreign secret", token: foreign, want: http.StatusUnauthorized},
		{name: "wrong role", token: customer, want: http.StatusForbidden},
		{name: "staff", token: staffToken(t), want: http.StatusOK},
	}

	for _, tt := range tests {
		c := en.client(t)
		c.token = tt.token
		rec := c.get("/api/v1/admin/orders")
		assert.Equal(t, tt.want, rec.Code, tt.name)
	}
}

func TestOrderHandler_ChangeStatus(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	en.orders.orders[5] = &domain.Order{ID: 5, Status: domain.OrderStatusPending}
	c := en.client(t)
	c.token = staffToken(t)

	post := func(form url.Values) AjaxResponse {
		rec := c.do(http.MethodPost, "/api/v1/admin/orders/status", "application/x-www-form-urlencoded", form.Encode())
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeAjax(t, rec.Body.Bytes())
	}

	res := post(url.Values{"order_id": {"5"}, "new_status": {"shipped"}})
	assert.True(t, res.Success)
	assert.Equal(t, "Order #5 status changed from pending to shipped", res.Message)
	assert.Equal(t, domain.OrderStatusShipped, en.orders.orders[5].Status)

	res = post(url.Values{"order_id": {"5"}})
	assert.Equal(t, "Missing order_id or new_status", res.Message)

	res = post(url.Values{"order_id": {"5"}, "new_status": {"bogus"}})
	assert.Equal(t, "Invalid status", res.Message)

	res = post(url.Values{"order_id": {"99"}, "new_status": {"delivered"}})
	assert.False(t, res.Success)
	assert.Equal(t, "Order not found", res.Message)
	assert.Equal(t, domain.OrderStatusShipped, en.orders.orders[5].Status)
}

func TestOrderHandler_BulkAndQueries(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	en.orders.orders[1] = &domain.Order{ID: 1, Status: domain.OrderStatusPending, Items: []domain.OrderItem{
		{ProductID: 1, ProductName: "Phone", Quantity: 3, Price: phoneProduct().Price},
	}}
	en.orders.orders[2] = &domain.Order{ID: 2, Status: domain.OrderStatusPending}
	c := en.client(t)
	c.token = staffToken(t)

	rec := c.postJSON("/api/v1/admin/orders/bulk-status", `{"order_ids": [1, 2], "status": "processing"}`)
	res := decodeAjax(t, rec.Body.Bytes())
	assert.True(t, res.Success)
	assert.Equal(t, "2 orders marked as processing.", res.Message)

	rec = c.get("/api/v1/admin/orders?status=processing")
	require.Equal(t, http.StatusOK, rec.Code)
	var page OrderPageDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)

	rec = c.get("/api/v1/admin/orders?status=lost")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.get("/api/v1/admin/orders/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var order OrderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "2999.97", order.TotalAmount)
	assert.Equal(t, 3, order.TotalItems)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "2999.97", order.Items[0].TotalPrice)

	// чужое подтверждение не раскрывается даже существующим заказом
	public := en.client(t)
	rec = public.get("/api/v1/orders/1/confirmation")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func productForm(t *testing.T, fields map[string]string, image []byte) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "phone.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.String()
}

func TestProductHandler_Create(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)
	c.token = staffToken(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	ct, body := productForm(t, map[string]string{
		"name":        "Tablet",
		"category_id": "1",
		"price":       "499.90",
		"stock":       "30",
		"is_active":   "on",
	}, png)

	rec := c.do(http.MethodPost, "/api/v1/admin/products", ct, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto ProductDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "499.90", dto.Price)
	assert.NotEmpty(t, dto.ImageKey)

	require.Len(t, en.admin.created, 1)
	req := en.admin.created[0]
	require.NotNil(t, req.Image)
	assert.Equal(t, "image/png", req.Image.MimeType)
	assert.True(t, req.IsActive)
}

func TestProductHandler_CreateRejectsBadInput(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)
	c.token = staffToken(t)

	base := func() map[string]string {
		return map[string]string{"name": "Tablet", "category_id": "1", "price": "10.00", "stock": "1"}
	}

	tests := []struct {
		name   string
		modify func(map[string]string)
		want   int
	}{
		{name: "three decimals", modify: func(f map[string]string) { f["price"] = "10.005" }, want: http.StatusBadRequest},
		{name: "text price", modify: func(f map[string]string) { f["price"] = "ten" }, want: http.StatusBadRequest},
		{name: "missing name", modify: func(f map[string]string) { delete(f, "name") }, want: http.StatusBadRequest},
		{name: "bad stock", modify: func(f map[string]string) { f["stock"] = "many" }, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		fields := base()
		tt.modify(fields)
		ct, body := productForm(t, fields, nil)
		rec := c.do(http.MethodPost, "/api/v1/admin/products", ct, body)
		assert.Equal(t, tt.want, rec.Code, tt.name)
	}

	rec := c.postJSON("/api/v1/admin/products", `{"name": "Tablet"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, en.admin.created)
}

func TestProductHandler_Delete(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)
	c.token = staffToken(t)

	rec := c.postJSON("/api/v1/admin/products/delete", `{"ids": [3, 13]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, en.admin.deleted)

	rec = c.postJSON("/api/v1/admin/products/delete", `{"ids": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postJSON("/api/v1/admin/products/delete", `{"ids": [3, 4]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully deleted 2 products.", decodeAjax(t, rec.Body.Bytes()).Message)
}

func TestCategoryHandler(t *testing.T) {
	t.Parallel()

	en := newTestEnv(t)
	c := en.client(t)
	c.token = staffToken(t)

	rec := c.postJSON("/api/v1/admin/categories", `{"name": "Toys", "description": "Games"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = c.postJSON("/api/v1/admin/categories", `{"name": "Books"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.postJSON("/api/v1/admin/categories", `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodDelete, "/api/v1/admin/categories/1", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodDelete, "/api/v1/admin/categories/2", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
