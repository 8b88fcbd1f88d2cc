package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// fakeCart — корзина поверх доменной логики с сессиями в памяти.
type fakeCart struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	sessions map[string]domain.Cart
	orders   map[string][]int64
}

func newFakeCart(products ...*domain.Product) *fakeCart {
	f := &fakeCart{products: map[int64]*domain.Product{}, sessions: map[string]domain.Cart{}, orders: map[string][]int64{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCart) Load(_ context.Context, sid string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[sid].Clone(), nil
}

func (f *fakeCart) Save(_ context.Context, sid string, cart domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sid] = cart.Clone()
	return nil
}

func (f *fakeCart) Add(_ context.Context, cart domain.Cart, productID int64, quantity int) (*usecase.CartRes, error) {
	p := f.products[productID]
	res, err := cart.Add(p, quantity)
	if err != nil {
		return nil, err
	}
	return usecase.NewCartRes(res, p), nil
}

func (f *fakeCart) Update(_ context.Context, cart domain.Cart, productID int64, quantity int) (*usecase.CartRes, error) {
	p := f.products[productID]
	res, err := cart.Update(p, quantity)
	if err != nil {
		return nil, err
	}
	return usecase.NewCartRes(res, p), nil
}

func (f *fakeCart) Remove(_ context.Context, cart domain.Cart, productID int64) (domain.Cart, error) {
	return cart.Remove(domain.CartKey(productID))
}

func (f *fakeCart) Clear(_ context.Context, cart domain.Cart) domain.Cart {
	return cart.Clear()
}

func (f *fakeCart) View(_ context.Context, cart domain.Cart) (*usecase.CartViewRes, error) {
	view, cleaned, swept := domain.Materialize(cart, f.products)
	return &usecase.CartViewRes{View: view, Cart: cleaned, Swept: swept}, nil
}

func (f *fakeCart) RememberOrder(_ context.Context, sid string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[sid] = append(f.orders[sid], orderID)
	return nil
}

func (f *fakeCart) OwnsOrder(_ context.Context, sid string, orderID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.orders[sid], orderID), nil
}

func (f *fakeCart) session(sid string) domain.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[sid]
}

type fakeCheckout struct {
	placeOrder func(cart domain.Cart, req *usecase.PlaceOrderReq) (*usecase.PlaceOrderRes, error)
}

func (f *fakeCheckout) PlaceOrder(_ context.Context, cart domain.Cart, req *usecase.PlaceOrderReq) (*usecase.PlaceOrderRes, error) {
	return f.placeOrder(cart, req)
}

type fakeOrders struct {
	orders  map[int64]*domain.Order
	bulkErr error
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, filter usecase.OrderFilter) (*usecase.OrderPage, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, e.ErrInvalidStatus
	}
	page := &usecase.OrderPage{Page: 1, Pages: 1}
	for _, o := range f.orders {
		if filter.Status == "" || o.Status == filter.Status {
			page.Orders = append(page.Orders, o)
		}
	}
	page.Total = len(page.Orders)
	return page, nil
}

func (f *fakeOrders) ChangeStatus(_ context.Context, orderID string, newStatus string) (*usecase.StatusChange, error) {
	if orderID == "" || newStatus == "" {
		return nil, e.ErrMissingParameter
	}
	status := domain.OrderStatus(newStatus)
	if !status.IsValid() {
		return nil, e.ErrInvalidStatus
	}
	for _, o := range f.orders {
		if domain.CartKey(o.ID) == orderID {
			change := &usecase.StatusChange{OrderID: o.ID, OldStatus: o.Status, NewStatus: status}
			o.Status = status
			return change, nil
		}
	}
	return nil, e.ErrOrderNotFound
}

func (f *fakeOrders) BulkChangeStatus(_ context.Context, ids []int64, newStatus string) ([]usecase.StatusChange, error) {
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	var res []usecase.StatusChange
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			res = append(res, usecase.StatusChange{OrderID: id, OldStatus: o.Status, NewStatus: domain.OrderStatus(newStatus)})
			o.Status = domain.OrderStatus(newStatus)
		}
	}
	return res, nil
}

type fakeCatalog struct {
	products map[int64]*domain.Product
}

func (f *fakeCatalog) Home(context.Context) (*usecase.HomeRes, error) {
	res := &usecase.HomeRes{Categories: []*domain.Category{{ID: 1, Name: "Electronics"}}}
	for _, p := range f.products {
		res.Featured = append(res.Featured, p)
	}
	return res, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter usecase.ProductFilter) (*usecase.ProductPage, error) {
	page := &usecase.ProductPage{Page: filter.Page, Pages: 1}
	for _, p := range f.products {
		if filter.CategoryID == nil || *filter.CategoryID == p.CategoryID {
			page.Products = append(page.Products, p)
		}
	}
	page.Total = len(page.Products)
	return page, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]usecase.CategoryWithCount, error) {
	return []usecase.CategoryWithCount{{Category: &domain.Category{ID: 1, Name: "Electronics"}, ProductCount: len(f.products)}}, nil
}

func (f *fakeCatalog) GetProductPrice(_ context.Context, id int64) (decimal.Decimal, error) {
	p, ok := f.products[id]
	if !ok {
		return decimal.Zero, e.ErrProductNotFound
	}
	return p.Price, nil
}

type fakeAdmin struct {
	usecase.AdminCatalogUC
	created []*usecase.SaveProductReq
	deleted []int64
}

func (f *fakeAdmin) CreateProduct(_ context.Context, req *usecase.SaveProductReq) (*domain.Product, error) {
	f.created = append(f.created, req)
	p := domain.NewProduct(req.Name, req.CategoryID, req.Description, req.Price, req.Stock, req.IsActive)
	p.ID = int64(len(f.created))
	if req.Image != nil {
		key := "products/" + strings.ToLower(req.Name) + ".png"
		p.ImageKey = &key
	}
	return p, nil
}

func (f *fakeAdmin) DeleteProducts(_ context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, e.ErrNoIDs
	}
	for _, id := range ids {
		if id == 13 {
			return 0, e.ErrProductInUse
		}
	}
	f.deleted = append(f.deleted, ids...)
	return int64(len(ids)), nil
}

func (f *fakeAdmin) CreateCategory(_ context.Context, req *usecase.SaveCategoryReq) (*domain.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, e.ErrMissingFields
	}
	if req.Name == "Books" {
		return nil, e.ErrCategoryExists
	}
	return &domain.Category{ID: 7, Name: req.Name, Description: req.Description}, nil
}

func (f *fakeAdmin) DeleteCategory(_ context.Context, id int64) error {
	if id == 1 {
		return e.ErrCategoryNotEmpty
	}
	return nil
}

type testEnv struct {
	handler  http.Handler
	cart     *fakeCart
	checkout *fakeCheckout
	orders   *fakeOrders
	admin    *fakeAdmin
}

func phoneProduct() *domain.Product {
	p := domain.NewProduct("Phone", 1, "Smartphone", decimal.RequireFromString("999.99"), 5, true)
	p.ID = 1
	return p
}

func testConfig() *cfg.Config {
	return &cfg.Config{
		Http:  &cfg.HTTPConfig{SwaggerURL: "http://localhost:8080/swagger/doc.json"},
		Minio: &cfg.MinIOCfg{MaxImageSize: 1 << 20},
		Redis: &cfg.RedisCfg{SessionTTL: time.Hour},
		Auth:  &cfg.AuthCfg{JWTSecret: testSecret, CookieName: "sid"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	phone := phoneProduct()
	en := &testEnv{
		cart:     newFakeCart(phone),
		checkout: &fakeCheckout{},
		orders:   &fakeOrders{orders: map[int64]*domain.Order{}},
		admin:    &fakeAdmin{},
	}

	r := chi.NewRouter()
	NewRouter(r, testConfig(), nil, logger.NewNop()).Init(&Usecases{
		Cart:     en.cart,
		Checkout: en.checkout,
		Orders:   en.orders,
		Statuses: en.orders,
		Catalog:  &fakeCatalog{products: map[int64]*domain.Product{phone.ID: phone}},
		Admin:    en.admin,
	})
	en.handler = r
	return en
}

// client хранит cookie сессии между запросами.
type client struct {
	t      *testing.T
	en     *testEnv
	cookie *http.Cookie
	token  string
}

func (en *testEnv) client(t *testing.T) *client {
	return &client{t: t, en: en}
}

func (c *client) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.en.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, "application/json", body)
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, "", "")
}

func (c *client) sid() string {
	require.NotNil(c.t, c.cookie)
	return c.cookie.Value
}

func staffToken(t *testing.T) string {
	t.Helper()
	token, err := IssueStaffToken(testSecret, "admin", time.Hour)
	require.NoError(t, err)
	return token
}
