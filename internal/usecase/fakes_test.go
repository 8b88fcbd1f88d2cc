package usecase

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// memStore — in-memory состояние, общее для всех фейковых репозиториев.
type memStore struct {
	mu         sync.Mutex
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	orders     map[int64]domain.Order
	items      []domain.OrderItem
	outbox     []OutboxEvent
	nextID     int64

	// failAddItems заставляет AddItems вернуть ошибку (для проверки отката).
	failAddItems error
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		orders:     map[int64]domain.Order{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	orders     map[int64]domain.Order
	items      []domain.OrderItem
	outbox     []OutboxEvent
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		orders:     maps.Clone(s.orders),
		items:      slices.Clone(s.items),
		outbox:     slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = snap.categories
	s.products = snap.products
	s.orders = snap.orders
	s.items = snap.items
	s.outbox = snap.outbox
}

func (s *memStore) addCategory(name string) *domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.Category{ID: s.id(), Name: name, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	return &c
}

func (s *memStore) addProduct(name string, categoryID int64, price string, stock int) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Product{
		ID:         s.id(),
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	s.products[p.ID] = p
	return &p
}

func (s *memStore) product(id int64) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// fakeTx снимает снимок состояния перед fn и восстанавливает его при ошибке.
type fakeTx struct {
	store *memStore
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Name == p.Name {
			return nil, e.ErrProductExists
		}
	}
	res := *p
	res.ID = r.s.id()
	res.CreatedAt = time.Now()
	r.s.products[res.ID] = res
	return &res, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.ErrProductNotFound
	}
	res := *p
	r.s.products[p.ID] = res
	return &res, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*domain.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			res = append(res, &p)
		}
	}
	return res, nil
}

func (r *fakeProductRepo) filter(f ProductFilter) []*domain.Product {
	var res []*domain.Product
	for _, p := range r.s.products {
		if f.OnlyActive && !p.IsActive {
			continue
		}
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		res = append(res, &p)
	}
	slices.SortFunc(res, func(a, b *domain.Product) int {
		switch f.Sort {
		case SortNameAsc:
			return strings.Compare(a.Name, b.Name)
		case SortNameDesc:
			return strings.Compare(b.Name, a.Name)
		case SortPriceAsc:
			return a.Price.Cmp(b.Price)
		case SortPriceDesc:
			return b.Price.Cmp(a.Price)
		default:
			return int(b.ID - a.ID)
		}
	})
	return res
}

func (r *fakeProductRepo) Count(_ context.Context, f ProductFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filter(f)), nil
}

func (r *fakeProductRepo) List(_ context.Context, f ProductFilter) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(f)
	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return nil, nil
	}
	return all[start:min(start+f.Limit, len(all))], nil
}

func (r *fakeProductRepo) Featured(_ context.Context, withImage bool, exclude []int64, limit int) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(ProductFilter{OnlyActive: true})
	var res []*domain.Product
	for _, p := range all {
		if p.Stock <= 0 || slices.Contains(exclude, p.ID) || (withImage && !p.HasImage()) {
			continue
		}
		res = append(res, p)
		if len(res) == limit {
			break
		}
	}
	return res, nil
}

func (r *fakeProductRepo) SetActive(_ context.Context, ids []int64, active bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			p.IsActive = active
			r.s.products[id] = p
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, ids []int64) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*domain.Product
	for _, id := range ids {
		for _, item := range r.s.items {
			if item.ProductID == id {
				return nil, e.ErrProductInUse
			}
		}
		if p, ok := r.s.products[id]; ok {
			delete(r.s.products, id)
			res = append(res, &p)
		}
	}
	return res, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id int64, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !p.IsActive || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.s.products[id] = p
	return true, nil
}

type fakeCategoryRepo struct{ s *memStore }

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, e.ErrCategoryExists
		}
	}
	res := *c
	res.ID = r.s.id()
	r.s.categories[res.ID] = res
	return &res, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return nil, e.ErrCategoryNotFound
	}
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return e.ErrCategoryNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return e.ErrCategoryNotEmpty
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, limit int) ([]CategoryWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []CategoryWithCount
	for _, c := range r.s.categories {
		count := 0
		for _, p := range r.s.products {
			if p.CategoryID == c.ID {
				count++
			}
		}
		res = append(res, CategoryWithCount{Category: &c, ProductCount: count})
	}
	slices.SortFunc(res, func(a, b CategoryWithCount) int { return strings.Compare(a.Category.Name, b.Category.Name) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := *o
	res.ID = r.s.id()
	res.CreatedAt = time.Now()
	r.s.orders[res.ID] = res
	return &res, nil
}

func (r *fakeOrderRepo) AddItems(_ context.Context, orderID int64, items []domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAddItems != nil {
		return r.s.failAddItems
	}
	for _, item := range items {
		for _, existing := range r.s.items {
			if existing.OrderID == orderID && existing.ProductID == item.ProductID {
				return errors.New("duplicate key value violates unique constraint")
			}
		}
		item.ID = r.s.id()
		item.OrderID = orderID
		r.s.items = append(r.s.items, item)
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	o.Items = nil
	for _, item := range r.s.items {
		if item.OrderID == id {
			o.Items = append(o.Items, item)
		}
	}
	return &o, nil
}

func (r *fakeOrderRepo) filter(f OrderFilter) []*domain.Order {
	var res []*domain.Order
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(o.CustomerName+o.CustomerEmail+o.CustomerPhone, f.Search) {
			continue
		}
		res = append(res, &o)
	}
	slices.SortFunc(res, func(a, b *domain.Order) int { return int(b.ID - a.ID) })
	return res
}

func (r *fakeOrderRepo) Count(_ context.Context, f OrderFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filter(f)), nil
}

func (r *fakeOrderRepo) List(_ context.Context, f OrderFilter) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(f)
	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return nil, nil
	}
	return all[start:min(start+f.Limit, len(all))], nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (domain.OrderStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return "", e.ErrOrderNotFound
	}
	old := o.Status
	o.Status = status
	r.s.orders[id] = o
	return old, nil
}

func (r *fakeOrderRepo) UpdateStatuses(_ context.Context, ids []int64, status domain.OrderStatus) (map[int64]domain.OrderStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := map[int64]domain.OrderStatus{}
	for _, id := range ids {
		o, ok := r.s.orders[id]
		if !ok {
			continue
		}
		res[id] = o.Status
		o.Status = status
		r.s.orders[id] = o
	}
	return res, nil
}

type fakeOutboxRepo struct{ s *memStore }

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := *event
	res.ID = r.s.id()
	r.s.outbox = append(r.s.outbox, res)
	return &res, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error {
	return nil
}

func (r *fakeOutboxRepo) ReleaseStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) events() []OutboxEvent {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.outbox)
}

// fakeCache — кэш товаров в памяти с поколениями, как в Redis.
// Если задан fillGate, SetProducts ждёт его закрытия перед записью.
type fakeCache struct {
	mu       sync.Mutex
	data     map[int64]domain.Product
	gens     map[int64]int64
	deleted  []int64
	failGet  bool
	fillGate chan struct{}
	filled   chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[int64]domain.Product{}, gens: map[int64]int64{}}
}

func (c *fakeCache) GetProducts(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("redis: connection refused")
	}
	res := map[int64]*domain.Product{}
	for _, id := range ids {
		if p, ok := c.data[id]; ok {
			res[id] = &p
		}
	}
	return res, nil
}

func (c *fakeCache) Generations(_ context.Context, ids []int64) (map[int64]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[int64]int64, len(ids))
	for _, id := range ids {
		res[id] = c.gens[id]
	}
	return res, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []*domain.Product, generations map[int64]int64) error {
	c.mu.Lock()
	gate, filled := c.fillGate, c.filled
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	for _, p := range products {
		if gen, ok := generations[p.ID]; ok && gen == c.gens[p.ID] {
			c.data[p.ID] = *p
		}
	}
	c.mu.Unlock()

	if filled != nil {
		filled <- struct{}{}
	}
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.data, id)
		c.gens[id]++
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

// holdFills задерживает фоновые записи в кэш до вызова release.
func (c *fakeCache) holdFills() (release func(), filled <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gate := make(chan struct{})
	done := make(chan struct{}, 8)
	c.fillGate, c.filled = gate, done
	return func() { close(gate) }, done
}

func (c *fakeCache) put(p *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[p.ID] = *p
}

func (c *fakeCache) wasDeleted(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.deleted, id)
}

type fakeCartRepo struct {
	mu     sync.Mutex
	carts  map[string]domain.Cart
	orders map[string][]int64
}

func (r *fakeCartRepo) AddOrder(_ context.Context, sid string, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.orders == nil {
		r.orders = map[string][]int64{}
	}
	r.orders[sid] = append(r.orders[sid], orderID)
	return nil
}

func (r *fakeCartRepo) HasOrder(_ context.Context, sid string, orderID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.orders[sid], orderID), nil
}

func (r *fakeCartRepo) Get(_ context.Context, sid string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[sid].Clone(), nil
}

func (r *fakeCartRepo) Save(_ context.Context, sid string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.carts == nil {
		r.carts = map[string]domain.Cart{}
	}
	r.carts[sid] = cart.Clone()
	return nil
}

type fakeImages struct {
	mu       sync.Mutex
	uploaded []string
	cleaned  []string
	fail     error
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	key := "products/" + req.ProductName + ".png"
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

// fakeMetrics считает вызовы бизнес-метрик.
type fakeMetrics struct {
	mu             sync.Mutex
	placed         int
	failed         []string
	statusChanges  int
	cartOperations map[string]int
}

func (m *fakeMetrics) CartChanged(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cartOperations == nil {
		m.cartOperations = map[string]int{}
	}
	if success {
		m.cartOperations[operation]++
	}
}

func (m *fakeMetrics) OrderPlaced(decimal.Decimal, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed++
}

func (m *fakeMetrics) CheckoutFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, reason)
}

func (m *fakeMetrics) OrderStatusChanged(domain.OrderStatus, domain.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusChanges++
}

// env собирает все usecase'ы поверх общего memStore.
type env struct {
	store    *memStore
	tx       *fakeTx
	cache    *fakeCache
	images   *fakeImages
	metrics  *fakeMetrics
	products *fakeProductRepo
	orders   *fakeOrderRepo
	outbox   *fakeOutboxRepo

	cart     *CartUseCase
	checkout *CheckoutUseCase
	order    *OrderUseCase
	catalog  *CatalogUseCase
	admin    *AdminCatalogUseCase
}

func newEnv() *env {
	store := newMemStore()
	log := logger.NewNop()
	v := validator.New(validator.WithRequiredStructEnabled())

	en := &env{
		store:    store,
		tx:       &fakeTx{store: store},
		cache:    newFakeCache(),
		images:   &fakeImages{},
		metrics:  &fakeMetrics{},
		products: &fakeProductRepo{s: store},
		orders:   &fakeOrderRepo{s: store},
		outbox:   &fakeOutboxRepo{s: store},
	}
	categories := &fakeCategoryRepo{s: store}
	reader := NewProductReader(en.products, en.cache, log)

	en.cart = NewCartUC(&fakeCartRepo{}, en.products, reader, en.metrics, log)
	en.checkout = NewCheckoutUC(en.products, en.orders, en.outbox, en.tx, reader, v, en.metrics, log)
	en.order = NewOrderUC(en.orders, en.outbox, en.tx, en.metrics, log, 20)
	en.catalog = NewCatalogUC(en.products, categories, catalogCfg(), log)
	en.admin = NewAdminCatalogUC(en.products, categories, en.tx, en.images, reader, v, log)

	return en
}

func validCustomer() *PlaceOrderReq {
	return &PlaceOrderReq{
		CustomerName:    "Ann Smith",
		CustomerEmail:   "ann@example.com",
		ShippingAddress: "1 Main st, Springfield",
	}
}
