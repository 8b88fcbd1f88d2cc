package http

import (
	"net/http"

	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Usecases — зависимости обработчиков.
type Usecases struct {
	Cart     usecase.CartUC
	Checkout usecase.CheckoutUC
	Orders   usecase.OrderQuery
	Statuses usecase.OrderStatusUpdater
	Catalog  usecase.CatalogUC
	Admin    usecase.AdminCatalogUC
}

// Metrics — HTTP-метрики и их выдача для Prometheus.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Router struct {
	router  *chi.Mux
	cfg     *cfg.Config
	metrics Metrics
	logger  logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.Config, metrics Metrics, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, metrics: metrics, logger: logger}
}

func (r *Router) Init(uc *Usecases) {
	r.router.Use(middleware.RequestID, middleware.RealIP, RequestLogger(r.logger), middleware.Recoverer)
	if r.metrics != nil {
		r.router.Use(r.metrics.Middleware)
		r.router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	r.router.Get("/health", health)
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.Http.SwaggerURL), // ссылка на JSON
	))

	cartHandler := NewCartHandler(uc.Cart, r.logger)
	checkoutHandler := NewCheckoutHandler(uc.Cart, uc.Checkout, r.logger)
	catalogHandler := NewCatalogHandler(uc.Catalog, uc.Cart, r.logger)
	orderHandler := NewOrderHandler(uc.Orders, uc.Statuses, uc.Cart, r.logger)
	productHandler := NewProductHandler(uc.Admin, r.cfg.Minio.MaxImageSize, r.logger)
	categoryHandler := NewCategoryHandler(uc.Admin, r.logger)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Group(func(shop chi.Router) {
			shop.Use(Session(r.cfg.Auth, r.cfg.Redis.SessionTTL))
			registerCartRoutes(shop, cartHandler, checkoutHandler)
			registerCatalogRoutes(shop, catalogHandler, orderHandler)
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(StaffOnly(r.cfg.Auth.JWTSecret, r.logger))
			registerAdminRoutes(admin, orderHandler, productHandler, categoryHandler)
		})
	})
}

func registerCartRoutes(router chi.Router, cartHandler *CartHandler, checkoutHandler *CheckoutHandler) {
	router.Route("/cart", func(cart chi.Router) {
		cart.Get("/", cartHandler.viewCart)
		cart.Get("/count", cartHandler.cartCount)
		cart.Post("/add", cartHandler.addToCart)
		cart.Post("/update", cartHandler.updateCart)
		cart.Post("/remove", cartHandler.removeFromCart)
		cart.Post("/clear", cartHandler.clearCart)
	})

	router.Get("/checkout", checkoutHandler.checkoutPreview)
	router.Post("/checkout", checkoutHandler.placeOrder)
}

func registerCatalogRoutes(router chi.Router, catalogHandler *CatalogHandler, orderHandler *OrderHandler) {
	router.Get("/home", catalogHandler.home)
	router.Get("/categories", catalogHandler.listCategories)
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", catalogHandler.listProducts)
		pr.Get("/{id}/price", catalogHandler.productPrice)
	})
	router.Get("/orders/{id}/confirmation", orderHandler.orderConfirmation)
}

func registerAdminRoutes(router chi.Router, orderHandler *OrderHandler, productHandler *ProductHandler, categoryHandler *CategoryHandler) {
	router.Route("/orders", func(or chi.Router) {
		or.Get("/", orderHandler.listOrders)
		or.Get("/{id}", orderHandler.getOrder)
		or.Post("/status", orderHandler.changeOrderStatus)
		or.Post("/bulk-status", orderHandler.bulkChangeStatus)
	})

	router.Route("/categories", func(cr chi.Router) {
		cr.Post("/", categoryHandler.createCategory)
		cr.Put("/{id}", categoryHandler.updateCategory)
		cr.Delete("/{id}", categoryHandler.deleteCategory)
	})

	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", productHandler.createProduct)
		pr.Put("/{id}", productHandler.updateProduct)
		pr.Post("/activate", productHandler.activateProducts)
		pr.Post("/deactivate", productHandler.deactivateProducts)
		pr.Post("/delete", productHandler.deleteProducts)
	})
}
