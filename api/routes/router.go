package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/controllers"
	cartcontrollers "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/controllers/cart"
	ordercontrollers "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/controllers/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/middleware"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/address"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/analytics"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	checkoutsvc "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/notifications"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/payments"
	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/config"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/metrics"
	pkgredis "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

// Services bundles everything the HTTP surface delegates to.
type Services struct {
	Cart          cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Payments      payments.Service
	Products      product.Service
	Addresses     address.Service
	Notifications notifications.Service
	Analytics     analytics.Service
}

// Infra carries the shared clients used by middleware and health checks.
type Infra struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg),
		middleware.Metrics(infra.HTTP),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": infra.DB,
			"redis":    infra.Redis,
		}))
	})
	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	requireUser := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(enums.UserRoleAdmin, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.GuestID(cfg.Cart.GuestHeaderEnabled, logg))
		r.Use(middleware.Idempotency(infra.Idempotency, cfg.Redis.IdempotencyTTL, logg))

		r.Get("/products", controllers.ListProducts(svc.Products, logg))
		r.Get("/products/{slug}", controllers.GetProduct(svc.Products, logg))
		r.Get("/categories", controllers.ListCategories(svc.Products, logg))
		r.Get("/regions", controllers.ListRegions(svc.Products, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(svc.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(svc.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(svc.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(svc.Cart, logg))
			r.With(requireUser).Post("/merge", cartcontrollers.CartMerge(svc.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/checkout", controllers.Checkout(svc.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(svc.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(svc.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.CancelOrder(svc.Orders, logg))
				r.Get("/{orderId}/payment", controllers.GetOrderPayment(svc.Payments, logg))
				r.Post("/{orderId}/payment/confirm", controllers.ConfirmOrderPayment(svc.Payments, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.ListAddresses(svc.Addresses, logg))
				r.Post("/", controllers.CreateAddress(svc.Addresses, logg))
				r.Delete("/{addressId}", controllers.DeleteAddress(svc.Addresses, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.AdminListOrders(svc.Orders, logg))
					r.Get("/{orderId}", controllers.AdminGetOrder(svc.Orders, logg))
					r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(svc.Orders, logg))
				})
				r.Route("/payments", func(r chi.Router) {
					r.Post("/{paymentId}/validate", controllers.AdminValidatePayment(svc.Payments, logg))
					r.Post("/{paymentId}/refund", controllers.AdminRefundPayment(svc.Payments, logg))
				})
				r.Route("/products", func(r chi.Router) {
					r.Post("/", controllers.AdminCreateProduct(svc.Products, logg))
					r.Post("/{productId}/variants", controllers.AdminCreateVariant(svc.Products, logg))
					r.Patch("/{productId}/stock", controllers.AdminSetStock(svc.Products, logg))
				})
				r.Get("/analytics/summary", controllers.AdminAnalyticsSummary(svc.Analytics, logg))
			})
		})
	})

	return r
}
