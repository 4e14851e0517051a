package main

import (
	"fmt"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/routes"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/address"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/analytics"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout/helpers"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/email"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/notifications"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orderevents"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/payments"
	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/realtime"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/users"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/config"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/dispatch"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	tasks dispatch.Submitter,
	sessions *realtime.Registry,
	origin string,
) (routes.Services, error) {
	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	notificationsRepo := notifications.NewRepository(conn)

	renderer, err := email.NewRenderer()
	if err != nil {
		return routes.Services{}, fmt.Errorf("email renderer: %w", err)
	}
	mailer, err := email.NewOrderMailer(renderer, email.NewSender(cfg.Mail, logg), cfg.App.PublicURL)
	if err != nil {
		return routes.Services{}, fmt.Errorf("order mailer: %w", err)
	}
	notifier, err := notifications.NewNotifier(notificationsRepo, sessions, redisClient, usersRepo, origin, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("notifier: %w", err)
	}
	bank := helpers.BankAccount{
		BankName:      cfg.Checkout.BankName,
		AccountNumber: cfg.Checkout.BankAccountNumber,
		AccountName:   cfg.Checkout.BankAccountName,
	}
	events, err := orderevents.NewPublisher(tasks, mailer, notifier, usersRepo, bank)
	if err != nil {
		return routes.Services{}, fmt.Errorf("order events: %w", err)
	}

	productSvc, err := product.NewService(productRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("product service: %w", err)
	}
	cartSvc, err := cart.NewService(cartRepo, productRepo, dbClient, cfg.Cart.TTL)
	if err != nil {
		return routes.Services{}, fmt.Errorf("cart service: %w", err)
	}
	addressSvc, err := address.NewService(address.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Services{}, fmt.Errorf("address service: %w", err)
	}
	ordersSvc, err := orders.NewService(ordersRepo, productRepo, dbClient, events, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("orders service: %w", err)
	}
	paymentsSvc, err := payments.NewService(ordersRepo, productRepo, dbClient, events, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("payments service: %w", err)
	}
	checkoutSvc, err := checkout.NewService(dbClient, cartRepo, ordersRepo, productRepo, addressSvc, events, checkout.Settings{
		FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
		FlatShippingFee:       cfg.Checkout.FlatShippingFee,
		Bank:                  bank,
		CartTTL:               cfg.Cart.TTL,
	}, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("checkout service: %w", err)
	}
	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("notifications service: %w", err)
	}
	analyticsSvc, err := analytics.NewService(analytics.NewRepository(conn))
	if err != nil {
		return routes.Services{}, fmt.Errorf("analytics service: %w", err)
	}

	return routes.Services{
		Cart:          cartSvc,
		Checkout:      checkoutSvc,
		Orders:        ordersSvc,
		Payments:      paymentsSvc,
		Products:      productSvc,
		Addresses:     addressSvc,
		Notifications: notificationsSvc,
		Analytics:     analyticsSvc,
	}, nil
}
