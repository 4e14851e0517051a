package main

import (
	"fmt"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout/helpers"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cron"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/email"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/notifications"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orderevents"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/users"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/config"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/dispatch"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

// buildJobs registers the sweeps in the order they run each cycle.
// Reminders only reach sessions on API instances through Redis, so the
// notifier has no local registry here.
func buildJobs(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	tasks dispatch.Submitter,
	origin string,
) (*cron.Registry, error) {
	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	notificationsRepo := notifications.NewRepository(conn)

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("email renderer: %w", err)
	}
	mailer, err := email.NewOrderMailer(renderer, email.NewSender(cfg.Mail, logg), cfg.App.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("order mailer: %w", err)
	}
	notifier, err := notifications.NewNotifier(notificationsRepo, nil, redisClient, usersRepo, origin, logg)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}
	events, err := orderevents.NewPublisher(tasks, mailer, notifier, usersRepo, helpers.BankAccount{
		BankName:      cfg.Checkout.BankName,
		AccountNumber: cfg.Checkout.BankAccountNumber,
		AccountName:   cfg.Checkout.BankAccountName,
	})
	if err != nil {
		return nil, fmt.Errorf("order events: %w", err)
	}

	expiry, err := cron.NewCartExpiryJob(cron.CartExpiryJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: cartRepo,
		BatchSize:  cfg.Cron.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	abandoned, err := cron.NewAbandonedCartJob(cron.AbandonedCartJobParams{
		Logger:         logg,
		Repository:     cartRepo,
		Reminder:       events,
		AbandonedAfter: cfg.Cart.AbandonedAfter,
		BatchSize:      cfg.Cron.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	cleanup, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationsRepo,
		Retention:  cfg.Notifications.RetentionDays,
		BatchSize:  cfg.Cron.BatchSize,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(expiry, abandoned, cleanup), nil
}
