package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restopos-backend/config"
	"restopos-backend/controllers"
	"restopos-backend/routes"
	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := utils.NewLogger("restopos-backend")

	db, err := config.ConnectDB(settings.DBDriver, settings.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	metrics := utils.NewMetrics()
	hub := services.NewFloorHub(logger)
	publishers := services.MultiPublisher{hub}

	if settings.KafkaBroker != "" {
		writer := services.NewKafkaWriter(settings.KafkaBroker, settings.KafkaTopic)
		defer writer.Close()
		publishers = append(publishers, &services.KafkaPublisher{Writer: writer})
		logger.Info("publishing events to kafka", "broker", settings.KafkaBroker, "topic", settings.KafkaTopic)
	}

	var locker services.Locker = services.NewLocalLocker()
	if settings.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		defer client.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		locker = services.NewRedisLocker(client, 30*time.Second)
		logger.Info("using redis locks", "addr", settings.RedisAddr)
	}

	deps := services.Deps{
		Locker:    locker,
		Publisher: publishers,
		Metrics:   metrics,
		Logger:    logger,
	}

	var sender services.MessageSender = services.DisabledSender{}
	if settings.TwilioAccountSID != "" && settings.TwilioAuthToken != "" {
		sender = services.NewTwilioSender(settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioFrom)
	} else {
		logger.Warn("twilio is not configured, receipts will not be delivered")
	}

	business := settings.Business
	reports := services.NewReportService(db, deps)
	qr := services.DefaultQRGenerator{BaseURL: settings.PublicBaseURL}
	h := &controllers.Handler{
		DB:       db,
		Orders:   services.NewOrderService(db, business.ServiceCharge(), deps),
		Tables:   services.NewTableService(db, deps),
		Billing:  services.NewBillingService(db, business.PaymentMethods, qr, deps),
		Receipts: services.NewReceiptService(db, sender, business.RestaurantName, business.Currency, deps),
		Catalog:  services.NewCatalogService(db),
		Reports:  reports,
		Auth:     controllers.AuthConfig{Secret: settings.JWTSecret, TTL: settings.JWTExpiry},
		Logger:   logger,
	}

	scheduler, err := services.StartReportScheduler(business.ReportSnapshotCron, reports, logger)
	if err != nil {
		log.Fatalf("Invalid report_snapshot_cron: %v", err)
	}

	r := routes.SetupRouter(h, routes.Options{
		Hub:         hub,
		Metrics:     metrics,
		CORSOrigins: settings.CORSOrigins,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: r,
	}
	go func() {
		logger.Info("server listening", "port", settings.Port, "restaurant", business.RestaurantName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdown(srv, scheduler.Stop().Done(), logger)
}

func shutdown(srv *http.Server, cronDone <-chan struct{}, logger *slog.Logger) {
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	select {
	case <-cronDone:
	case <-ctx.Done():
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
