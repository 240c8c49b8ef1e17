package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"github.com/kamaudev/dukashop/internal/config"
	"github.com/kamaudev/dukashop/internal/es"
	"github.com/kamaudev/dukashop/internal/flashsale"
	"github.com/kamaudev/dukashop/internal/handlers"
	"github.com/kamaudev/dukashop/internal/logging"
	loggingmw "github.com/kamaudev/dukashop/internal/middleware/logging"
	"github.com/kamaudev/dukashop/internal/mykafka"
	"github.com/kamaudev/dukashop/internal/notify"
	"github.com/kamaudev/dukashop/internal/outbox"
	"github.com/kamaudev/dukashop/internal/service/catalog"
	"github.com/kamaudev/dukashop/internal/service/order"
	"github.com/kamaudev/dukashop/internal/service/payment"
	"github.com/kamaudev/dukashop/internal/settings"
	httpserver "github.com/kamaudev/dukashop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is required")
	}

	producer := mykafka.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
	mailer := notify.NewMailer(configuration)

	catalogSvc := &catalog.Service{DB: db, Index: es.ProductIndex}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			catalogSvc.ES = client
		}
	}

	settingsStore := &settings.Store{DB: db}
	outboxQueue := &outbox.Queue{DB: db}
	orderSvc := &order.Service{DB: db, Outbox: outboxQueue, Settings: settingsStore}
	paymentSvc := &payment.Service{DB: db, Outbox: outboxQueue}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := &outbox.Worker{
		DB:          db,
		Publisher:   producer,
		Sender:      mailer,
		Interval:    outbox.DefaultInterval,
		MaxAttempts: outbox.DefaultMaxAttempts,
		Log:         logger,
	}
	worker.Start(ctx)

	sched := cron.New()
	if err := flashsale.RegisterJob(sched, db, logger); err != nil {
		log.Fatalf("cron registration failed: %v", err)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		JWTSecret:        jwtSecret,
		AuthHandler:      &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret},
		ProductHandler:   &handlers.ProductHandler{Catalog: catalogSvc},
		OrderHandler:     &handlers.OrderHandler{DB: db, Orders: orderSvc, Settings: settingsStore},
		PaymentHandler:   &handlers.PaymentHandler{Payments: paymentSvc, Orders: orderSvc},
		CategoryHandler:  &handlers.CategoryHandler{DB: db},
		FlashSaleHandler: &handlers.FlashSaleHandler{DB: db},
		SettingsHandler:  &handlers.SettingsHandler{Settings: settingsStore},
		UserAdminHandler: &handlers.UserAdminHandler{DB: db},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	stopCtx := sched.Stop()
	<-stopCtx.Done()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
