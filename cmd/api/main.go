package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/floracart/storefront/internal/cart"
	"github.com/floracart/storefront/internal/catalog"
	"github.com/floracart/storefront/internal/config"
	"github.com/floracart/storefront/internal/httpx"
	kafkax "github.com/floracart/storefront/internal/kafka"
	"github.com/floracart/storefront/internal/orders"
	"github.com/floracart/storefront/internal/payment"
	"github.com/floracart/storefront/internal/postgres"
	"github.com/floracart/storefront/internal/pricing"
	"github.com/floracart/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	pStatus.Start(ctx)

	// Services
	products := &catalog.Store{DB: db}
	carts := &cart.Service{
		Store:    &cart.PGStore{DB: db},
		Products: products,
	}
	ordersSvc := &orders.Service{
		Repo:  &orders.PGRepo{DB: db},
		Carts: carts,
		Pricer: pricing.Engine{
			FreeShippingMin: cfg.FreeShippingMin,
			ShippingFee:     cfg.ShippingFee,
			TaxRateBP:       cfg.TaxRateBP,
		},
		CreatedEvents:   pCreated,
		CancelledEvents: pCancelled,
		StatusEvents:    pStatus,
		Prefix:          cfg.OrderPrefix,
		ServiceName:     cfg.ServiceName,
	}
	paySvc := &payment.Service{
		Gateway: &payment.HTTPGateway{
			URL:    cfg.GatewayURL,
			Key:    cfg.GatewayKeyID,
			Secret: cfg.SigningSecret,
			Client: &http.Client{Timeout: 10 * time.Second},
		},
		Intents:  &payment.Intents{Redis: rdb},
		Carts:    carts,
		Orders:   ordersSvc,
		Secret:   cfg.SigningSecret,
		Currency: cfg.Currency,
	}

	// Router & handlers
	exposeErr := !cfg.Production()
	router := httpx.NewRouter()
	(&httpx.CartHandler{Carts: carts, ExposeError: exposeErr}).Register(router)
	(&httpx.OrdersHandler{Orders: ordersSvc, Redis: rdb, ExposeError: exposeErr}).Register(router)
	(&httpx.PaymentHandler{Payments: paySvc, Currency: cfg.Currency, ExposeError: exposeErr}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range []*kafkax.Producer{pCreated, pCancelled, pStatus} {
		p.Close()
	}
	cancel()
	for _, p := range []*kafkax.Producer{pCreated, pCancelled, pStatus} {
		p.WaitClosed()
	}
}
