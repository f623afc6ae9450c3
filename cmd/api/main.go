package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/buyer"
	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/checkout"
	"github.com/ariefcatur/farm-market-core.git/internal/config"
	"github.com/ariefcatur/farm-market-core.git/internal/httpx"
	kafkax "github.com/ariefcatur/farm-market-core.git/internal/kafka"
	"github.com/ariefcatur/farm-market-core.git/internal/lifecycle"
	"github.com/ariefcatur/farm-market-core.git/internal/metrics"
	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/payment"
	"github.com/ariefcatur/farm-market-core.git/internal/postgres"
	"github.com/ariefcatur/farm-market-core.git/internal/redisx"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (notifications)
	pOrders := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderEvents, 1024)
	pOrders.Start(ctx)
	pPayments := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicPaymentEvents, 1024)
	pPayments.Start(ctx)
	notifier := &notify.KafkaNotifier{Orders: pOrders, Payments: pPayments, Service: cfg.ServiceName}

	// Stores & services
	orderStore := &orders.PGStore{DB: db}
	catalogStore := &catalog.PGStore{DB: db}
	buyerStore := &buyer.PGStore{DB: db}
	ledger := stock.NewLedger(catalogStore)
	ledger.MaxAttempts = cfg.StockMaxRetry

	checkoutSvc := &checkout.Service{
		Cart:       buyerStore,
		Addresses:  buyerStore,
		Catalog:    catalogStore,
		Ledger:     ledger,
		Orders:     orderStore,
		Notifier:   notifier,
		CodePrefix: cfg.OrderCodePrefix,
	}
	lifecycleSvc := &lifecycle.Service{Orders: orderStore, Ledger: ledger, Notifier: notifier}
	reconciler := &payment.Reconciler{Orders: orderStore, Notifier: notifier}

	m := metrics.New("api")

	router := httpx.NewRouter()
	(&httpx.CheckoutHandler{Checkout: checkoutSvc, Metrics: m}).Register(router)
	(&httpx.OrdersHandler{Orders: orderStore, Catalog: catalogStore, Lifecycle: lifecycleSvc, Redis: rdb}).Register(router)
	(&httpx.CallbackHandler{Reconciler: reconciler, Redis: rdb, Metrics: m}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pOrders.Close() // tutup inbox -> flush & close writer
	pPayments.Close()
	cancel()
	pOrders.WaitClosed()
	pPayments.WaitClosed()
}
