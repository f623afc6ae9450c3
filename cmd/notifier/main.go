package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/config"
	kafkax "github.com/ariefcatur/farm-market-core.git/internal/kafka"
	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/redisx"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// The notifier worker drains order/payment events and hands them to the
// dispatch channel (here: the log; real delivery is the mail/push
// collaborator's job). Dedup by event_id keeps redelivered events quiet.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	d := &notify.Dispatcher{Redis: rdb, ServiceName: cfg.ServiceName + "-notifier"}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	consOrders := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicOrderEvents, workers)
	consPayments := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicPaymentEvents, workers)

	for _, c := range []*kafkax.Consumer{consOrders, consPayments} {
		c := c
		go func() {
			if err := c.Start(ctx, d.Handle); err != nil {
				log.Printf("consumer exit: %v", err)
				cancel()
			}
		}()
	}
	log.Printf("notifier started: group=%s workers=%d", group, workers)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
