package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-wager-service/config"
	"github.com/oksasatya/go-wager-service/internal/infrastructure/search"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQWagerQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if len(cfg.ESAddrs()) == 0 || cfg.ESWagersIndex == "" {
		log.Fatal("Elasticsearch not configured")
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass, nil)
	if err != nil {
		log.Fatalf("elasticsearch client: %v", err)
	}
	indexer := search.NewWagerIndexer(es, cfg.ESWagersIndex)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQWagerQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQWagerQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			entry := logger.WithField("message_id", msg.MessageId)
			err := indexer.Handle(ctx, msg.Body)
			switch {
			case errors.Is(err, search.ErrMalformedEvent):
				entry.WithError(err).Warn("dropping malformed wager event")
				_ = msg.Nack(false, false)
			case err != nil:
				entry.WithError(err).Error("index wager failed")
				_ = msg.Nack(false, true)
			default:
				entry.Debug("wager indexed")
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Infof("wager indexer listening on queue=%s index=%s", cfg.RabbitMQWagerQueue, cfg.ESWagersIndex)
	<-stop
	logger.Info("shutting down...")
	cancel()
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
