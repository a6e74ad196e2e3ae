package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/kafka"
	"github.com/UnendingLoop/BgRemover/internal/photoroom"
	"github.com/UnendingLoop/BgRemover/internal/remover"
	"github.com/UnendingLoop/BgRemover/internal/repository"
	"github.com/UnendingLoop/BgRemover/internal/service"
	"github.com/UnendingLoop/BgRemover/internal/storage"
	"github.com/UnendingLoop/BgRemover/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

const outboundTimeout = 30 * time.Second

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// подключиться к хранилищу
	strg := storage.NewImgStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresTaskRepo(dbConn)
	// создаем экземпляр сервиса
	var svc TaskWorkerService = service.NewRemovalService(appConfig, repo, worker.NoopPublisher{}, strg, nil)

	// клиент вендора + юнит обработки одной картинки
	vendor, err := photoroom.NewClient(appConfig.GetString("PHOTOROOM_API_URL"), appConfig.GetString("PHOTOROOM_API_KEY"), outboundTimeout)
	if err != nil {
		log.Fatalf("Failed to init Photoroom-client: %v", err)
	}
	rem := remover.NewRemover(vendor, outboundTimeout)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker)
	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	topic := appConfig.GetString("KAFKA_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cons.StartConsuming(ctx, queue, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	resPrefix := appConfig.GetString("RESULT_PREFIX")
	prevPrefix := appConfig.GetString("PREVIEW_PREFIX")
	go worker.NewWorkerInstance(strg, svc, rem, queue, cons, resPrefix, prevPrefix).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, dbConn)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	log.Println("Kafka-consumer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
