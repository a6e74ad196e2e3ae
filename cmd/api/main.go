// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/kafka"
	"github.com/UnendingLoop/BgRemover/internal/mwlogger"
	"github.com/UnendingLoop/BgRemover/internal/photoroom"
	"github.com/UnendingLoop/BgRemover/internal/remover"
	"github.com/UnendingLoop/BgRemover/internal/repository"
	"github.com/UnendingLoop/BgRemover/internal/service"
	"github.com/UnendingLoop/BgRemover/internal/storage"
	"github.com/UnendingLoop/BgRemover/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

const outboundTimeout = 30 * time.Second

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	err := zlog.SetLevel("info")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewImgStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresTaskRepo(dbConn)

	// клиент вендора - без ключа не взлетит
	vendor, err := photoroom.NewClient(appConfig.GetString("PHOTOROOM_API_URL"), appConfig.GetString("PHOTOROOM_API_KEY"), outboundTimeout)
	if err != nil {
		log.Fatalf("Failed to init Photoroom-client: %v", err)
	}
	rem := remover.NewRemover(vendor, outboundTimeout)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker)
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// создаем экземпляр сервиса
	var svc TaskAPIService = service.NewRemovalService(appConfig, repo, pub, strg, rem)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewTaskHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/health", handlers.HealthCheck)
	engine.POST("/remove", handlers.Remove)                // синхронно: один URL - сразу PNG в ответ
	engine.POST("/remove-batch", handlers.RemoveBatch)     // синхронный фанаут по списку URL
	engine.POST("/batch/submit", handlers.SubmitBatch)     // фанаут через очередь, ответ - flow_ids
	engine.POST("/batch/results", handlers.FetchResults)   // частичные результаты по flow_ids
	engine.GET("/tasks", handlers.GetAllTasks)             // список задач с пагинацией и сортировкой
	engine.GET("/tasks/:id/result", handlers.LoadResult)   // скачать результат
	engine.GET("/tasks/:id/preview", handlers.LoadPreview) // скачать превью
	engine.DELETE("/tasks/:id", handlers.Delete)           // удаление

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// запускаем фонового воркера для отслеживания подвисших задач
	go recoveryLoop(ctx, svc)

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func recoveryLoop(ctx context.Context, svc TaskAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovery loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(context.Background(), 20)
		}
	}
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
