// Package worker contains methods for worker to init at start, and to run background-removal tasks
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/UnendingLoop/BgRemover/internal/preview"
	"github.com/UnendingLoop/BgRemover/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// NoopPublisher - ЗАГЛУШКА, функциональность настоящего паблишера в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}

type TaskWorkerService interface { // дублируется из cmd/worker - может вынести такие контракты в отдельный пакет(не model)?
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SetFailed(ctx context.Context, id string, reason string) error
	SaveResult(ctx context.Context, res *model.Task) error
	Get(ctx context.Context, id string) (*model.Task, error)
}

// SingleRemover - юнит обработки одной картинки: скачать исходник + сходить к вендору
type SingleRemover interface {
	Process(ctx context.Context, sourceURL string) ([]byte, error)
}

const previewSide = 256

type Worker struct {
	storage       service.ImageStorage
	service       TaskWorkerService
	remover       SingleRemover
	queue         <-chan kafkago.Message
	consumer      *wbfkafka.Consumer
	resultPrefix  string
	previewPrefix string
}

func NewWorkerInstance(strg service.ImageStorage, svc TaskWorkerService, rem SingleRemover, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr, prevPr string) *Worker {
	// пустые префиксы заменяем на дефолты - те же, что использует API-сервис
	if resPr == "" {
		resPr = service.DefaultResultPrefix
	}
	if prevPr == "" {
		prevPr = service.DefaultPreviewPrefix
	}
	return &Worker{storage: strg, service: svc, remover: rem, queue: q, consumer: cons, resultPrefix: resPr, previewPrefix: prevPr}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrTaskNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	// считать из базы задачу
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("Worker failed to fetch task info %q from DB: %w", id, err)
	}
	// проверить статус
	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("already in progress")
	}

	// обновить статус
	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	// выполняем саму операцию; любая ошибка фиксируется в задаче и не валит воркера
	if pErr := w.processTask(ctx, task); pErr != nil {
		if uErr := w.service.SetFailed(ctx, id, pErr.Error()); uErr != nil {
			return fmt.Errorf("failed to set status of task %q to `failed` in DB: %w \nAFTER\n error while processing task: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Task) error {
	// скачать исходник и прогнать через вендора
	processed, err := w.remover.Process(ctx, task.SourceURL)
	if err != nil {
		return fmt.Errorf("worker failed to remove background for %q: %w", task.SourceURL, err)
	}

	// убедиться что вендор вернул декодируемую картинку, снять размеры
	width, height, err := preview.Inspect(processed)
	if err != nil {
		return fmt.Errorf("worker received broken image from vendor: %w", err)
	}

	// отрисовать превью
	thumb, thumbSize, err := preview.Render(processed, previewSide)
	if err != nil {
		return fmt.Errorf("worker failed to render preview: %w", err)
	}

	// положить результат и превью в сторедж
	resKey := w.resultPrefix + task.UID.String() + model.PNGExtension
	if err := w.storage.Put(ctx, resKey, int64(len(processed)), model.PNG, bytes.NewReader(processed)); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	prevKey := w.previewPrefix + task.UID.String() + model.PNGExtension
	if err := w.storage.Put(ctx, prevKey, thumbSize, model.PNG, thumb); err != nil {
		return fmt.Errorf("worker failed to put preview image to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ResultKey = resKey
	task.ResultURL = w.storage.PublicURL(resKey)
	task.PreviewKey = prevKey
	task.Width = &width
	task.Height = &height

	// обновить запись в БД
	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}
