// Package service provides business-logic for the app
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/UnendingLoop/BgRemover/internal/mwlogger"
	"github.com/UnendingLoop/BgRemover/internal/remover"
	"github.com/UnendingLoop/BgRemover/internal/repository"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/retry"
)

type RemovalService struct {
	repo          repository.TaskRepo
	publisher     TaskPublisher
	storage       ImageStorage
	remover       ImageRemover
	resultPrefix  string
	previewPrefix string
	inlinePrefix  string
	batchLimit    int
}

func NewRemovalService(cfg *config.Config, taskRep repository.TaskRepo, pub TaskPublisher, strg ImageStorage, rem ImageRemover) *RemovalService {
	svc := &RemovalService{
		repo:          taskRep,
		publisher:     pub,
		storage:       strg,
		remover:       rem,
		resultPrefix:  DefaultResultPrefix,
		previewPrefix: DefaultPreviewPrefix,
		inlinePrefix:  "inline/",
		batchLimit:    defaultBatchLimit,
	}

	if cfg != nil {
		if v := cfg.GetString("RESULT_PREFIX"); v != "" {
			svc.resultPrefix = v
		}
		if v := cfg.GetString("PREVIEW_PREFIX"); v != "" {
			svc.previewPrefix = v
		}
		svc.batchLimit = parseBatchLimit(cfg.GetString("BATCH_LIMIT"))
	}

	return svc
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ImageStorage - контракт для работы с хранилищем
type ImageStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	PublicURL(key string) string
}

// ImageRemover - контракт юнита обработки одной картинки
type ImageRemover interface {
	Process(ctx context.Context, sourceURL string) ([]byte, error)
	ProcessBatch(ctx context.Context, urls []string) ([][]byte, []model.ProcessingOutcome)
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// Remove - синхронная обработка одного URL, байты результата сразу в ответ
func (c RemovalService) Remove(ctx context.Context, sourceURL string) ([]byte, error) {
	if err := remover.ValidateURL(sourceURL); err != nil {
		return nil, err
	}

	return c.remover.Process(ctx, sourceURL)
}

// RemoveBatch - синхронный фанаут: по горутине на URL, успехи складываются в хранилище,
// в исходах возвращаются ссылки. Ошибка одного элемента не роняет остальные.
func (c RemovalService) RemoveBatch(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.validateBatch(urls); err != nil {
		return nil, err
	}

	images, outcomes := c.remover.ProcessBatch(ctx, urls)

	// успехи персистим и подменяем байты ссылкой на хранилище
	for i := range outcomes {
		if !outcomes[i].Success {
			continue
		}

		key := c.inlinePrefix + uuid.New().String() + model.PNGExtension
		data := images[i]
		if err := c.storage.Put(ctx, key, int64(len(data)), model.PNG, bytes.NewReader(data)); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to save inline result for %q in Storage", outcomes[i].SourceURL))
			outcomes[i] = model.ProcessingOutcome{SourceURL: outcomes[i].SourceURL, Success: false, Error: model.ErrCommon500.Error()}
			continue
		}
		outcomes[i].ProcessedURL = c.storage.PublicURL(key)
	}

	return outcomes, nil
}

// SubmitBatch - фанаут через оркестрацию: по задаче на URL, строка в БД + UUID в очередь.
// Идентификаторы возвращаются в порядке входных URL.
func (c RemovalService) SubmitBatch(ctx context.Context, urls []string) ([]string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.validateBatch(urls); err != nil {
		return nil, err
	}

	flowIDs := make([]string, 0, len(urls))
	for _, u := range urls {
		now := time.Now().UTC()
		task := &model.Task{
			UID:       uuid.New(),
			SourceURL: u,
			Status:    model.StatusCreated,
			CreatedAt: &now,
		}

		// шлем в базу - недоступность стора задач для сабмита фатальна, наружу 503
		if err := c.repo.Create(ctx, task); err != nil {
			logger.Error().Err(err).Msg("Failed to create task in DB")
			return nil, model.ErrOrchestrationUnavailable
		}

		// кладем в очередь задач(в кафку)
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(task.UID.String()), nil); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish task %q to task-queue", task.UID))
			return nil, model.ErrQueueUnavailable
		}

		flowIDs = append(flowIDs, task.UID.String())
	}

	return flowIDs, nil
}

// FetchResults - неблокирующий опрос: каждый вызов собирает свежий снапшот по переданным ID.
// Незавершенные задачи считаются в RunningCount и в Results не попадают.
func (c RemovalService) FetchResults(ctx context.Context, ids []string) (*model.BatchResultSet, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil, model.ErrEmptyBatch
	}

	set := &model.BatchResultSet{
		Results:    make(map[string]model.ProcessingOutcome, len(ids)),
		TotalCount: len(ids),
	}

	for _, id := range ids {
		if err := uuid.Validate(id); err != nil {
			set.FailureCount++
			set.Results[id] = model.ProcessingOutcome{Success: false, Error: model.ErrIncorrectID.Error()}
			continue
		}

		task, err := c.repo.Get(ctx, id)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrTaskNotFound):
				set.FailureCount++
				set.Results[id] = model.ProcessingOutcome{Success: false, Error: model.ErrTaskNotFound.Error()}
			default:
				logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch task %q from DB", id))
				return nil, model.ErrOrchestrationUnavailable
			}
			continue
		}

		switch task.Status {
		case model.StatusDone:
			set.SuccessCount++
			set.Results[id] = model.ProcessingOutcome{
				SourceURL:    task.SourceURL,
				Success:      true,
				ProcessedURL: task.ResultURL,
			}
		case model.StatusFailed:
			set.FailureCount++
			set.Results[id] = model.ProcessingOutcome{
				SourceURL: task.SourceURL,
				Success:   false,
				Error:     task.ErrMsg,
			}
		default: // created / in_progress
			set.RunningCount++
		}
	}

	return set, nil
}

func (c RemovalService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch tasks list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c RemovalService) Get(ctx context.Context, id string) (*model.Task, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			return nil, model.ErrTaskNotFound
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch task %q from DB", id))
			return nil, model.ErrCommon500
		}
	}

	return res, nil
}

func (c RemovalService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.loadBlob(ctx, id, func(t *model.Task) string { return t.ResultKey })
}

func (c RemovalService) LoadPreview(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.loadBlob(ctx, id, func(t *model.Task) string { return t.PreviewKey })
}

func (c RemovalService) loadBlob(ctx context.Context, id string, key func(*model.Task) string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	task, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if task.Status != model.StatusDone {
		return nil, "", model.ErrResultNotReady
	}

	// достаем из хранилища
	data, cType, err := c.storage.Get(ctx, key(task))
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch blob of task %q from Storage", id))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

func (c RemovalService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	// читаем из базы
	task, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	// удаляем из базы
	if err := c.repo.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msg("Failed to delete task from DB")
		return model.ErrCommon500
	}

	// удаляем из хранилища результат и превью - если задача успела их записать
	if task.Status == model.StatusDone {
		if err := c.storage.Delete(ctx, task.ResultKey); err != nil {
			logger.Error().Err(err).Msg("Failed to delete result-image from Storage")
			return model.ErrCommon500
		}
		if task.PreviewKey != "" {
			if err := c.storage.Delete(ctx, task.PreviewKey); err != nil {
				logger.Error().Err(err).Msg("Failed to delete preview-image from Storage")
				return model.ErrCommon500
			}
		}
	}

	return nil
}

func (c RemovalService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.UpdateStatus(ctx, id, newStat); err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to update task status in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c RemovalService) SetFailed(ctx context.Context, id string, reason string) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.SetFailed(ctx, id, reason); err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to mark task as failed in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c RemovalService) SaveResult(ctx context.Context, input *model.Task) error {
	logger := mwlogger.LoggerFromContext(ctx)
	t := time.Now().UTC()
	input.UpdatedAt = &t
	if err := c.repo.SaveResult(ctx, input); err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to save result task in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c RemovalService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Msg("Failed to publish orphan to queue")
		}
	}
}
