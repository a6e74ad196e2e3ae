// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

//---------------------

// Task - одна задача на удаление фона, живет в БД, по статусам двигается только воркером
type Task struct {
	UID        uuid.UUID  `json:"uid"`
	SourceURL  string     `json:"source_url"`
	ResultKey  string     `json:"-"`
	ResultURL  string     `json:"result_url,omitempty"`
	PreviewKey string     `json:"-"`
	Status     Status     `json:"status"`
	ErrMsg     string     `json:"error,omitempty"`
	Width      *int       `json:"width,omitempty"`
	Height     *int       `json:"height,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

//-------------------

type RemoveRequest struct {
	URL string `json:"url"`
}

type BatchRemoveRequest struct {
	URLs []string `json:"urls"`
}

type BatchSubmitResponse struct {
	FlowIDs []string `json:"flow_ids"`
	Message string   `json:"message"`
	Status  string   `json:"status"`
	Count   int      `json:"count"`
}

// ProcessingOutcome - итог обработки одного URL: либо успех со ссылкой на результат, либо ошибка
type ProcessingOutcome struct {
	SourceURL    string `json:"original_url"`
	Success      bool   `json:"success"`
	ProcessedURL string `json:"processed_url,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchResultSet - свежий снапшот состояния задач на момент опроса.
// Инвариант: SuccessCount + FailureCount + RunningCount == TotalCount,
// незавершенные задачи в Results не попадают.
type BatchResultSet struct {
	Results      map[string]ProcessingOutcome `json:"results"`
	TotalCount   int                          `json:"total_count"`
	SuccessCount int                          `json:"success_count"`
	FailureCount int                          `json:"failure_count"`
	RunningCount int                          `json:"running_count"`
}

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

var (
	ErrCommon500                error = errors.New("something went wrong. Try again later")                  // 500
	ErrIncorrectQuery           error = errors.New("incorrect query parameters")                             // 400
	ErrIncorrectID              error = errors.New("incorrect task UUID")                                    // 400
	ErrIncorrectURL             error = errors.New("incorrect image URL: absolute http(s) URL needed")       // 400
	ErrEmptyBatch               error = errors.New("at least one image URL is required")                     // 400
	ErrBatchTooLarge            error = errors.New("too many image URLs per batch request")                  // 400
	ErrNotAnImage               error = errors.New("URL does not point to an image")                         // 400
	ErrTaskNotFound             error = errors.New("specified task UUID doesn't exist")                      // 404
	ErrResultNotReady           error = errors.New("requested image is not processed yet")                   // 404
	ErrQueueUnavailable         error = errors.New("task queue is unavailable. Try again later")             // 503
	ErrOrchestrationUnavailable error = errors.New("task orchestration is unavailable. Try again later")     // 503
)

// UpstreamError - вендор ответил не-2хх, наружу уходит как 502 с кодом вендора
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vendor API returned status %d: %s", e.Code, e.Message)
}

// NetworkError - транспортная ошибка исходящего вызова, наружу уходит как 503
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

//--------------------

const (
	PNG = "image/png"

	ResultFileName = "background_removed.png"
	PNGExtension   = ".png"
)
