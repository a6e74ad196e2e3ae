package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/BgRemover/internal/model"
)

func errorCodeDefiner(err error) int {
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		return 502
	}

	var network *model.NetworkError
	if errors.As(err, &network) {
		return 503
	}

	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrQueueUnavailable),
		errors.Is(err, model.ErrOrchestrationUnavailable):
		return 503
	case errors.Is(err, model.ErrTaskNotFound),
		errors.Is(err, model.ErrResultNotReady):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrIncorrectURL),
		errors.Is(err, model.ErrEmptyBatch),
		errors.Is(err, model.ErrBatchTooLarge),
		errors.Is(err, model.ErrNotAnImage):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
