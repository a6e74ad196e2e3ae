// Package remover contains the single-image processing unit: fetch source, call vendor, fan-out for batches
package remover

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/UnendingLoop/BgRemover/internal/mwlogger"
)

// BackgroundRemover - контракт вендорского клиента
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
}

type Remover struct {
	vendor BackgroundRemover
	http   *http.Client
}

func NewRemover(vendor BackgroundRemover, fetchTimeout time.Duration) *Remover {
	return &Remover{
		vendor: vendor,
		http:   &http.Client{Timeout: fetchTimeout},
	}
}

// Process - обработка одного URL: скачать исходник, отдать вендору, вернуть PNG-байты.
// Любая ошибка возвращается типизированной, паник наружу нет.
func (r *Remover) Process(ctx context.Context, sourceURL string) ([]byte, error) {
	source, err := r.fetchImage(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	processed, err := r.vendor.RemoveBackground(ctx, source)
	if err != nil {
		return nil, err
	}

	return processed, nil
}

// ProcessBatch - одна горутина на URL, результаты по индексам входа.
// Ошибка одного элемента не трогает соседей - конвертируется в Failure-исход.
func (r *Remover) ProcessBatch(ctx context.Context, urls []string) ([][]byte, []model.ProcessingOutcome) {
	logger := mwlogger.LoggerFromContext(ctx)

	images := make([][]byte, len(urls))
	outcomes := make([]model.ProcessingOutcome, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Msg(fmt.Sprintf("Panic while processing %q: %v", u, rec))
					outcomes[i] = model.ProcessingOutcome{SourceURL: u, Success: false, Error: model.ErrCommon500.Error()}
				}
			}()

			processed, err := r.Process(ctx, u)
			if err != nil {
				logger.Error().Err(err).Msg(fmt.Sprintf("Failed to process image %q", u))
				outcomes[i] = model.ProcessingOutcome{SourceURL: u, Success: false, Error: err.Error()}
				return
			}

			images[i] = processed
			outcomes[i] = model.ProcessingOutcome{SourceURL: u, Success: true}
		}(i, u)
	}
	wg.Wait()

	return images, outcomes
}

// ValidateURL - абсолютный http(s)-URL, иначе 400
func ValidateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return model.ErrIncorrectURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.ErrIncorrectURL
	}
	if parsed.Host == "" {
		return model.ErrIncorrectURL
	}
	return nil
}

func (r *Remover) fetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	if err := ValidateURL(sourceURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, model.ErrIncorrectURL
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Err: err}
	}
	defer closeFileFlow(resp.Body)

	// не-2хх от источника картинки считаем невалидным входом, а не аварией вендора
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: source returned status %d", model.ErrNotAnImage, resp.StatusCode)
	}

	cType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(cType, "image/") {
		return nil, fmt.Errorf("%w: Content-Type %q", model.ErrNotAnImage, cType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.NetworkError{Err: err}
	}

	return data, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Remover failed to close fileflow:", err)
	}
}
