// Package photoroom provides a thin client for the Photoroom background-removal API
package photoroom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/UnendingLoop/BgRemover/internal/model"
)

const (
	segmentationEndpoint = "/v1/segment"
	imageFileParam       = "image_file"
	apiKeyHeader         = "x-api-key"

	maxErrBodyLen = 512
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient - требует непустой ключ, ретраев у клиента нет - это зона ответственности оркестрации
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("photoroom API key is required")
	}
	if baseURL == "" {
		return nil, errors.New("photoroom API URL is required")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// RemoveBackground - один исходящий вызов вендора: байты картинки на входе, PNG без фона на выходе
func (c *Client) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	// собираем multipart-тело с единственным файлом
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile(imageFileParam, "image")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare multipart body: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image to multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+segmentationEndpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build vendor request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Err: err}
	}
	defer closeFileFlow(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyLen))
		return nil, &model.UpstreamError{Code: resp.StatusCode, Message: string(msg)}
	}

	processed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.NetworkError{Err: err}
	}

	return processed, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Photoroom-client failed to close response body:", err)
	}
}
