package worker

import (
	"context"
	"io"

	"github.com/UnendingLoop/BgRemover/internal/model"
)

// MOCK WORKER-SERVICE

type mockWorkerService struct {
	getFn        func(ctx context.Context, id string) (*model.Task, error)
	updateFn     func(ctx context.Context, id string, st model.Status) error
	setFailedFn  func(ctx context.Context, id string, reason string) error
	saveResultFn func(ctx context.Context, task *model.Task) error
}

func (m *mockWorkerService) Get(ctx context.Context, id string) (*model.Task, error) {
	return m.getFn(ctx, id)
}

func (m *mockWorkerService) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateFn(ctx, id, st)
}

func (m *mockWorkerService) SetFailed(ctx context.Context, id string, reason string) error {
	return m.setFailedFn(ctx, id, reason)
}

func (m *mockWorkerService) SaveResult(ctx context.Context, task *model.Task) error {
	return m.saveResultFn(ctx, task)
}

// MOCK STORAGE

type mockStorage struct {
	putFn       func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	getFn       func(ctx context.Context, key string) (io.ReadCloser, string, error)
	deleteFn    func(ctx context.Context, key string) error
	publicURLFn func(key string) string
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

func (m *mockStorage) PublicURL(key string) string {
	if m.publicURLFn == nil {
		return "http://minio.local/processed-images/" + key
	}
	return m.publicURLFn(key)
}

// MOCK REMOVER

type mockRemover struct {
	processFn func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockRemover) Process(ctx context.Context, url string) ([]byte, error) {
	return m.processFn(ctx, url)
}
