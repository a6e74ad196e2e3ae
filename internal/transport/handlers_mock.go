package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/BgRemover/internal/model"
)

type mockRemovalService struct {
	removeFn       func(ctx context.Context, url string) ([]byte, error)
	removeBatchFn  func(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error)
	submitBatchFn  func(ctx context.Context, urls []string) ([]string, error)
	fetchResultsFn func(ctx context.Context, ids []string) (*model.BatchResultSet, error)
	getListFn      func(ctx context.Context, req *model.ListRequest) ([]model.Task, error)
	loadResultFn   func(ctx context.Context, id string) (io.ReadCloser, string, error)
	loadPreviewFn  func(ctx context.Context, id string) (io.ReadCloser, string, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockRemovalService) Remove(ctx context.Context, url string) ([]byte, error) {
	return m.removeFn(ctx, url)
}

func (m *mockRemovalService) RemoveBatch(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error) {
	return m.removeBatchFn(ctx, urls)
}

func (m *mockRemovalService) SubmitBatch(ctx context.Context, urls []string) ([]string, error) {
	return m.submitBatchFn(ctx, urls)
}

func (m *mockRemovalService) FetchResults(ctx context.Context, ids []string) (*model.BatchResultSet, error) {
	return m.fetchResultsFn(ctx, ids)
}

func (m *mockRemovalService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error) {
	return m.getListFn(ctx, req)
}

func (m *mockRemovalService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadResultFn(ctx, id)
}

func (m *mockRemovalService) LoadPreview(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadPreviewFn(ctx, id)
}

func (m *mockRemovalService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
