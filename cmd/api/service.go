package main

import (
	"context"
	"io"

	"github.com/UnendingLoop/BgRemover/internal/model"
)

type TaskAPIService interface {
	Remove(ctx context.Context, url string) ([]byte, error)
	RemoveBatch(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error)
	SubmitBatch(ctx context.Context, urls []string) ([]string, error)
	FetchResults(ctx context.Context, ids []string) (*model.BatchResultSet, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error)
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)
	LoadPreview(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
	ReviveOrphans(ctx context.Context, limit int)
}
