// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type TaskHandler struct {
	service RemovalService
}

type RemovalService interface {
	Remove(ctx context.Context, url string) ([]byte, error)                            // синхронно, байты сразу в ответ
	RemoveBatch(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error) // синхронный фанаут
	SubmitBatch(ctx context.Context, urls []string) ([]string, error)                  // фанаут через очередь, ответ - список ID
	FetchResults(ctx context.Context, ids []string) (*model.BatchResultSet, error)     // неблокирующий опрос статусов
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error)         // получить список задач
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)          // прям скачать результат
	LoadPreview(ctx context.Context, id string) (io.ReadCloser, string, error)         // скачать превью
	Delete(ctx context.Context, id string) error                                       // удалить как в базе, так и в minio
}

func NewTaskHandler(svc RemovalService) *TaskHandler {
	return &TaskHandler{
		service: svc,
	}
}

func (h TaskHandler) HealthCheck(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"status": "healthy"})
}

func (h TaskHandler) Remove(ctx *ginext.Context) {
	var req model.RemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "url is required"})
		return
	}

	data, err := h.service.Remove(ctx.Request.Context(), req.URL)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+model.ResultFileName)
	ctx.Data(200, model.PNG, data)
}

func (h TaskHandler) RemoveBatch(ctx *ginext.Context) {
	var req model.BatchRemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "urls are required"})
		return
	}

	outcomes, err := h.service.RemoveBatch(ctx.Request.Context(), req.URLs)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, outcomes)
}

func (h TaskHandler) SubmitBatch(ctx *ginext.Context) {
	var req model.BatchRemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "urls are required"})
		return
	}

	flowIDs, err := h.service.SubmitBatch(ctx.Request.Context(), req.URLs)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(202, model.BatchSubmitResponse{
		FlowIDs: flowIDs,
		Message: fmt.Sprintf("Started processing %d images", len(flowIDs)),
		Status:  "RUNNING",
		Count:   len(flowIDs),
	})
}

func (h TaskHandler) FetchResults(ctx *ginext.Context) {
	var ids []string
	if err := ctx.ShouldBindJSON(&ids); err != nil {
		ctx.JSON(400, map[string]string{"error": "list of flow IDs is required"})
		return
	}

	res, err := h.service.FetchResults(ctx.Request.Context(), ids)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h TaskHandler) GetAllTasks(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h TaskHandler) LoadResult(ctx *ginext.Context) {
	h.serveBlob(ctx, h.service.LoadResult)
}

func (h TaskHandler) LoadPreview(ctx *ginext.Context) {
	h.serveBlob(ctx, h.service.LoadPreview)
}

func (h TaskHandler) serveBlob(ctx *ginext.Context, load func(context.Context, string) (io.ReadCloser, string, error)) {
	id := ctx.Param("id")

	res, cType, err := load(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for task id %q: %v", n, id, err)
	}
}

func (h TaskHandler) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}
