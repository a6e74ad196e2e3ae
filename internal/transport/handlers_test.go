package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/BgRemover/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestTaskHandler_HealthCheck(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(nil)

	r.GET("/health", func(c *gin.Context) {
		h.HealthCheck((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
}

func newJSONRequest(t *testing.T, path string, payload any) *http.Request {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestTaskHandler_Remove(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockRemovalService
		wantStatus int
	}{
		{
			name: "success",
			req:  newJSONRequest(t, "/remove", model.RemoveRequest{URL: "https://x/a.jpg"}),
			mock: &mockRemovalService{
				removeFn: func(ctx context.Context, url string) ([]byte, error) {
					require.Equal(t, "https://x/a.jpg", url)
					return []byte("png-bytes"), nil
				},
			},
			wantStatus: 200,
		},
		{
			name: "bad url",
			req:  newJSONRequest(t, "/remove", model.RemoveRequest{URL: "nope"}),
			mock: &mockRemovalService{
				removeFn: func(ctx context.Context, url string) ([]byte, error) {
					return nil, model.ErrIncorrectURL
				},
			},
			wantStatus: 400,
		},
		{
			name: "vendor rejected",
			req:  newJSONRequest(t, "/remove", model.RemoveRequest{URL: "https://x/a.jpg"}),
			mock: &mockRemovalService{
				removeFn: func(ctx context.Context, url string) ([]byte, error) {
					return nil, &model.UpstreamError{Code: 402, Message: "quota exceeded"}
				},
			},
			wantStatus: 502,
		},
		{
			name: "vendor unreachable",
			req:  newJSONRequest(t, "/remove", model.RemoveRequest{URL: "https://x/a.jpg"}),
			mock: &mockRemovalService{
				removeFn: func(ctx context.Context, url string) ([]byte, error) {
					return nil, &model.NetworkError{Err: context.DeadlineExceeded}
				},
			},
			wantStatus: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewTaskHandler(tt.mock)

			r.POST("/remove", func(c *gin.Context) {
				h.Remove((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == 200 {
				require.Equal(t, model.PNG, w.Header().Get("Content-Type"))
				require.Contains(t, w.Header().Get("Content-Disposition"), model.ResultFileName)
				require.NotEmpty(t, w.Body.Bytes())
			}
		})
	}
}

func TestTaskHandler_RemoveBatch(t *testing.T) {
	mock := &mockRemovalService{
		removeBatchFn: func(ctx context.Context, urls []string) ([]model.ProcessingOutcome, error) {
			require.Len(t, urls, 2)
			return []model.ProcessingOutcome{
				{SourceURL: urls[0], Success: true, ProcessedURL: "http://minio/inline/a.png"},
				{SourceURL: urls[1], Success: false, Error: "vendor API returned status 400: bad image"},
			}, nil
		},
	}

	r := gin.New()
	h := NewTaskHandler(mock)
	r.POST("/remove-batch", func(c *gin.Context) {
		h.RemoveBatch((*ginext.Context)(c))
	})

	req := newJSONRequest(t, "/remove-batch", model.BatchRemoveRequest{URLs: []string{"https://x/a.jpg", "https://x/bad.jpg"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var outcomes []model.ProcessingOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcomes))
	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Success)
	require.False(t, outcomes[1].Success)
}

func TestTaskHandler_SubmitBatch(t *testing.T) {
	tests := []struct {
		name       string
		payload    any
		mock       *mockRemovalService
		wantStatus int
	}{
		{
			name:    "success",
			payload: model.BatchRemoveRequest{URLs: []string{"https://x/1.jpg", "https://x/2.jpg"}},
			mock: &mockRemovalService{
				submitBatchFn: func(ctx context.Context, urls []string) ([]string, error) {
					return []string{uuid.New().String(), uuid.New().String()}, nil
				},
			},
			wantStatus: 202,
		},
		{
			name:    "empty batch",
			payload: model.BatchRemoveRequest{},
			mock: &mockRemovalService{
				submitBatchFn: func(ctx context.Context, urls []string) ([]string, error) {
					return nil, model.ErrEmptyBatch
				},
			},
			wantStatus: 400,
		},
		{
			name:    "queue down",
			payload: model.BatchRemoveRequest{URLs: []string{"https://x/1.jpg"}},
			mock: &mockRemovalService{
				submitBatchFn: func(ctx context.Context, urls []string) ([]string, error) {
					return nil, model.ErrQueueUnavailable
				},
			},
			wantStatus: 503,
		},
		{
			name:    "task store down",
			payload: model.BatchRemoveRequest{URLs: []string{"https://x/1.jpg"}},
			mock: &mockRemovalService{
				submitBatchFn: func(ctx context.Context, urls []string) ([]string, error) {
					return nil, model.ErrOrchestrationUnavailable
				},
			},
			wantStatus: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewTaskHandler(tt.mock)
			r.POST("/batch/submit", func(c *gin.Context) {
				h.SubmitBatch((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newJSONRequest(t, "/batch/submit", tt.payload))

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == 202 {
				var resp model.BatchSubmitResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.Equal(t, "RUNNING", resp.Status)
				require.Equal(t, 2, resp.Count)
				require.Len(t, resp.FlowIDs, 2)
			}
		})
	}
}

func TestTaskHandler_FetchResults(t *testing.T) {
	doneID := uuid.New().String()

	mock := &mockRemovalService{
		fetchResultsFn: func(ctx context.Context, ids []string) (*model.BatchResultSet, error) {
			return &model.BatchResultSet{
				Results: map[string]model.ProcessingOutcome{
					doneID: {SourceURL: "https://x/a.jpg", Success: true, ProcessedURL: "http://minio/res/a.png"},
				},
				TotalCount:   2,
				SuccessCount: 1,
				RunningCount: 1,
			}, nil
		},
	}

	r := gin.New()
	h := NewTaskHandler(mock)
	r.POST("/batch/results", func(c *gin.Context) {
		h.FetchResults((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newJSONRequest(t, "/batch/results", []string{doneID, uuid.New().String()}))

	require.Equal(t, 200, w.Code)

	var set model.BatchResultSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
	require.Equal(t, 2, set.TotalCount)
	require.Equal(t, 1, set.SuccessCount)
	require.Equal(t, 1, set.RunningCount)
	require.Len(t, set.Results, 1)
}

func TestTaskHandler_FetchResults_BadBody(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockRemovalService{})
	r.POST("/batch/results", func(c *gin.Context) {
		h.FetchResults((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/batch/results", bytes.NewReader([]byte(`{"oops":true}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
}

func TestTaskHandler_GetAllTasks(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		mock       *mockRemovalService
		wantStatus int
	}{
		{
			name:  "success",
			query: "?page=1&limit=10",
			mock: &mockRemovalService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Task, error) {
					return []model.Task{{}}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "bad query",
			query:      "?page=abc",
			mock:       &mockRemovalService{},
			wantStatus: 400,
		},
		{
			name:  "service error",
			query: "",
			mock: &mockRemovalService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Task, error) {
					return nil, model.ErrCommon500
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewTaskHandler(tt.mock)

			r.GET("/tasks", func(c *gin.Context) {
				h.GetAllTasks((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks"+tt.query, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTaskHandler_LoadResult(t *testing.T) {
	tests := []struct {
		name       string
		mock       *mockRemovalService
		wantStatus int
	}{
		{
			name: "success",
			mock: &mockRemovalService{
				loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return io.NopCloser(bytes.NewReader([]byte("png"))), model.PNG, nil
				},
			},
			wantStatus: 200,
		},
		{
			name: "not ready",
			mock: &mockRemovalService{
				loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return nil, "", model.ErrResultNotReady
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewTaskHandler(tt.mock)

			r.GET("/tasks/:id/result", func(c *gin.Context) {
				h.LoadResult((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.New().String()+"/result", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	mock := &mockRemovalService{
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	}

	r := gin.New()
	h := NewTaskHandler(mock)
	r.DELETE("/tasks/:id", func(c *gin.Context) {
		h.Delete((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, 204, w.Code)
}
