package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
)

type stubAnalysisService struct {
	startJob *types.AnalysisJob
	startErr error
	progress *types.AnalysisJob
	inline   pipeline.Result
}

func (s *stubAnalysisService) StartAnalysis(ctx context.Context, channelRef, analysisID string) (*types.AnalysisJob, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	return s.startJob, nil
}

func (s *stubAnalysisService) Progress(ctx context.Context, analysisID string) (*types.AnalysisJob, error) {
	return s.progress, nil
}

func (s *stubAnalysisService) RunInline(ctx context.Context, channelID string) (pipeline.Result, error) {
	return s.inline, nil
}

func newTestRouter(svc *stubAnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(svc)
	r := gin.New()
	r.POST("/api/analyze", h.Analyze)
	r.GET("/api/analysis/:id/progress", h.Progress)
	r.GET("/api/channel/:id/toxicity", h.ChannelToxicity)
	return r
}

func TestAnalyzeAccepted(t *testing.T) {
	r := newTestRouter(&stubAnalysisService{
		startJob: &types.AnalysisJob{AnalysisID: "a1", ChannelID: "UCx", Status: types.StatusAnalyzing},
	})

	body := strings.NewReader(`{"channel_url":"@creator","analysis_id":"a1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status=%d want 202: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["analysis_id"] != "a1" || resp["channel_id"] != "UCx" || resp["status"] != "started" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAnalyzeMissingChannelURL(t *testing.T) {
	r := newTestRouter(&stubAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestAnalyzeInvalidChannelReference(t *testing.T) {
	r := newTestRouter(&stubAnalysisService{
		startErr: fmt.Errorf("%w: unrecognized channel reference", pkgerrors.ErrInvalidArgument),
	})

	body := strings.NewReader(`{"channel_url":"???"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestProgressUnknownIDIsOK(t *testing.T) {
	r := newTestRouter(&stubAnalysisService{
		progress: &types.AnalysisJob{AnalysisID: "nope", Status: types.StatusNotFound, Message: "analysis not found"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/nope/progress", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "not_found" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestChannelToxicityInlineError(t *testing.T) {
	r := newTestRouter(&stubAnalysisService{
		inline: pipeline.Result{Status: pipeline.StatusError, Message: "no comments found for this channel"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/channel/UCx/toxicity", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rec.Code)
	}
}
