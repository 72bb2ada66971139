package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/toxicity-backend/internal/http/response"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
	"github.com/yungbote/toxicity-backend/internal/services"
)

type AnalysisHandler struct {
	analysis services.AnalysisService
}

func NewAnalysisHandler(analysis services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

type analyzeRequest struct {
	ChannelURL string `json:"channel_url"`
	AnalysisID string `json:"analysis_id"`
}

// POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.ChannelURL) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_channel_url", errors.New("channel_url is required"))
		return
	}

	job, err := h.analysis.StartAnalysis(c.Request.Context(), req.ChannelURL, req.AnalysisID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "analysis_start_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":     true,
		"status":      "started",
		"analysis_id": job.AnalysisID,
		"channel_id":  job.ChannelID,
	})
}

// GET /api/analysis/:id/progress
//
// Always answers 200; unknown ids report status not_found so pollers can keep
// a uniform handling path.
func (h *AnalysisHandler) Progress(c *gin.Context) {
	job, err := h.analysis.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"status":   job.Status,
		"progress": job.Progress,
		"message":  job.Message,
	})
}

// GET /api/channel/:id/toxicity
//
// Synchronous variant of the analysis: runs the pipeline in-request.
func (h *AnalysisHandler) ChannelToxicity(c *gin.Context) {
	res, err := h.analysis.RunInline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	if res.Status == pipeline.StatusError {
		response.RespondError(c, http.StatusInternalServerError, "analysis_failed", errors.New(res.Message))
		return
	}
	response.RespondOK(c, res)
}
