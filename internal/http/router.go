package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/toxicity-backend/internal/http/handlers"
	httpMW "github.com/yungbote/toxicity-backend/internal/http/middleware"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AnalysisHandler *httpH.AnalysisHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("toxicity-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AnalysisHandler != nil {
			api.POST("/analyze", cfg.AnalysisHandler.Analyze)
			api.GET("/analysis/:id/progress", cfg.AnalysisHandler.Progress)
			api.GET("/channel/:id/toxicity", cfg.AnalysisHandler.ChannelToxicity)
		}
	}

	return r
}
