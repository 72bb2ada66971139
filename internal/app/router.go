package app

import (
	apihttp "github.com/yungbote/toxicity-backend/internal/http"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *apihttp.Server {
	return apihttp.NewServer(apihttp.RouterConfig{
		Log:             log,
		HealthHandler:   handlerset.Health,
		AnalysisHandler: handlerset.Analysis,
	})
}
