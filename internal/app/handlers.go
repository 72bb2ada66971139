package app

import (
	httpH "github.com/yungbote/toxicity-backend/internal/http/handlers"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Analysis *httpH.AnalysisHandler
}

func wireHandlers(serviceset Services) Handlers {
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Analysis: httpH.NewAnalysisHandler(serviceset.Analysis),
	}
}
