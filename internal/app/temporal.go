package app

import (
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/temporalx"
)

const closeTimeout = 5 * time.Second

func temporalxClient(log *logger.Logger) (temporalsdkclient.Client, error) {
	return temporalx.NewClient(log)
}
