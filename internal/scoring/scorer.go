package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/scoring/detoxify"
	"github.com/yungbote/toxicity-backend/internal/scoring/moderation"
)

// Scorer is the capability boundary to the classification model: one
// toxicity score in [0,1] per input text, in input order.
type Scorer interface {
	Predict(ctx context.Context, texts []string) ([]float64, error)
}

// FromEnv selects the scorer implementation by configuration.
//
//	SCORER_PROVIDER=detoxify  -> HTTP client for a Detoxify model server
//	SCORER_PROVIDER=openai    -> OpenAI moderation endpoint
func FromEnv(log *logger.Logger) (Scorer, error) {
	provider := strings.ToLower(envutil.String("SCORER_PROVIDER", "detoxify"))
	switch provider {
	case "detoxify":
		return detoxify.NewClient(log)
	case "openai":
		return moderation.NewScorer(log)
	default:
		return nil, fmt.Errorf("unknown SCORER_PROVIDER %q", provider)
	}
}
