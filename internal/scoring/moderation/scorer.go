package moderation

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

// Scorer maps the OpenAI moderation endpoint onto the toxicity contract.
// The harassment and hate category scores are the closest analogue of the
// Detoxify "toxicity" head; the larger of the two is reported.
type Scorer struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

func NewScorer(log *logger.Logger) (*Scorer, error) {
	apiKey := envutil.String("OPENAI_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	return &Scorer{
		client: openai.NewClient(apiKey),
		model:  envutil.String("OPENAI_MODERATION_MODEL", openai.ModerationOmniLatest),
		log:    log.With("service", "ModerationScorer"),
	}, nil
}

func (s *Scorer) Predict(ctx context.Context, texts []string) ([]float64, error) {
	out := make([]float64, len(texts))
	for i, text := range texts {
		resp, err := s.client.Moderations(ctx, openai.ModerationRequest{
			Model: s.model,
			Input: text,
		})
		if err != nil {
			return nil, fmt.Errorf("moderation request %d/%d: %w", i+1, len(texts), err)
		}
		if len(resp.Results) == 0 {
			return nil, fmt.Errorf("moderation returned no result for input %d", i)
		}
		res := resp.Results[0]
		score := float64(res.CategoryScores.Harassment)
		if hate := float64(res.CategoryScores.Hate); hate > score {
			score = hate
		}
		out[i] = score
	}
	return out, nil
}
