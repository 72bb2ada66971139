package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

const jobKeyPrefix = "analysis:job:"

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore returns a JobStore backed by Redis so multiple API replicas
// can share registry state. Requires REDIS_ADDR.
func NewRedisStore(log *logger.Logger) (JobStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "RedisJobStore"),
		rdb: rdb,
		ttl: envutil.DurationSeconds("ANALYSIS_JOB_TTL_SECONDS", 86400),
	}, nil
}

func jobKey(analysisID string) string { return jobKeyPrefix + analysisID }

func (s *redisStore) Put(ctx context.Context, job *types.AnalysisJob) error {
	if job == nil || job.AnalysisID == "" {
		return pkgerrors.ErrInvalidArgument
	}
	cp := *job
	cp.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return s.rdb.Set(ctx, jobKey(cp.AnalysisID), raw, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, analysisID string) (*types.AnalysisJob, error) {
	raw, err := s.rdb.Get(ctx, jobKey(analysisID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var job types.AnalysisJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Update runs the mutation under WATCH so concurrent pollers for the same
// analysis id cannot lose each other's writes; it retries on contention.
func (s *redisStore) Update(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) (*types.AnalysisJob, error) {
	key := jobKey(analysisID)
	var out *types.AnalysisJob

	txn := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return pkgerrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		var job types.AnalysisJob
		if err := json.Unmarshal(raw, &job); err != nil {
			return fmt.Errorf("unmarshal job: %w", err)
		}
		mutate(&job)
		job.UpdatedAt = time.Now().UTC()
		next, err := json.Marshal(&job)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err == nil {
			out = &job
		}
		return err
	}

	for attempt := 0; attempt < 5; attempt++ {
		err := s.rdb.Watch(ctx, txn, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("job update contention for %s", analysisID)
}
