package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wbbot/parser/internal/domain"

	"github.com/redis/go-redis/v9"
)

// StateManager keeps the outcome of the last ingestion cycle for operators
type StateManager interface {
	SaveCycleReport(ctx context.Context, report *domain.CycleReport) error
	GetLastCycleReport(ctx context.Context) (*domain.CycleReport, error) // nil when no cycle ran yet
}

type redisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		key:         "wb:cycle:last",
	}
}

func (s *redisStateManager) SaveCycleReport(ctx context.Context, report *domain.CycleReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize cycle report %s: %w", report.ID, err)
	}
	if err := s.redisClient.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cycle report %s: %w", report.ID, err)
	}
	return nil
}

func (s *redisStateManager) GetLastCycleReport(ctx context.Context) (*domain.CycleReport, error) {
	value, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last cycle report: %w", err)
	}

	var report domain.CycleReport
	if err := json.Unmarshal(value, &report); err != nil {
		return nil, fmt.Errorf("failed to decode last cycle report: %w", err)
	}
	return &report, nil
}
