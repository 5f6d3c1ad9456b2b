package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wbbot/parser/internal/config"
	"wbbot/parser/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ProductQueue is a set of named product stacks (Redis lists). The head is index 0.
type ProductQueue interface {
	CreateStack(ctx context.Context, stack string, products []domain.Product) error
	PushFront(ctx context.Context, stack string, product domain.Product) error
	PushBack(ctx context.Context, stack string, product domain.Product) error
	PopFront(ctx context.Context, stack string) (*domain.Product, error)  // nil when empty
	PeekFront(ctx context.Context, stack string) (*domain.Product, error) // nil when empty
	ListAll(ctx context.Context, stack string) ([]domain.Product, error)
	Count(ctx context.Context, stack string) (int64, error)
	DeleteStack(ctx context.Context, stack string) error
}

// AwaitMapping associates a queued product with the user awaiting its outcome
type AwaitMapping interface {
	SetMapping(ctx context.Context, productID, userID string) error
	GetMapping(ctx context.Context, productID string) (string, bool, error)
	DeleteMapping(ctx context.Context, productID string) error
	MappingKeyExists(ctx context.Context, table, key string) (bool, error)
	UserIDExistsInMapping(ctx context.Context, table, userID string) (bool, error)
	AwaitsTable() string
}

type Store interface {
	ProductQueue
	AwaitMapping
}

type RedisStore struct {
	redisClient   *redis.Client
	awaitsTable   string
	atomicReplace bool
}

func NewRedisStore(redisClient *redis.Client, cfg config.RedisConfig) *RedisStore {
	table := cfg.AwaitsTable
	if table == "" {
		table = "awaits"
	}
	return &RedisStore{
		redisClient:   redisClient,
		awaitsTable:   table,
		atomicReplace: cfg.AtomicReplace,
	}
}

// CreateStack replaces the stack with products, pushed to the head in one
// call, so the stored order is the reverse of the input. Unless atomic
// replace is enabled, DEL and LPUSH are separate round trips and a reader in
// between sees an empty stack.
func (s *RedisStore) CreateStack(ctx context.Context, stack string, products []domain.Product) error {
	values, err := encodeAll(products)
	if err != nil {
		return err
	}

	if s.atomicReplace {
		_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, stack)
			if len(values) > 0 {
				pipe.LPush(ctx, stack, values...)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to replace stack %s: %w", stack, err)
		}
		log.Debugf("Replaced stack %s with %d products in one transaction", stack, len(values))
		return nil
	}

	if err := s.DeleteStack(ctx, stack); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.redisClient.LPush(ctx, stack, values...).Err(); err != nil {
		return fmt.Errorf("failed to fill stack %s: %w", stack, err)
	}

	log.Debugf("Created stack %s with %d products", stack, len(values))
	return nil
}

func (s *RedisStore) PushFront(ctx context.Context, stack string, product domain.Product) error {
	value, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to serialize product %s: %w", product.ID, err)
	}
	if err := s.redisClient.LPush(ctx, stack, value).Err(); err != nil {
		return fmt.Errorf("failed to push to head of %s: %w", stack, err)
	}
	return nil
}

func (s *RedisStore) PushBack(ctx context.Context, stack string, product domain.Product) error {
	value, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to serialize product %s: %w", product.ID, err)
	}
	if err := s.redisClient.RPush(ctx, stack, value).Err(); err != nil {
		return fmt.Errorf("failed to push to tail of %s: %w", stack, err)
	}
	return nil
}

func (s *RedisStore) PopFront(ctx context.Context, stack string) (*domain.Product, error) {
	value, err := s.redisClient.LPop(ctx, stack).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from %s: %w", stack, err)
	}
	return decode(value)
}

func (s *RedisStore) PeekFront(ctx context.Context, stack string) (*domain.Product, error) {
	value, err := s.redisClient.LIndex(ctx, stack, 0).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read head of %s: %w", stack, err)
	}
	return decode(value)
}

// ListAll returns a snapshot of the stack, head first. Undecodable entries are skipped.
func (s *RedisStore) ListAll(ctx context.Context, stack string) ([]domain.Product, error) {
	values, err := s.redisClient.LRange(ctx, stack, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stack %s: %w", stack, err)
	}

	products := make([]domain.Product, 0, len(values))
	for i, value := range values {
		product, err := decode([]byte(value))
		if err != nil {
			log.Warnf("⚠️ Skipping entry %d of %s: %v", i, stack, err)
			continue
		}
		products = append(products, *product)
	}
	return products, nil
}

func (s *RedisStore) Count(ctx context.Context, stack string) (int64, error) {
	n, err := s.redisClient.LLen(ctx, stack).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count stack %s: %w", stack, err)
	}
	return n, nil
}

// DeleteStack is a no-op for a missing stack
func (s *RedisStore) DeleteStack(ctx context.Context, stack string) error {
	if err := s.redisClient.Del(ctx, stack).Err(); err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", stack, err)
	}
	return nil
}

// SetMapping overwrites any previous user for the product
func (s *RedisStore) SetMapping(ctx context.Context, productID, userID string) error {
	if err := s.redisClient.HSet(ctx, s.awaitsTable, productID, userID).Err(); err != nil {
		return fmt.Errorf("failed to map product %s to user %s: %w", productID, userID, err)
	}
	return nil
}

func (s *RedisStore) GetMapping(ctx context.Context, productID string) (string, bool, error) {
	userID, err := s.redisClient.HGet(ctx, s.awaitsTable, productID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get mapping for product %s: %w", productID, err)
	}
	return userID, true, nil
}

func (s *RedisStore) DeleteMapping(ctx context.Context, productID string) error {
	if err := s.redisClient.HDel(ctx, s.awaitsTable, productID).Err(); err != nil {
		return fmt.Errorf("failed to delete mapping for product %s: %w", productID, err)
	}
	return nil
}

func (s *RedisStore) MappingKeyExists(ctx context.Context, table, key string) (bool, error) {
	ok, err := s.redisClient.HExists(ctx, table, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s in %s: %w", key, table, err)
	}
	return ok, nil
}

// UserIDExistsInMapping scans every value of the table, O(number of keys)
func (s *RedisStore) UserIDExistsInMapping(ctx context.Context, table, userID string) (bool, error) {
	values, err := s.redisClient.HVals(ctx, table).Result()
	if err != nil {
		return false, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	for _, v := range values {
		if v == userID {
			return true, nil
		}
	}
	return false, nil
}

// AwaitsTable is the table used by the mapping operations
func (s *RedisStore) AwaitsTable() string {
	return s.awaitsTable
}

func encodeAll(products []domain.Product) ([]interface{}, error) {
	values := make([]interface{}, 0, len(products))
	for _, product := range products {
		value, err := json.Marshal(product)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize product %s: %w", product.ID, err)
		}
		values = append(values, value)
	}
	return values, nil
}

func decode(value []byte) (*domain.Product, error) {
	var product domain.Product
	if err := json.Unmarshal(value, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &product, nil
}
