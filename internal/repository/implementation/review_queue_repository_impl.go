package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"docai-platform-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const reviewQueueKey = "versioning:review_queue"

// ReviewQueueRepositoryImpl keeps manual-review flags in a redis hash
// keyed by document id, so flags survive restarts and duplicate flags
// for the same upload collapse into one.
type ReviewQueueRepositoryImpl struct {
	client *redis.Client
}

func NewReviewQueueRepository(client *redis.Client) contract.ReviewQueueRepository {
	return &ReviewQueueRepositoryImpl{client: client}
}

func (r *ReviewQueueRepositoryImpl) Push(ctx context.Context, flag *contract.ReviewFlag) error {
	data, err := json.Marshal(flag)
	if err != nil {
		return fmt.Errorf("marshal review flag: %w", err)
	}
	return r.client.HSet(ctx, reviewQueueKey, flag.DocumentId.String(), data).Err()
}

func (r *ReviewQueueRepositoryImpl) List(ctx context.Context, limit int) ([]*contract.ReviewFlag, error) {
	entries, err := r.client.HGetAll(ctx, reviewQueueKey).Result()
	if err != nil {
		return nil, err
	}
	flags := make([]*contract.ReviewFlag, 0, len(entries))
	for _, raw := range entries {
		var flag contract.ReviewFlag
		if err := json.Unmarshal([]byte(raw), &flag); err != nil {
			continue // skip corrupt entries, operator can clear the key
		}
		flags = append(flags, &flag)
		if limit > 0 && len(flags) >= limit {
			break
		}
	}
	return flags, nil
}

func (r *ReviewQueueRepositoryImpl) Remove(ctx context.Context, documentId uuid.UUID) error {
	return r.client.HDel(ctx, reviewQueueKey, documentId.String()).Err()
}
