package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeReviewQueue struct {
	mu    sync.Mutex
	flags map[uuid.UUID]*contract.ReviewFlag
}

func newFakeReviewQueue() *fakeReviewQueue {
	return &fakeReviewQueue{flags: make(map[uuid.UUID]*contract.ReviewFlag)}
}

func (q *fakeReviewQueue) Push(_ context.Context, flag *contract.ReviewFlag) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := *flag
	q.flags[flag.DocumentId] = &cp
	return nil
}

func (q *fakeReviewQueue) List(_ context.Context, _ int) ([]*contract.ReviewFlag, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*contract.ReviewFlag
	for _, flag := range q.flags {
		cp := *flag
		out = append(out, &cp)
	}
	return out, nil
}

func (q *fakeReviewQueue) Remove(_ context.Context, documentId uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.flags, documentId)
	return nil
}

func newConsumerUnderTest(queue contract.ReviewQueueRepository) *versionEventConsumerService {
	return NewVersionEventConsumerService(nil, queue, logger.NewNopLogger()).(*versionEventConsumerService)
}

func TestEventConsumerViolationParksReviewFlag(t *testing.T) {
	queue := newFakeReviewQueue()
	consumer := newConsumerUnderTest(queue)

	rootId := uuid.New()
	occurred := time.Now()
	err := consumer.handleViolation(context.Background(), events.BaseEvent{
		Type: "VERSION_GRAPH_VIOLATION",
		Data: map[string]interface{}{
			"lineage_root_id": rootId,
			"detail":          "lineage has 2 heads",
		},
		OccurredAt: occurred,
	})
	assert.NoError(t, err)

	flag, ok := queue.flags[rootId]
	if assert.True(t, ok) {
		assert.Equal(t, "Lineage frozen", flag.Title)
		assert.Equal(t, "lineage has 2 heads", flag.Reason)
		assert.Equal(t, occurred, flag.FlaggedAt)
	}
}

func TestEventConsumerViolationParsesStringId(t *testing.T) {
	queue := newFakeReviewQueue()
	consumer := newConsumerUnderTest(queue)

	// After a bus round trip the payload arrives JSON-decoded, with the
	// id as a plain string.
	rootId := uuid.New()
	err := consumer.handleViolation(context.Background(), events.BaseEvent{
		Type: "VERSION_GRAPH_VIOLATION",
		Data: map[string]interface{}{
			"lineage_root_id": rootId.String(),
			"detail":          "version has 2 children",
		},
		OccurredAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.Contains(t, queue.flags, rootId)
}

func TestEventConsumerViolationWithoutIdIsDropped(t *testing.T) {
	queue := newFakeReviewQueue()
	consumer := newConsumerUnderTest(queue)

	err := consumer.handleViolation(context.Background(), events.BaseEvent{
		Type:       "VERSION_GRAPH_VIOLATION",
		Data:       map[string]interface{}{"detail": "no id"},
		OccurredAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.Empty(t, queue.flags)
}

func TestEventConsumerLinkSettlesFlag(t *testing.T) {
	queue := newFakeReviewQueue()
	consumer := newConsumerUnderTest(queue)

	docId := uuid.New()
	err := queue.Push(context.Background(), &contract.ReviewFlag{
		DocumentId: docId,
		Title:      "Version detection inconclusive",
		FlaggedAt:  time.Now(),
	})
	assert.NoError(t, err)

	err = consumer.handleLinked(context.Background(), events.BaseEvent{
		Type:       "DOCUMENT_VERSION_LINKED",
		Data:       map[string]interface{}{"new_version_id": docId},
		OccurredAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.Empty(t, queue.flags)
}

func TestEventConsumerStartWithoutSubscriber(t *testing.T) {
	consumer := newConsumerUnderTest(newFakeReviewQueue())
	assert.NoError(t, consumer.Start())
}
