package service

import (
	"context"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/pkg/events"
	pktNats "docai-platform-be/pkg/nats"

	"github.com/google/uuid"
)

// IEventConsumerService keeps the review queue in sync with versioning
// events: graph violations surface as review flags, successful links
// settle them.
type IEventConsumerService interface {
	Start() error
}

type versionEventConsumerService struct {
	subscriber  *pktNats.Subscriber
	reviewQueue contract.ReviewQueueRepository
	log         logger.ILogger
}

func NewVersionEventConsumerService(
	subscriber *pktNats.Subscriber,
	reviewQueue contract.ReviewQueueRepository,
	log logger.ILogger,
) IEventConsumerService {
	return &versionEventConsumerService{
		subscriber:  subscriber,
		reviewQueue: reviewQueue,
		log:         log,
	}
}

func (s *versionEventConsumerService) Start() error {
	if s.subscriber == nil {
		s.log.Warn("events", "NATS subscriber unavailable, review queue sync disabled", map[string]interface{}{})
		return nil
	}
	if err := s.subscriber.Subscribe("events.VERSION_GRAPH_VIOLATION", "review-queue-violations", s.handleViolation); err != nil {
		return err
	}
	return s.subscriber.Subscribe("events.DOCUMENT_VERSION_LINKED", "review-queue-links", s.handleLinked)
}

// handleViolation parks the frozen lineage in the review queue so it
// shows up where operators already look.
func (s *versionEventConsumerService) handleViolation(ctx context.Context, event events.Event) error {
	rootId, ok := payloadId(event.Payload(), "lineage_root_id")
	if !ok {
		s.log.Warn("events", "Violation event without a lineage root id", map[string]interface{}{
			"payload": event.Payload(),
		})
		return nil
	}
	detail, _ := event.Payload()["detail"].(string)

	return s.reviewQueue.Push(ctx, &contract.ReviewFlag{
		DocumentId: rootId,
		Title:      "Lineage frozen",
		Reason:     detail,
		FlaggedAt:  event.Timestamp(),
	})
}

// handleLinked settles any earlier flag for the linked upload; a
// successful link resolves whatever parked it.
func (s *versionEventConsumerService) handleLinked(ctx context.Context, event events.Event) error {
	newId, ok := payloadId(event.Payload(), "new_version_id")
	if !ok {
		return nil
	}
	return s.reviewQueue.Remove(ctx, newId)
}

// payloadId reads a uuid event field, which arrives typed in-process
// and as a string after a bus round trip.
func payloadId(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	switch v := payload[key].(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}
