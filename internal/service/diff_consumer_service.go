package service

import (
	"context"
	"encoding/json"

	"docai-platform-be/internal/dto"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/diff"
	"docai-platform-be/pkg/versioning"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IDiffConsumerService interface {
	Consume(ctx context.Context) error
}

// diffConsumerService drains the diff job topic with a small fixed
// worker pool, so one slow semantic analysis does not stall the queue.
type diffConsumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	workerCount int
	diffEngine  *diff.Engine
	log         logger.ILogger
}

func NewDiffConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	workerCount int,
	diffEngine *diff.Engine,
	log logger.ILogger,
) IDiffConsumerService {
	if workerCount <= 0 {
		workerCount = 2
	}
	return &diffConsumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		workerCount: workerCount,
		diffEngine:  diffEngine,
		log:         log,
	}
}

func (cs *diffConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < cs.workerCount; i++ {
		go func() {
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}

	return nil
}

func (cs *diffConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ComputeDiffMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("diff", "Failed to unmarshal diff job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed jobs never become valid, drop them
		return
	}

	_, err := cs.diffEngine.ComputeDiff(ctx, payload.OldVersionId, payload.NewVersionId)
	if err != nil {
		if versioning.IsRetryable(err) {
			msg.Nack()
			return
		}
		// Invalid pairs and graph violations will fail identically on
		// every retry.
		cs.log.Warn("diff", "Diff job failed permanently", map[string]interface{}{
			"old_id": payload.OldVersionId,
			"new_id": payload.NewVersionId,
			"error":  err.Error(),
		})
		msg.Ack()
		return
	}

	cs.log.Info("diff", "Diff job completed", map[string]interface{}{
		"old_id": payload.OldVersionId,
		"new_id": payload.NewVersionId,
	})
	msg.Ack()
}
