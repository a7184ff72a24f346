package service

import (
	"context"
	"fmt"
	"time"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/pkg/mailer"
	"docai-platform-be/pkg/events"
	pktNats "docai-platform-be/pkg/nats"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
)

// versionEventSink fans linkage outcomes out to the NATS event bus and,
// for invariant violations, to the operator mailbox. All of it is best
// effort: a dead bus never fails a link.
type versionEventSink struct {
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
	operatorEmail  string
	log            logger.ILogger
}

func NewVersionEventSink(eventPublisher *pktNats.Publisher, emailService mailer.IEmailService, operatorEmail string, log logger.ILogger) versioning.EventSink {
	return &versionEventSink{
		eventPublisher: eventPublisher,
		emailService:   emailService,
		operatorEmail:  operatorEmail,
		log:            log,
	}
}

func (s *versionEventSink) VersionLinked(ctx context.Context, oldId, newId uuid.UUID, newIsNewer bool) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: "DOCUMENT_VERSION_LINKED",
		Data: map[string]interface{}{
			"old_version_id": oldId,
			"new_version_id": newId,
			"new_is_newer":   newIsNewer,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("versioning", "Failed to publish DOCUMENT_VERSION_LINKED event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if newIsNewer {
		superseded := events.BaseEvent{
			Type: "DOCUMENT_SUPERSEDED",
			Data: map[string]interface{}{
				"version_id": oldId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, superseded); err != nil {
			s.log.Warn("versioning", "Failed to publish DOCUMENT_SUPERSEDED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *versionEventSink) InvariantViolated(ctx context.Context, rootId uuid.UUID, detail string) {
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "VERSION_GRAPH_VIOLATION",
			Data: map[string]interface{}{
				"lineage_root_id": rootId,
				"detail":          detail,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("versioning", "Failed to publish VERSION_GRAPH_VIOLATION event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if s.emailService == nil || s.operatorEmail == "" {
		return
	}
	subject := "Version graph invariant violated"
	body := fmt.Sprintf("Lineage %s is frozen and needs manual reconciliation.\n\nDetail: %s\n", rootId, detail)
	if err := s.emailService.SendOperatorAlert(s.operatorEmail, subject, body); err != nil {
		s.log.Warn("versioning", "Failed to send operator alert", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
