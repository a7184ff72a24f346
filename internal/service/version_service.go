package service

import (
	"context"

	"docai-platform-be/internal/dto"
	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/pkg/diff"
	"docai-platform-be/pkg/versioning"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVersionService interface {
	History(ctx context.Context, id uuid.UUID) (*dto.VersionHistoryResponse, error)
	Diff(ctx context.Context, req *dto.ComputeDiffRequest) (*dto.VersionDiffResponse, error)
	ManualLink(ctx context.Context, id uuid.UUID, req *dto.ManualLinkRequest) (*dto.ManualLinkResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateStatusRequest) error
}

type versionService struct {
	store       versioning.GraphStore
	linker      *versioning.Linker
	diffEngine  *diff.Engine
	reviewQueue contract.ReviewQueueRepository
	log         logger.ILogger
}

func NewVersionService(
	store versioning.GraphStore,
	linker *versioning.Linker,
	diffEngine *diff.Engine,
	reviewQueue contract.ReviewQueueRepository,
	log logger.ILogger,
) IVersionService {
	return &versionService{
		store:       store,
		linker:      linker,
		diffEngine:  diffEngine,
		reviewQueue: reviewQueue,
		log:         log,
	}
}

func (s *versionService) History(ctx context.Context, id uuid.UUID) (*dto.VersionHistoryResponse, error) {
	path, err := s.store.GetLineagePath(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, versioning.ErrLineageNotFound
	}

	versions := make([]dto.ShowDocumentResponse, len(path))
	for i, node := range path {
		versions[i] = *toShowResponse(node)
	}
	return &dto.VersionHistoryResponse{
		LineageRootId: path[0].Id,
		Versions:      versions,
	}, nil
}

func (s *versionService) Diff(ctx context.Context, req *dto.ComputeDiffRequest) (*dto.VersionDiffResponse, error) {
	record, err := s.diffEngine.ComputeDiff(ctx, req.OldVersionId, req.NewVersionId)
	if err != nil {
		return nil, err
	}
	return toVersionDiffResponse(record), nil
}

func toVersionDiffResponse(record *entity.VersionDiff) *dto.VersionDiffResponse {
	return &dto.VersionDiffResponse{
		OldVersionId:    record.OldVersionId,
		NewVersionId:    record.NewVersionId,
		TextDiff:        record.TextDiff,
		Structural:      record.Structural,
		Semantic:        record.Semantic,
		ComputedAt:      record.ComputedAt,
		SemanticPending: record.Semantic == nil,
	}
}

// ManualLink is the operator path for documents parked in the review
// queue. It reuses the linker, so stale targets and frozen lineages
// fail the same way the automatic path does.
func (s *versionService) ManualLink(ctx context.Context, id uuid.UUID, req *dto.ManualLinkRequest) (*dto.ManualLinkResponse, error) {
	doc, err := s.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	verdict := &versioning.Verdict{
		IsSameDocument:       true,
		MatchedCandidateId:   req.TargetVersionId,
		Confidence:           1,
		Reason:               "manual operator link",
		NewIsNewer:           req.NewIsNewer,
		DetectedVersionLabel: req.VersionLabel,
	}
	outcome, err := s.linker.Apply(ctx, id, verdict)
	if err != nil {
		return nil, err
	}

	if err := s.reviewQueue.Remove(ctx, id); err != nil {
		s.log.Warn("versioning", "Failed to remove review flag after manual link", map[string]interface{}{
			"document_id": id,
			"error":       err.Error(),
		})
	}

	return &dto.ManualLinkResponse{
		Id:           id,
		LinkedTo:     req.TargetVersionId,
		VersionLabel: outcome.NewLabel,
	}, nil
}

func (s *versionService) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateStatusRequest) error {
	if !entity.ValidVersionStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}
	status := entity.VersionStatus(req.Status)

	doc, err := s.store.GetNode(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	// Archiving a head would leave the lineage without a latest
	// version, so the head keeps its flag only while active.
	isLatest := doc.IsLatest && status == entity.VersionStatusActive
	return s.store.SetStatus(ctx, id, status, isLatest)
}
