package service

import (
	"context"
	"encoding/json"

	"docai-platform-be/internal/dto"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/pkg/retrieval"
)

type IQueryService interface {
	Ask(ctx context.Context, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
}

type queryService struct {
	router           *retrieval.Router
	policy           *retrieval.Policy
	diffs            contract.VersionDiffRepository
	publisherService IPublisherService
	log              logger.ILogger
}

func NewQueryService(
	router *retrieval.Router,
	policy *retrieval.Policy,
	diffs contract.VersionDiffRepository,
	publisherService IPublisherService,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		router:           router,
		policy:           policy,
		diffs:            diffs,
		publisherService: publisherService,
		log:              log,
	}
}

// Ask classifies the question and resolves the version scope downstream
// retrieval must honor. An explicit comparison target overrides the
// router's reading.
func (s *queryService) Ask(ctx context.Context, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	plan := s.router.Route(ctx, req.Question)
	if req.CompareWithId != nil {
		plan.Mode = retrieval.ModeComparison
		plan.Reason = "explicit comparison target"
	}

	resp := &dto.AskQuestionResponse{
		Mode:         string(plan.Mode),
		Reason:       plan.Reason,
		VersionHints: plan.VersionHints,
	}
	if req.DocumentId == nil {
		return resp, nil
	}

	scope, err := s.policy.Resolve(ctx, plan.Mode, *req.DocumentId, req.CompareWithId)
	if err != nil {
		return nil, err
	}
	for _, v := range scope.Versions {
		resp.Scope = append(resp.Scope, dto.ScopedVersion{
			Id:           v.Id,
			Title:        v.Title,
			VersionLabel: v.VersionLabel,
			IsLatest:     v.IsLatest,
		})
	}

	if scope.Mode == retrieval.ModeComparison {
		s.attachDiff(ctx, scope, resp)
	}
	return resp, nil
}

// attachDiff serves the stored comparison record for the scoped pair
// when one exists, and otherwise enqueues its computation so a repeat of
// the question finds it ready. Never blocks the answer on diff work.
func (s *queryService) attachDiff(ctx context.Context, scope *retrieval.Scope, resp *dto.AskQuestionResponse) {
	if len(scope.Versions) != 2 {
		return
	}
	oldId, newId := scope.Versions[0].Id, scope.Versions[1].Id

	record, err := s.diffs.FindByPair(ctx, oldId, newId)
	if err != nil {
		s.log.Warn("query", "Failed to look up comparison record", map[string]interface{}{
			"old_id": oldId,
			"new_id": newId,
			"error":  err.Error(),
		})
		return
	}
	if record != nil {
		resp.Diff = toVersionDiffResponse(record)
		return
	}

	payload, err := json.Marshal(dto.ComputeDiffMessage{OldVersionId: oldId, NewVersionId: newId})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("query", "Failed to enqueue comparison diff", map[string]interface{}{
			"old_id": oldId,
			"new_id": newId,
			"error":  err.Error(),
		})
		return
	}
	resp.DiffPending = true
}
