package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"docai-platform-be/internal/dto"
	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/internal/repository/specification"
	"docai-platform-be/internal/repository/unitofwork"
	"docai-platform-be/pkg/embedding"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
)

// detection is retried once after a stale link target; the second
// attempt re-runs candidate search against fresh graph state.
const maxLinkAttempts = 2

type IDocumentService interface {
	Register(ctx context.Context, req *dto.RegisterDocumentRequest) (*dto.RegisterDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.ShowDocumentResponse, error)
	ListReviewQueue(ctx context.Context) ([]*dto.ReviewFlagResponse, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	finder            *versioning.Finder
	judge             *versioning.Judge
	linker            *versioning.Linker
	reviewQueue       contract.ReviewQueueRepository
	embeddingProvider embedding.EmbeddingProvider
	publisherService  IPublisherService
	log               logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	finder *versioning.Finder,
	judge *versioning.Judge,
	linker *versioning.Linker,
	reviewQueue contract.ReviewQueueRepository,
	embeddingProvider embedding.EmbeddingProvider,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		finder:            finder,
		judge:             judge,
		linker:            linker,
		reviewQueue:       reviewQueue,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		log:               log,
	}
}

// Register stores the document with its sections, then runs the
// detection pipeline: fingerprint dedupe, candidate search, judgment,
// linkage. Detection failures never lose the upload; the document
// stays registered standalone and is flagged for manual review.
func (s *documentService) Register(ctx context.Context, req *dto.RegisterDocumentRequest) (*dto.RegisterDocumentResponse, error) {
	fingerprint := contentFingerprint(req.Sections)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.DocumentRepository().FindOne(ctx, specification.ByFingerprint{Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("document", "Upload is a byte-identical duplicate", map[string]interface{}{
			"existing_id": existing.Id,
			"title":       req.Title,
		})
		return &dto.RegisterDocumentResponse{
			Id:           existing.Id,
			DuplicateOf:  &existing.Id,
			VersionLabel: existing.VersionLabel,
		}, nil
	}

	doc, err := s.persistDocument(ctx, req, fingerprint)
	if err != nil {
		return nil, err
	}

	resp := &dto.RegisterDocumentResponse{
		Id:           doc.Id,
		VersionLabel: doc.VersionLabel,
	}

	outcome, err := s.detectAndLink(ctx, doc)
	if err != nil {
		s.flagForReview(ctx, doc, err)
		resp.FlaggedForReview = true
		return resp, nil
	}
	if outcome != nil && outcome.Linked {
		resp.Linked = true
		resp.VersionLabel = outcome.NewLabel
		if outcome.NewIsNewer {
			resp.LinkedTo = &outcome.OldId
		} else {
			resp.LinkedTo = &outcome.NewId
		}
		s.enqueueDiff(ctx, outcome.OldId, outcome.NewId)
	}
	return resp, nil
}

func (s *documentService) persistDocument(ctx context.Context, req *dto.RegisterDocumentRequest, fingerprint string) (*entity.Document, error) {
	doc := &entity.Document{
		Id:                 uuid.New(),
		Title:              req.Title,
		DocType:            req.DocType,
		Summary:            req.Summary,
		ContentFingerprint: fingerprint,
		VersionLabel:       "v1.0",
		EffectiveDate:      req.EffectiveDate,
		Status:             entity.VersionStatusActive,
		IsLatest:           true,
		ChunkCount:         len(req.Sections),
		CreatedAt:          time.Now(),
	}

	chunks := make([]*entity.DocumentChunk, len(req.Sections))
	for i, section := range req.Sections {
		chunks[i] = &entity.DocumentChunk{
			Id:          uuid.New(),
			DocumentId:  doc.Id,
			SectionPath: section.SectionPath,
			ChunkIndex:  i,
			Content:     section.Content,
			PageNumbers: section.PageNumbers,
			CreatedAt:   time.Now(),
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// The summary embedding feeds future content-similarity searches.
	// Its absence only degrades detection, so failure is non-fatal.
	if req.Summary != "" {
		if res, err := s.embeddingProvider.Generate(req.Summary, "RETRIEVAL_DOCUMENT"); err != nil {
			s.log.Warn("document", "Failed to embed document summary", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
		} else {
			embedUow := s.uowFactory.NewUnitOfWork(ctx)
			if err := embedUow.SummaryEmbeddingRepository().Upsert(ctx, doc.Id, res.Embedding.Values); err != nil {
				s.log.Warn("document", "Failed to store summary embedding", map[string]interface{}{
					"document_id": doc.Id,
					"error":       err.Error(),
				})
			}
		}
	}

	return doc, nil
}

// detectAndLink runs candidate search, judgment, and linkage. A stale
// link target gets one retry with fresh candidates; anything else
// bubbles up to the review path.
func (s *documentService) detectAndLink(ctx context.Context, doc *entity.Document) (*versioning.LinkOutcome, error) {
	newDoc := versioning.NewDocument{
		Id:      doc.Id,
		Title:   doc.Title,
		Summary: doc.Summary,
		DocType: doc.DocType,
	}

	var lastErr error
	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		candidates, err := s.finder.FindCandidates(ctx, newDoc)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, nil
		}

		verdict, err := s.judge.Judge(ctx, newDoc, candidates)
		if errors.Is(err, versioning.ErrDetectionInconclusive) {
			// Normal outcome: the upload is a brand-new document.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		outcome, err := s.linker.Apply(ctx, doc.Id, verdict)
		if err == nil {
			return outcome, nil
		}
		if !versioning.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("document", "Link target went stale, retrying detection", map[string]interface{}{
			"document_id": doc.Id,
			"attempt":     attempt + 1,
		})
	}
	return nil, lastErr
}

func (s *documentService) flagForReview(ctx context.Context, doc *entity.Document, cause error) {
	s.log.Warn("document", "Version detection inconclusive, flagging for review", map[string]interface{}{
		"document_id": doc.Id,
		"title":       doc.Title,
		"cause":       cause.Error(),
	})

	flag := &contract.ReviewFlag{
		DocumentId: doc.Id,
		Title:      doc.Title,
		Reason:     cause.Error(),
		FlaggedAt:  time.Now(),
	}
	if err := s.reviewQueue.Push(ctx, flag); err != nil {
		s.log.Error("document", "Failed to push review flag", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
	}
}

func (s *documentService) enqueueDiff(ctx context.Context, oldId, newId uuid.UUID) {
	payload, err := json.Marshal(dto.ComputeDiffMessage{OldVersionId: oldId, NewVersionId: newId})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("document", "Failed to enqueue diff computation", map[string]interface{}{
			"old_id": oldId,
			"new_id": newId,
			"error":  err.Error(),
		})
	}
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return toShowResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.ShowDocumentResponse, error) {
	specs := []specification.Specification{
		specification.NotArchived{},
		specification.ByDocType{DocType: req.DocType},
	}
	if req.LatestOnly {
		specs = append(specs, specification.IsLatest{})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ShowDocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toShowResponse(doc)
	}
	return out, nil
}

func (s *documentService) ListReviewQueue(ctx context.Context) ([]*dto.ReviewFlagResponse, error) {
	flags, err := s.reviewQueue.List(ctx, 100)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ReviewFlagResponse, len(flags))
	for i, flag := range flags {
		out[i] = &dto.ReviewFlagResponse{
			DocumentId: flag.DocumentId,
			Title:      flag.Title,
			Reason:     flag.Reason,
			FlaggedAt:  flag.FlaggedAt,
		}
	}
	return out, nil
}

func toShowResponse(doc *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:              doc.Id,
		Title:           doc.Title,
		DocType:         doc.DocType,
		Summary:         doc.Summary,
		VersionLabel:    doc.VersionLabel,
		Status:          string(doc.Status),
		IsLatest:        doc.IsLatest,
		ParentVersionId: doc.ParentVersionId,
		EffectiveDate:   doc.EffectiveDate,
		ChunkCount:      doc.ChunkCount,
		CreatedAt:       doc.CreatedAt,
		SupersededAt:    doc.SupersededAt,
	}
}

// contentFingerprint hashes section paths and bodies in order, so the
// same content parsed the same way always collides.
func contentFingerprint(sections []dto.SectionInput) string {
	h := sha256.New()
	for _, section := range sections {
		h.Write([]byte(strings.TrimSpace(section.SectionPath)))
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(section.Content)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
