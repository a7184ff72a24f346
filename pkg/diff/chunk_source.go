package diff

import (
	"context"
	"strings"

	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/internal/repository/specification"

	"github.com/google/uuid"
)

// RepositoryChunkSource reassembles sections from stored chunks,
// preserving chunk order within each section path.
type RepositoryChunkSource struct {
	chunks contract.DocumentChunkRepository
}

func NewRepositoryChunkSource(chunks contract.DocumentChunkRepository) *RepositoryChunkSource {
	return &RepositoryChunkSource{chunks: chunks}
}

func (s *RepositoryChunkSource) Sections(ctx context.Context, documentId uuid.UUID) ([]Section, error) {
	chunks, err := s.chunks.FindAll(ctx, specification.ByDocumentId{DocumentId: documentId})
	if err != nil {
		return nil, err
	}

	var sections []Section
	index := make(map[string]int)
	for _, chunk := range chunks {
		if i, ok := index[chunk.SectionPath]; ok {
			sections[i].Content = sections[i].Content + "\n\n" + chunk.Content
			continue
		}
		index[chunk.SectionPath] = len(sections)
		sections = append(sections, Section{
			Path:    chunk.SectionPath,
			Content: strings.TrimSpace(chunk.Content),
		})
	}
	return sections, nil
}
