package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
)

// GraphStore is an in-memory versioning.GraphStore. It mirrors the
// Postgres implementation's semantics, including atomic link mutations,
// and backs the linker and retrieval tests.
type GraphStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]*entity.Document
}

func NewGraphStore() *GraphStore {
	return &GraphStore{nodes: make(map[uuid.UUID]*entity.Document)}
}

// Put seeds or replaces a node outside the linker flow.
func (s *GraphStore) Put(doc *entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.nodes[doc.Id] = &cp
}

func (s *GraphStore) GetNode(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOf(id), nil
}

func (s *GraphStore) copyOf(id uuid.UUID) *entity.Document {
	node, ok := s.nodes[id]
	if !ok {
		return nil
	}
	cp := *node
	return &cp
}

func (s *GraphStore) GetLineageRoot(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootLocked(id)
}

func (s *GraphStore) rootLocked(id uuid.UUID) (*entity.Document, error) {
	node := s.copyOf(id)
	if node == nil {
		return nil, nil
	}
	visited := map[uuid.UUID]bool{node.Id: true}
	for node.ParentVersionId != nil {
		parent := s.copyOf(*node.ParentVersionId)
		if parent == nil {
			break
		}
		if visited[parent.Id] {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: node.Id,
				Detail:        fmt.Sprintf("cycle through version %s", parent.Id),
			}
		}
		visited[parent.Id] = true
		node = parent
	}
	return node, nil
}

func (s *GraphStore) GetLineagePath(_ context.Context, id uuid.UUID) ([]*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathLocked(id)
}

func (s *GraphStore) pathLocked(id uuid.UUID) ([]*entity.Document, error) {
	root, err := s.rootLocked(id)
	if err != nil || root == nil {
		return nil, err
	}

	path := []*entity.Document{root}
	visited := map[uuid.UUID]bool{root.Id: true}
	heads := 0
	if root.IsLatest {
		heads++
	}
	node := root
	for {
		children := s.childrenLocked(node.Id)
		if len(children) == 0 {
			break
		}
		if len(children) > 1 {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: root.Id,
				Detail:        fmt.Sprintf("version %s has %d children", node.Id, len(children)),
			}
		}
		child := children[0]
		if visited[child.Id] {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: root.Id,
				Detail:        fmt.Sprintf("cycle through version %s", child.Id),
			}
		}
		visited[child.Id] = true
		if child.IsLatest {
			heads++
		}
		path = append(path, child)
		node = child
	}

	if heads > 1 {
		return nil, &versioning.GraphInvariantViolation{
			LineageRootId: root.Id,
			Detail:        fmt.Sprintf("lineage has %d heads", heads),
		}
	}
	return path, nil
}

func (s *GraphStore) childrenLocked(parentId uuid.UUID) []*entity.Document {
	var children []*entity.Document
	for _, node := range s.nodes {
		if node.ParentVersionId != nil && *node.ParentVersionId == parentId {
			cp := *node
			children = append(children, &cp)
		}
	}
	return children
}

func (s *GraphStore) GetLineageHead(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	path, err := s.GetLineagePath(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, node := range path {
		if node.IsLatest {
			return node, nil
		}
	}
	return nil, nil
}

func (s *GraphStore) LinkAsNewer(_ context.Context, newId, oldId uuid.UUID, newLabel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.nodes[oldId]
	if !ok || !old.IsLatest {
		return &versioning.StaleLinkTargetError{TargetId: oldId}
	}
	newer, ok := s.nodes[newId]
	if !ok {
		return fmt.Errorf("document %s not found", newId)
	}

	now := time.Now()
	old.IsLatest = false
	old.Status = entity.VersionStatusSuperseded
	old.SupersededAt = &now

	parent := oldId
	newer.ParentVersionId = &parent
	newer.IsLatest = true
	newer.Status = entity.VersionStatusActive
	newer.VersionLabel = newLabel
	return nil
}

func (s *GraphStore) LinkAsOlder(_ context.Context, uploadedId, existingId uuid.UUID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.nodes[existingId]
	if !ok {
		return &versioning.StaleLinkTargetError{TargetId: existingId}
	}
	uploaded, ok := s.nodes[uploadedId]
	if !ok {
		return fmt.Errorf("document %s not found", uploadedId)
	}

	now := time.Now()
	uploaded.ParentVersionId = existing.ParentVersionId
	uploaded.IsLatest = false
	uploaded.Status = entity.VersionStatusSuperseded
	uploaded.SupersededAt = &now
	uploaded.VersionLabel = label

	parent := uploadedId
	existing.ParentVersionId = &parent
	return nil
}

func (s *GraphStore) SetStatus(_ context.Context, id uuid.UUID, status entity.VersionStatus, isLatest bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	node.Status = status
	node.IsLatest = isLatest
	if status == entity.VersionStatusSuperseded || status == entity.VersionStatusArchived {
		now := time.Now()
		node.SupersededAt = &now
	}
	return nil
}
