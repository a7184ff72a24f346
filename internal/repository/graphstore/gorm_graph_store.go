package graphstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/mapper"
	"docai-platform-be/internal/model"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxLineageDepth bounds parent/child walks. A healthy lineage is a
// handful of versions; hitting the bound means the graph is corrupt.
const maxLineageDepth = 1000

// GormGraphStore implements versioning.GraphStore over Postgres. Both
// link operations run inside a single transaction so the graph can
// never be observed half-mutated.
type GormGraphStore struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewGormGraphStore(db *gorm.DB) versioning.GraphStore {
	return &GormGraphStore{db: db, mapper: mapper.NewDocumentMapper()}
}

func (s *GormGraphStore) GetNode(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return s.getNode(s.db.WithContext(ctx), id)
}

func (s *GormGraphStore) getNode(db *gorm.DB, id uuid.UUID) (*entity.Document, error) {
	var m model.Document
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.mapper.ToEntity(&m), nil
}

// GetLineageRoot walks parent pointers with a visited set; revisiting a
// node means the pointers form a cycle.
func (s *GormGraphStore) GetLineageRoot(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	db := s.db.WithContext(ctx)
	return s.walkToRoot(db, id)
}

func (s *GormGraphStore) walkToRoot(db *gorm.DB, id uuid.UUID) (*entity.Document, error) {
	node, err := s.getNode(db, id)
	if err != nil || node == nil {
		return nil, err
	}

	visited := map[uuid.UUID]bool{node.Id: true}
	for node.ParentVersionId != nil {
		parent, err := s.getNode(db, *node.ParentVersionId)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// Dangling parent pointer: treat the node as root rather
			// than failing reads for the whole lineage.
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
		if len(visited) > maxLineageDepth {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: node.Id,
				Detail:        "lineage exceeds maximum depth",
			}
		}
	}
	return node, nil
}

// GetLineagePath descends from the root along child pointers. A node
// with two live children breaks the single-path invariant.
func (s *GormGraphStore) GetLineagePath(ctx context.Context, id uuid.UUID) ([]*entity.Document, error) {
	db := s.db.WithContext(ctx)
	root, err := s.walkToRoot(db, id)
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
		var children []*model.Document
		if err := db.Where("parent_version_id = ?", node.Id).Find(&children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		if len(children) > 1 {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: root.Id,
				Detail:        fmt.Sprintf("version %s has %d children", node.Id, len(children)),
			}
		}
		child := s.mapper.ToEntity(children[0])
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
		if len(path) > maxLineageDepth {
			return nil, &versioning.GraphInvariantViolation{
				LineageRootId: root.Id,
				Detail:        "lineage exceeds maximum depth",
			}
		}
	}

	if heads > 1 {
		return nil, &versioning.GraphInvariantViolation{
			LineageRootId: root.Id,
			Detail:        fmt.Sprintf("lineage has %d heads", heads),
		}
	}
	return path, nil
}

func (s *GormGraphStore) GetLineageHead(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	path, err := s.GetLineagePath(ctx, id)
	if err != nil || len(path) == 0 {
		return nil, err
	}
	for _, node := range path {
		if node.IsLatest {
			return node, nil
		}
	}
	return nil, nil
}

func (s *GormGraphStore) LinkAsNewer(ctx context.Context, newId, oldId uuid.UUID, newLabel string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.Document{}).
			Where("id = ? AND is_latest = TRUE", oldId).
			Updates(map[string]interface{}{
				"is_latest":     false,
				"status":        string(entity.VersionStatusSuperseded),
				"superseded_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &versioning.StaleLinkTargetError{TargetId: oldId}
		}

		return tx.Model(&model.Document{}).
			Where("id = ?", newId).
			Updates(map[string]interface{}{
				"parent_version_id": oldId,
				"is_latest":         true,
				"status":            string(entity.VersionStatusActive),
				"version_label":     newLabel,
			}).Error
	})
}

func (s *GormGraphStore) LinkAsOlder(ctx context.Context, uploadedId, existingId uuid.UUID, label string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.getNode(tx, existingId)
		if err != nil {
			return err
		}
		if existing == nil {
			return &versioning.StaleLinkTargetError{TargetId: existingId}
		}

		now := time.Now()
		uploaded := map[string]interface{}{
			"is_latest":         false,
			"status":            string(entity.VersionStatusSuperseded),
			"superseded_at":     now,
			"version_label":     label,
			"parent_version_id": nil,
		}
		if existing.ParentVersionId != nil {
			uploaded["parent_version_id"] = *existing.ParentVersionId
		}
		if err := tx.Model(&model.Document{}).
			Where("id = ?", uploadedId).
			Updates(uploaded).Error; err != nil {
			return err
		}

		return tx.Model(&model.Document{}).
			Where("id = ?", existingId).
			Update("parent_version_id", uploadedId).Error
	})
}

func (s *GormGraphStore) SetStatus(ctx context.Context, id uuid.UUID, status entity.VersionStatus, isLatest bool) error {
	updates := map[string]interface{}{
		"status":    string(status),
		"is_latest": isLatest,
	}
	if status == entity.VersionStatusSuperseded || status == entity.VersionStatusArchived {
		updates["superseded_at"] = time.Now()
	}
	res := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
