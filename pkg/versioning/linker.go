package versioning

import (
	"context"
	"errors"
	"sync"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// EventSink receives linkage outcomes. Implementations publish to the
// event bus and alert operators; failures there must not fail linkage.
type EventSink interface {
	VersionLinked(ctx context.Context, oldId, newId uuid.UUID, newIsNewer bool)
	InvariantViolated(ctx context.Context, rootId uuid.UUID, detail string)
}

// LinkOutcome describes what the linker did with a verdict.
type LinkOutcome struct {
	Linked     bool
	NewIsNewer bool
	// OldId/NewId is the chronologically ordered pair for diff
	// computation; only set when Linked.
	OldId    uuid.UUID
	NewId    uuid.UUID
	NewLabel string
}

// Linker applies accepted verdicts as atomic graph mutations. All
// linkage for one lineage is serialized on a mutex keyed by the lineage
// root, so two uploads cannot both supersede the same head.
type Linker struct {
	store GraphStore
	sink  EventSink
	log   logger.ILogger

	locks  *keyedMutex
	mu     sync.Mutex
	frozen map[uuid.UUID]string // lineage root -> violation detail
}

func NewLinker(store GraphStore, sink EventSink, log logger.ILogger) *Linker {
	return &Linker{
		store:  store,
		sink:   sink,
		log:    log,
		locks:  newKeyedMutex(),
		frozen: make(map[uuid.UUID]string),
	}
}

// Apply links newDocId according to the verdict. A nil verdict is the
// standalone path: the document keeps its registration state (active,
// latest, own single-node lineage) and no mutation happens.
//
// Under the lineage lock the verdict target is re-validated against
// current state; a target that is no longer the head fails with
// *StaleLinkTargetError, which the caller retries after a fresh
// candidate search.
func (l *Linker) Apply(ctx context.Context, newDocId uuid.UUID, verdict *Verdict) (*LinkOutcome, error) {
	if verdict == nil || !verdict.IsSameDocument {
		return &LinkOutcome{Linked: false}, nil
	}

	// The lineage root can move while we wait for the lock (an older
	// version may be prepended), so recompute it after acquiring and
	// retry on a different key if it changed.
	for attempt := 0; attempt < 3; attempt++ {
		root, err := l.store.GetLineageRoot(ctx, verdict.MatchedCandidateId)
		if err != nil {
			return nil, l.interceptViolation(ctx, err)
		}
		if root == nil {
			return nil, &StaleLinkTargetError{TargetId: verdict.MatchedCandidateId}
		}

		unlock := l.locks.Lock(root.Id)

		current, err := l.store.GetLineageRoot(ctx, verdict.MatchedCandidateId)
		if err != nil {
			unlock()
			return nil, l.interceptViolation(ctx, err)
		}
		if current == nil || current.Id != root.Id {
			unlock()
			continue
		}

		outcome, err := l.applyLocked(ctx, newDocId, verdict, root.Id)
		unlock()
		return outcome, err
	}
	return nil, &StaleLinkTargetError{TargetId: verdict.MatchedCandidateId}
}

func (l *Linker) applyLocked(ctx context.Context, newDocId uuid.UUID, verdict *Verdict, rootId uuid.UUID) (*LinkOutcome, error) {
	if detail, ok := l.isFrozen(rootId); ok {
		return nil, &GraphInvariantViolation{LineageRootId: rootId, Detail: detail}
	}

	// Full-path walk doubles as the invariant check: cycles, branching,
	// and double heads surface here before any mutation.
	if _, err := l.store.GetLineagePath(ctx, verdict.MatchedCandidateId); err != nil {
		return nil, l.interceptViolation(ctx, err)
	}

	matched, err := l.store.GetNode(ctx, verdict.MatchedCandidateId)
	if err != nil {
		return nil, err
	}
	if matched == nil || matched.Status == entity.VersionStatusArchived {
		return nil, &StaleLinkTargetError{TargetId: verdict.MatchedCandidateId}
	}
	if matched.Id == newDocId {
		return nil, &GraphInvariantViolation{LineageRootId: rootId, Detail: "document cannot supersede itself"}
	}

	var outcome *LinkOutcome
	if verdict.NewIsNewer {
		// The verdict was formed against the head; a target that lost
		// head status in the meantime means another upload won.
		if !matched.IsLatest {
			return nil, &StaleLinkTargetError{TargetId: matched.Id}
		}
		label := verdict.DetectedVersionLabel
		if label == "" {
			label = IncrementLabel(matched.VersionLabel)
		}
		if err := l.store.LinkAsNewer(ctx, newDocId, matched.Id, label); err != nil {
			return nil, l.interceptViolation(ctx, err)
		}
		outcome = &LinkOutcome{Linked: true, NewIsNewer: true, OldId: matched.Id, NewId: newDocId, NewLabel: label}
	} else {
		label := verdict.DetectedVersionLabel
		if label == "" {
			label = DecrementLabel(matched.VersionLabel)
		}
		if err := l.store.LinkAsOlder(ctx, newDocId, matched.Id, label); err != nil {
			return nil, l.interceptViolation(ctx, err)
		}
		outcome = &LinkOutcome{Linked: true, NewIsNewer: false, OldId: newDocId, NewId: matched.Id, NewLabel: label}
	}

	l.log.Info("versioning", "Version link established", map[string]interface{}{
		"old_id":       outcome.OldId,
		"new_id":       outcome.NewId,
		"new_is_newer": outcome.NewIsNewer,
		"label":        outcome.NewLabel,
		"confidence":   verdict.Confidence,
	})
	if l.sink != nil {
		l.sink.VersionLinked(ctx, outcome.OldId, outcome.NewId, outcome.NewIsNewer)
	}
	return outcome, nil
}

// interceptViolation freezes the lineage and alerts the operator when
// err is a graph invariant violation; other errors pass through.
func (l *Linker) interceptViolation(ctx context.Context, err error) error {
	var violation *GraphInvariantViolation
	if !errors.As(err, &violation) {
		return err
	}

	l.mu.Lock()
	_, already := l.frozen[violation.LineageRootId]
	l.frozen[violation.LineageRootId] = violation.Detail
	l.mu.Unlock()

	if !already {
		l.log.Error("versioning", "Lineage frozen after invariant violation", map[string]interface{}{
			"lineage_root": violation.LineageRootId,
			"detail":       violation.Detail,
		})
		if l.sink != nil {
			l.sink.InvariantViolated(ctx, violation.LineageRootId, violation.Detail)
		}
	}
	return err
}

func (l *Linker) isFrozen(rootId uuid.UUID) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	detail, ok := l.frozen[rootId]
	return detail, ok
}

// Unfreeze clears a lineage after manual reconciliation.
func (l *Linker) Unfreeze(rootId uuid.UUID) {
	l.mu.Lock()
	delete(l.frozen, rootId)
	l.mu.Unlock()
}

// keyedMutex provides one mutex per lineage, created on demand.
// Entries are not reclaimed; lineage counts stay far below anything
// that would matter.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key uuid.UUID) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
