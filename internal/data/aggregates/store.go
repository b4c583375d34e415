package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
)

// Loaded is a decoded snapshot plus the version it was read at.
type Loaded[T any] struct {
	Value     T
	Version   int
	Found     bool
	UpdatedAt time.Time

	id uuid.UUID
}

// Store persists one evaluator aggregate kind as JSON snapshots.
type Store[T any] struct {
	base   BaseDeps
	repo   repos.SnapshotRepo
	kind   models.SnapshotKind
	status func(T) string
	now    func() time.Time
}

// NewStore builds a store for kind. status extracts the indexed status column.
func NewStore[T any](base BaseDeps, repo repos.SnapshotRepo, kind models.SnapshotKind, status func(T) string) *Store[T] {
	if status == nil {
		status = func(T) string { return "" }
	}
	return &Store[T]{
		base:   base.withDefaults(),
		repo:   repo,
		kind:   kind,
		status: status,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store[T]) Kind() models.SnapshotKind { return s.kind }

func (s *Store[T]) Load(dbc dbctx.Context, rfpID uuid.UUID) (Loaded[T], error) {
	var out Loaded[T]
	row, err := s.repo.Get(dbc, rfpID, s.kind)
	if err != nil {
		return out, err
	}
	if row == nil {
		return out, nil
	}
	if err := json.Unmarshal(row.Payload, &out.Value); err != nil {
		return out, fmt.Errorf("decode %s snapshot %s: %w", s.kind, row.ID, err)
	}
	out.Found = true
	out.Version = row.Version
	out.UpdatedAt = row.UpdatedAt
	out.id = row.ID
	return out, nil
}

// Decode turns an already loaded row into a value.
func (s *Store[T]) Decode(row *models.GateSnapshot) (T, error) {
	var v T
	if row == nil {
		return v, nil
	}
	err := json.Unmarshal(row.Payload, &v)
	return v, err
}

// Get loads outside any transaction.
func (s *Store[T]) Get(ctx context.Context, rfpID uuid.UUID) (Loaded[T], error) {
	out, err := s.Load(dbctx.Context{Ctx: ctx}, rfpID)
	return out, MapError("snapshot.get."+string(s.kind), err)
}

// Mutate loads the current snapshot inside a transaction, applies fn and
// writes the result with a version compare-and-set. fn errors abort the
// transaction and leave the stored snapshot untouched.
func (s *Store[T]) Mutate(ctx context.Context, op string, rfpID uuid.UUID, actorID string, fn func(cur Loaded[T]) (T, error)) (T, error) {
	var out T
	err := ExecuteWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		cur, err := s.Load(dbc, rfpID)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s snapshot: %w", s.kind, err)
		}
		row := &models.GateSnapshot{
			RFPID:     rfpID,
			Kind:      string(s.kind),
			Status:    s.status(next),
			Payload:   datatypes.JSON(payload),
			UpdatedBy: actorID,
			UpdatedAt: s.now(),
		}
		if !cur.Found {
			if err := s.repo.Insert(dbc, row); err != nil {
				return err
			}
		} else {
			row.ID = cur.id
			ok, err := s.repo.UpdateIfVersion(dbc, row, cur.Version)
			if err != nil {
				return err
			}
			if !ok {
				return ConflictError(fmt.Sprintf("%s snapshot for %s changed concurrently", s.kind, rfpID))
			}
		}
		out = next
		return nil
	})
	return out, err
}

// Delete drops the snapshot. Deleting a missing snapshot is not an error.
func (s *Store[T]) Delete(ctx context.Context, op string, rfpID uuid.UUID) error {
	return ExecuteWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		return s.repo.Delete(dbc, rfpID, s.kind)
	})
}
