package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

type SnapshotRepo interface {
	Get(dbc dbctx.Context, rfpID uuid.UUID, kind models.SnapshotKind) (*models.GateSnapshot, error)
	ListByRFP(dbc dbctx.Context, rfpID uuid.UUID) ([]*models.GateSnapshot, error)
	ListByStatus(dbc dbctx.Context, kind models.SnapshotKind, status string, limit int) ([]*models.GateSnapshot, error)
	Insert(dbc dbctx.Context, s *models.GateSnapshot) error
	// UpdateIfVersion writes s only while the stored version is still
	// expected, and bumps the version on success.
	UpdateIfVersion(dbc dbctx.Context, s *models.GateSnapshot, expected int) (bool, error)
	Delete(dbc dbctx.Context, rfpID uuid.UUID, kind models.SnapshotKind) error
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{
		db:  db,
		log: baseLog.With("repo", "SnapshotRepo"),
	}
}

func (r *snapshotRepo) Get(dbc dbctx.Context, rfpID uuid.UUID, kind models.SnapshotKind) (*models.GateSnapshot, error) {
	var out models.GateSnapshot
	err := dbc.DB(r.db).
		Where("rfp_id = ? AND kind = ?", rfpID, string(kind)).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *snapshotRepo) ListByRFP(dbc dbctx.Context, rfpID uuid.UUID) ([]*models.GateSnapshot, error) {
	var out []*models.GateSnapshot
	if err := dbc.DB(r.db).Where("rfp_id = ?", rfpID).Order("kind ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *snapshotRepo) ListByStatus(dbc dbctx.Context, kind models.SnapshotKind, status string, limit int) ([]*models.GateSnapshot, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*models.GateSnapshot
	err := dbc.DB(r.db).
		Where("kind = ? AND status = ?", string(kind), status).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *snapshotRepo) Insert(dbc dbctx.Context, s *models.GateSnapshot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return dbc.DB(r.db).Create(s).Error
}

func (r *snapshotRepo) UpdateIfVersion(dbc dbctx.Context, s *models.GateSnapshot, expected int) (bool, error) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	res := dbc.DB(r.db).Model(&models.GateSnapshot{}).
		Where("id = ? AND version = ?", s.ID, expected).
		Updates(map[string]interface{}{
			"version":    expected + 1,
			"status":     s.Status,
			"payload":    s.Payload,
			"updated_by": s.UpdatedBy,
			"updated_at": s.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.Version = expected + 1
	return true, nil
}

func (r *snapshotRepo) Delete(dbc dbctx.Context, rfpID uuid.UUID, kind models.SnapshotKind) error {
	return dbc.DB(r.db).
		Where("rfp_id = ? AND kind = ?", rfpID, string(kind)).
		Delete(&models.GateSnapshot{}).Error
}
