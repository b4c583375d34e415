package repos

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

type RFPFilter struct {
	Stage  string
	Client string
	Limit  int
	Offset int
}

type RFPRepo interface {
	Create(dbc dbctx.Context, rfp *models.RFP) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*models.RFP, error)
	List(dbc dbctx.Context, f RFPFilter) ([]*models.RFP, error)
	// UpdateStageIf moves the stage only while it still equals from.
	UpdateStageIf(dbc dbctx.Context, id uuid.UUID, from, to string, at time.Time) (bool, error)
}

type rfpRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRFPRepo(db *gorm.DB, baseLog *logger.Logger) RFPRepo {
	return &rfpRepo{
		db:  db,
		log: baseLog.With("repo", "RFPRepo"),
	}
}

func (r *rfpRepo) Create(dbc dbctx.Context, rfp *models.RFP) error {
	if rfp.ID == uuid.Nil {
		rfp.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(rfp).Error
}

func (r *rfpRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*models.RFP, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out models.RFP
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *rfpRepo) List(dbc dbctx.Context, f RFPFilter) ([]*models.RFP, error) {
	q := dbc.DB(r.db).Model(&models.RFP{})
	if s := strings.TrimSpace(f.Stage); s != "" {
		q = q.Where("stage = ?", s)
	}
	if c := strings.TrimSpace(f.Client); c != "" {
		q = q.Where("client = ?", c)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*models.RFP
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rfpRepo) UpdateStageIf(dbc dbctx.Context, id uuid.UUID, from, to string, at time.Time) (bool, error) {
	res := dbc.DB(r.db).Model(&models.RFP{}).
		Where("id = ? AND stage = ?", id, from).
		Updates(map[string]interface{}{
			"stage":      to,
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
