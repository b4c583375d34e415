package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/data/repos/testutil"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
)

func seedRFP(t *testing.T, repo RFPRepo, dbc dbctx.Context, client, stage string, at time.Time) *models.RFP {
	t.Helper()
	rfp := &models.RFP{
		Title:     "Managed services " + client,
		Client:    client,
		Value:     decimal.RequireFromString("250000.00"),
		Currency:  "USD",
		Stage:     stage,
		CreatedBy: "bm-1",
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, repo.Create(dbc, rfp))
	require.NotEqual(t, uuid.Nil, rfp.ID)
	return rfp
}

func runRFPRepo(t *testing.T, db *gorm.DB, dbc dbctx.Context) {
	repo := NewRFPRepo(db, testutil.Logger(t))
	now := time.Now().UTC().Truncate(time.Second)

	client := "acme-" + uuid.NewString()
	a := seedRFP(t, repo, dbc, client, "intake", now.Add(-time.Hour))
	b := seedRFP(t, repo, dbc, client, "go_no_go", now)

	got, err := repo.GetByID(dbc, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, client, got.Client)
	assert.True(t, got.Value.Equal(decimal.NewFromInt(250000)))

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.List(dbc, RFPFilter{Stage: "intake", Client: client})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	all, err := repo.List(dbc, RFPFilter{Client: client})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")

	ok, err := repo.UpdateStageIf(dbc, a.ID, "intake", "go_no_go", now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateStageIf(dbc, a.ID, "intake", "abandoned", now)
	require.NoError(t, err)
	assert.False(t, ok, "stale from-stage must not apply")
}

func runSnapshotRepo(t *testing.T, db *gorm.DB, dbc dbctx.Context) {
	repo := NewSnapshotRepo(db, testutil.Logger(t))
	rfpID := uuid.New()

	none, err := repo.Get(dbc, rfpID, models.KindRisk)
	require.NoError(t, err)
	assert.Nil(t, none)

	s := &models.GateSnapshot{RFPID: rfpID, Kind: string(models.KindRisk), Status: "low", Payload: datatypes.JSON(`{"risks":[]}`), UpdatedBy: "u1"}
	require.NoError(t, repo.Insert(dbc, s))
	assert.Equal(t, 1, s.Version)

	dup := &models.GateSnapshot{RFPID: rfpID, Kind: string(models.KindRisk), Payload: datatypes.JSON(`{}`)}
	base := dbc.Tx
	if base == nil {
		base = db
	}
	// savepoint so a Postgres transaction survives the violation
	err = base.Transaction(func(tx *gorm.DB) error { return repo.Insert(dbc.WithTx(tx), dup) })
	assert.Error(t, err, "one snapshot per rfp and kind")

	s.Status = "critical"
	s.Payload = datatypes.JSON(`{"risks":[{"id":"r1"}]}`)
	ok, err := repo.UpdateIfVersion(dbc, s, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Version)

	ok, err = repo.UpdateIfVersion(dbc, s, 1)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not apply")

	got, err := repo.Get(dbc, rfpID, models.KindRisk)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "critical", got.Status)
	assert.JSONEq(t, `{"risks":[{"id":"r1"}]}`, string(got.Payload))

	crit, err := repo.ListByStatus(dbc, models.KindRisk, "critical", 0)
	require.NoError(t, err)
	require.NotEmpty(t, crit)
	assert.Equal(t, rfpID, crit[0].RFPID)

	all, err := repo.ListByRFP(dbc, rfpID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(dbc, rfpID, models.KindRisk))
	gone, err := repo.Get(dbc, rfpID, models.KindRisk)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRFPRepo_SQLite(t *testing.T) {
	db := testutil.DB(t)
	runRFPRepo(t, db, dbctx.Context{Ctx: context.Background()})
}

func TestSnapshotRepo_SQLite(t *testing.T) {
	db := testutil.DB(t)
	runSnapshotRepo(t, db, dbctx.Context{Ctx: context.Background()})
}

func TestRFPRepo_Postgres(t *testing.T) {
	db := testutil.PostgresDB(t)
	tx := testutil.Tx(t, db)
	runRFPRepo(t, db, dbctx.Context{Ctx: context.Background(), Tx: tx})
}

func TestSnapshotRepo_Postgres(t *testing.T) {
	db := testutil.PostgresDB(t)
	tx := testutil.Tx(t, db)
	runSnapshotRepo(t, db, dbctx.Context{Ctx: context.Background(), Tx: tx})
}
