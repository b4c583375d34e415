// Package models holds the gorm records. Ids are generated in Go and no
// column relies on a database default, so the same schema migrates on
// Postgres and SQLite.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RFP struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string          `gorm:"column:title;not null" json:"title"`
	Client    string          `gorm:"column:client;not null;index" json:"client"`
	Value     decimal.Decimal `gorm:"column:value;type:numeric(18,2);not null" json:"value"`
	Currency  string          `gorm:"column:currency;size:3;not null" json:"currency"`
	Stage     string          `gorm:"column:stage;not null;index" json:"stage"`
	Deadline  *time.Time      `gorm:"column:deadline" json:"deadline,omitempty"`
	CreatedBy string          `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (RFP) TableName() string { return "rfp" }

// SnapshotKind names the evaluator aggregate stored in a GateSnapshot row.
type SnapshotKind string

const (
	KindPrequal     SnapshotKind = "prequal"
	KindVoting      SnapshotKind = "voting"
	KindRisk        SnapshotKind = "risk"
	KindNegotiation SnapshotKind = "negotiation"
	KindWinLoss     SnapshotKind = "winloss"
)

// GateSnapshot stores the latest aggregate of one kind for one RFP as JSON.
// Version increments on every write and guards compare-and-set updates.
type GateSnapshot struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RFPID     uuid.UUID      `gorm:"type:uuid;column:rfp_id;not null;uniqueIndex:idx_gate_snapshot_rfp_kind" json:"rfp_id"`
	Kind      string         `gorm:"column:kind;not null;uniqueIndex:idx_gate_snapshot_rfp_kind" json:"kind"`
	Version   int            `gorm:"column:version;not null" json:"version"`
	Status    string         `gorm:"column:status;index" json:"status"`
	Payload   datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	UpdatedBy string         `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;index" json:"updated_at"`
}

func (GateSnapshot) TableName() string { return "gate_snapshot" }
