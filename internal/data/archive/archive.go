// Package archive keeps finished pre-qualification sessions after the live
// snapshot has moved on, so a screening can be audited or re-scored later.
package archive

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
)

type Record struct {
	ID         string              `bson:"_id" json:"id"`
	RFPID      string              `bson:"rfp_id" json:"rfp_id"`
	Criteria   []prequal.Criterion `bson:"criteria" json:"criteria"`
	Responses  []prequal.Response  `bson:"responses" json:"responses"`
	Skipped    []string            `bson:"skipped,omitempty" json:"skipped,omitempty"`
	Result     prequal.Result      `bson:"result" json:"result"`
	StartedBy  string              `bson:"started_by" json:"started_by"`
	StartedAt  time.Time           `bson:"started_at" json:"started_at"`
	ArchivedAt time.Time           `bson:"archived_at" json:"archived_at"`
}

type Archive interface {
	Save(ctx context.Context, rec Record) error
	// ListByRFP returns the newest records first.
	ListByRFP(ctx context.Context, rfpID string, limit int) ([]Record, error)
}

type memoryArchive struct {
	mu   sync.Mutex
	recs map[string][]Record
}

func NewMemory() Archive {
	return &memoryArchive{recs: map[string][]Record{}}
}

func (a *memoryArchive) Save(_ context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs[rec.RFPID] = append(a.recs[rec.RFPID], rec)
	return nil
}

func (a *memoryArchive) ListByRFP(_ context.Context, rfpID string, limit int) ([]Record, error) {
	a.mu.Lock()
	out := append([]Record(nil), a.recs[rfpID]...)
	a.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ArchivedAt.After(out[j].ArchivedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
