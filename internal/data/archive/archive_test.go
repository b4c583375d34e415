package archive

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
)

func exerciseArchive(t *testing.T, a Archive) {
	t.Helper()
	ctx := context.Background()
	rfpID := uuid.NewString()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Save(ctx, Record{
			ID:         uuid.NewString(),
			RFPID:      rfpID,
			Result:     prequal.Result{ScorePercentage: float64(60 + i), Recommendation: prequal.RecommendReview},
			StartedBy:  "analyst",
			ArchivedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	got, err := a.ListByRFP(ctx, rfpID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 62.0, got[0].Result.ScorePercentage)
	assert.Equal(t, 61.0, got[1].Result.ScorePercentage)

	none, err := a.ListByRFP(ctx, uuid.NewString(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryArchive(t *testing.T) {
	exerciseArchive(t, NewMemory())
}

func TestMongoArchive(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	a := NewMongo(client, "bidgate_test", "prequal_archive_"+uuid.NewString()[:8])
	require.NoError(t, EnsureIndexes(ctx, a))
	exerciseArchive(t, a)
}
