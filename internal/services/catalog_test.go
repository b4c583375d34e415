package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

const twoCriteria = `criteria:
  - id: fit
    category: strategic
    question: Strategic fit?
    weight: 60
    options:
      - {value: yes, label: Yes, score: 100}
      - {value: no, label: No, score: 0, disqualifies: true}
  - id: cash
    category: financial
    question: Funded?
    weight: 40
    options:
      - {value: yes, label: Yes, score: 100}
      - {value: no, label: No, score: 0}
`

const oneCriterion = `criteria:
  - id: only
    category: technical
    question: Can we build it?
    weight: 10
    options:
      - {value: yes, label: Yes, score: 100}
`

func TestCatalogStore_DefaultsWithoutPaths(t *testing.T) {
	c, err := NewCatalogStore("", "", logger.Nop())
	require.NoError(t, err)
	assert.Len(t, c.Criteria(), 7)
	assert.Len(t, c.NegotiationItems(), 8)
	require.NoError(t, c.Watch(context.Background()))

	cs := c.Criteria()
	cs[0].Weight = 0
	assert.NotZero(t, c.Criteria()[0].Weight)
}

func TestCatalogStore_InvalidFileFailsConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte("criteria: []\n"), 0o644))
	_, err := NewCatalogStore(path, "", logger.Nop())
	assert.Error(t, err)
}

func TestCatalogStore_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoCriteria), 0o644))

	c, err := NewCatalogStore(path, "", logger.Nop())
	require.NoError(t, err)
	require.Len(t, c.Criteria(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("criteria: [broken"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, c.Criteria(), 2)

	require.NoError(t, os.WriteFile(path, []byte(oneCriterion), 0o644))
	require.Eventually(t, func() bool {
		cs := c.Criteria()
		return len(cs) == 1 && cs[0].ID == "only"
	}, 5*time.Second, 20*time.Millisecond)
}
