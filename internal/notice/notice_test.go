package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2, time.Minute)
	q.Notify(LevelInfo, "one")
	q.Notify(LevelWarning, "two")
	q.Notify(LevelError, "three")

	got := q.Active()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
	assert.Equal(t, LevelError, got[1].Level)
}

func TestQueue_ExpiresNotices(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQueue(5, time.Second)
	q.now = func() time.Time { return now }

	q.Notify(LevelInfo, "hello")
	require.Len(t, q.Active(), 1)

	now = now.Add(2 * time.Second)
	assert.Empty(t, q.Active())
}

func TestQueue_IgnoresEmptyAndDismisses(t *testing.T) {
	q := NewQueue(0, 0)
	q.Notify(LevelInfo, "")
	assert.Empty(t, q.Active())

	q.Notify(LevelSuccess, "saved")
	id := q.Active()[0].ID
	q.Dismiss(id)
	assert.Empty(t, q.Active())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
}
