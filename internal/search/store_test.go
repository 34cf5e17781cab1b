package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/notice"
)

type slipQuery struct {
	Period string
}

type slip struct {
	No     string
	Amount int64
}

type recordingSink struct {
	mu      sync.Mutex
	notices []string
	levels  []notice.Level
}

func (r *recordingSink) Notify(level notice.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.notices = append(r.notices, msg)
}

func (r *recordingSink) last() (notice.Level, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice.LevelInfo, ""
	}
	return r.levels[len(r.levels)-1], r.notices[len(r.notices)-1]
}

func TestSearchStoresRowsAndRequest(t *testing.T) {
	sink := &recordingSink{}
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return []slip{{No: "S-1", Amount: 100}}, nil
	}, WithNotifier(sink))

	require.True(t, s.Search(context.Background(), slipQuery{Period: "2026-09"}))
	snap := s.Snapshot()
	assert.Equal(t, []slip{{No: "S-1", Amount: 100}}, snap.Rows)
	assert.False(t, snap.Loading)
	assert.True(t, snap.HasLastRequest)
	assert.Equal(t, "2026-09", snap.LastRequest.Period)
	assert.Empty(t, sink.notices, "no count notice unless configured")
}

func TestSearchSuccessCount(t *testing.T) {
	sink := &recordingSink{}
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return []slip{{No: "a"}, {No: "b"}}, nil
	}, WithNotifier(sink), WithSuccessCount("slips"))

	s.Search(context.Background(), slipQuery{})
	level, msg := sink.last()
	assert.Equal(t, notice.LevelSuccess, level)
	assert.Equal(t, "2 slips loaded", msg)
}

func TestSearchFailureClearsRows(t *testing.T) {
	sink := &recordingSink{}
	fail := false
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		if fail {
			return nil, &erpapi.APIError{Path: "/api/fcm/slips", Unsuccessful: true, Message: "period closed"}
		}
		return []slip{{No: "S-1"}}, nil
	}, WithNotifier(sink))

	require.True(t, s.Search(context.Background(), slipQuery{Period: "a"}))
	fail = true
	assert.False(t, s.Search(context.Background(), slipQuery{Period: "b"}))

	snap := s.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.False(t, snap.Loading)
	assert.Equal(t, "a", snap.LastRequest.Period, "failed request is not remembered")
	level, msg := sink.last()
	assert.Equal(t, notice.LevelError, level)
	assert.Equal(t, "period closed", msg)
}

func TestSearchFailureGenericMessage(t *testing.T) {
	sink := &recordingSink{}
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return nil, errors.New("dial tcp: connection refused")
	}, WithNotifier(sink))

	s.Search(context.Background(), slipQuery{})
	_, msg := sink.last()
	assert.Equal(t, MsgSearchFailed, msg)
}

func TestSearchValidationSkipsCall(t *testing.T) {
	sink := &recordingSink{}
	calls := 0
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		calls++
		return nil, nil
	}, WithNotifier(sink), WithValidate(func(q slipQuery) error {
		if q.Period == "" {
			return errors.New("period is required")
		}
		return nil
	}))

	assert.False(t, s.Search(context.Background(), slipQuery{}))
	assert.Equal(t, 0, calls)
	assert.False(t, s.Loading())
	level, msg := sink.last()
	assert.Equal(t, notice.LevelWarning, level)
	assert.Equal(t, "period is required", msg)

	assert.True(t, s.Search(context.Background(), slipQuery{Period: "2026-09"}))
	assert.Equal(t, 1, calls)
}

func TestValidatorTypeMismatchPanics(t *testing.T) {
	fetch := func(ctx context.Context, q slipQuery) ([]slip, error) { return nil, nil }
	assert.Panics(t, func() {
		New(fetch, WithValidate(func(s string) error { return nil }))
	})
}

func TestSearchReentrancyGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	var issued []string
	var loadingSeen []bool

	var s *Store[slipQuery, slip]
	s = New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		mu.Lock()
		issued = append(issued, q.Period)
		mu.Unlock()
		close(started)
		<-release
		return []slip{{No: q.Period}}, nil
	}, WithOnChange(func() {
		mu.Lock()
		loadingSeen = append(loadingSeen, s.Loading())
		mu.Unlock()
	}))

	done := make(chan bool)
	go func() { done <- s.Search(context.Background(), slipQuery{Period: "A"}) }()
	<-started

	assert.False(t, s.Search(context.Background(), slipQuery{Period: "B"}))
	close(release)
	assert.True(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A"}, issued)
	assert.Equal(t, []bool{true, false}, loadingSeen)
	assert.Equal(t, []slip{{No: "A"}}, s.Rows())
}

func TestRefresh(t *testing.T) {
	sink := &recordingSink{}
	var got []string
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		got = append(got, q.Period)
		return nil, nil
	}, WithNotifier(sink))

	assert.False(t, s.Refresh(context.Background()))
	level, msg := sink.last()
	assert.Equal(t, notice.LevelWarning, level)
	assert.Equal(t, MsgNoCriteria, msg)
	assert.Empty(t, got)

	s.Search(context.Background(), slipQuery{Period: "2026-08"})
	assert.True(t, s.Refresh(context.Background()))
	assert.Equal(t, []string{"2026-08", "2026-08"}, got)
	assert.NotNil(t, s.Rows(), "nil rows from the backend become an empty list")
}

func TestEmptyResultIsEmptyNotNil(t *testing.T) {
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return []slip{}, nil
	})
	assert.Nil(t, s.Rows(), "no search yet")

	require.True(t, s.Search(context.Background(), slipQuery{Period: "2026-08"}))
	rows := s.Rows()
	require.NotNil(t, rows)
	assert.Empty(t, rows)
	snap := s.Snapshot()
	require.NotNil(t, snap.Rows)
	assert.Empty(t, snap.Rows)
}

func TestRowsReturnsCopy(t *testing.T) {
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return []slip{{No: "a"}}, nil
	})
	s.Search(context.Background(), slipQuery{Period: "p"})

	rows := s.Rows()
	rows[0].No = "changed"
	assert.Equal(t, "a", s.Rows()[0].No)
	assert.Equal(t, "a", s.Snapshot().Rows[0].No)
}

func TestResetClearsEverything(t *testing.T) {
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return []slip{{No: "x"}}, nil
	})
	s.Search(context.Background(), slipQuery{Period: "p"})
	s.SetGrid("grid-handle")
	require.Equal(t, "grid-handle", s.Grid())

	s.Reset()
	snap := s.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.False(t, snap.Loading)
	assert.False(t, snap.HasLastRequest)
	assert.Nil(t, s.Grid())
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	sink := &recordingSink{}
	started := make(chan struct{})
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		close(started)
		<-ctx.Done()
		return []slip{{No: "late"}}, ctx.Err()
	}, WithNotifier(sink))

	done := make(chan bool)
	go func() { done <- s.Search(context.Background(), slipQuery{Period: "p"}) }()
	<-started
	s.Reset()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("search did not return after reset")
	}
	assert.Empty(t, s.Rows())
	assert.False(t, s.Loading())
	assert.Empty(t, sink.notices)
}

func TestCancelledContextRaisesNoNotice(t *testing.T) {
	sink := &recordingSink{}
	s := New(func(ctx context.Context, q slipQuery) ([]slip, error) {
		return nil, ctx.Err()
	}, WithNotifier(sink))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.Search(ctx, slipQuery{}))
	assert.Empty(t, sink.notices)
	assert.False(t, s.Loading())
}
