package toast

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler fires callbacks only when Advance moves its clock past them.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due []*fakeTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			s.now = target
			s.mu.Unlock()
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		next.fired = true
		s.now = next.at
		s.mu.Unlock()
		next.f()
	}
}

func newQueue(max int) (*Queue, *fakeScheduler) {
	s := newFakeScheduler()
	return New(Options{MaxVisible: max, Scheduler: s}), s
}

func TestEnqueue_Lifecycle(t *testing.T) {
	q, s := newQueue(0)

	id := q.Enqueue(KindInfo, "saved", "Done", time.Second)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	list := q.List()
	require.Len(t, list, 1)
	assert.False(t, list[0].Visible, "not mounted yet")
	assert.Equal(t, s.Now(), list[0].CreatedAt)

	s.Advance(MountDelay)
	assert.True(t, q.List()[0].Visible)

	s.Advance(time.Second - MountDelay)
	list = q.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].Removing)

	s.Advance(RemovalDelay - time.Millisecond)
	assert.Equal(t, 1, q.Len())
	s.Advance(time.Millisecond)
	assert.Equal(t, 0, q.Len())
}

func TestEnqueue_ZeroDurationStays(t *testing.T) {
	q, s := newQueue(0)
	q.Enqueue(KindWarning, "offline", "", 0)

	s.Advance(time.Hour)
	list := q.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].Visible)
	assert.False(t, list[0].Removing)
}

func TestConvenienceDurations(t *testing.T) {
	q, _ := newQueue(0)
	q.Success("a", "")
	q.Error("b", "")
	q.Info("c", "")
	q.Warning("d", "Heads up")

	list := q.List()
	require.Len(t, list, 4)
	assert.Equal(t, []Kind{KindSuccess, KindError, KindInfo, KindWarning},
		[]Kind{list[0].Kind, list[1].Kind, list[2].Kind, list[3].Kind})
	assert.Equal(t, 5*time.Second, list[0].Duration)
	assert.Equal(t, 8*time.Second, list[1].Duration)
	assert.Equal(t, 5*time.Second, list[2].Duration)
	assert.Equal(t, 6*time.Second, list[3].Duration)
	assert.Equal(t, "Heads up", list[3].Title)
}

func TestClose_TwoPhase(t *testing.T) {
	q, s := newQueue(0)
	id := q.Enqueue(KindSuccess, "hi", "", 0)

	q.Close(id)
	q.Close(id)
	assert.True(t, q.List()[0].Removing)

	s.Advance(RemovalDelay)
	assert.Zero(t, q.Len())

	q.Close("missing")
}

func TestDismiss_StopsTimers(t *testing.T) {
	q, s := newQueue(0)
	var changes int
	q.OnChange(func([]Toast) { changes++ })

	id := q.Enqueue(KindError, "boom", "", time.Second)
	q.Dismiss(id)
	assert.Zero(t, q.Len())
	assert.Equal(t, 2, changes)

	s.Advance(time.Minute)
	assert.Equal(t, 2, changes, "no callbacks after dismiss")
}

func TestClear(t *testing.T) {
	q, s := newQueue(0)
	q.Success("a", "")
	q.Success("b", "")

	q.Clear()
	assert.Zero(t, q.Len())
	s.Advance(time.Minute)
	assert.Zero(t, q.Len())
}

func TestMaxVisible_EvictsOldest(t *testing.T) {
	q, _ := newQueue(2)
	q.Info("one", "")
	q.Info("two", "")
	q.Info("three", "")

	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Message)
	assert.Equal(t, "three", list[1].Message)

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items[len(q.items):cap(q.items)] {
		assert.Nil(t, it, "evicted toasts are not retained")
	}
}

func TestOnChange_ReceivesSnapshot(t *testing.T) {
	q, s := newQueue(0)
	var last []Toast
	q.OnChange(func(list []Toast) {
		last = list
		// callbacks run outside the lock
		_ = q.Len()
	})

	q.Info("x", "")
	require.Len(t, last, 1)
	assert.False(t, last[0].Visible)

	s.Advance(MountDelay)
	require.Len(t, last, 1)
	assert.True(t, last[0].Visible)
}

func TestDefaultDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, DefaultDuration(KindSuccess))
	assert.Equal(t, 8*time.Second, DefaultDuration(KindError))
	assert.Equal(t, 5*time.Second, DefaultDuration(KindInfo))
	assert.Equal(t, 6*time.Second, DefaultDuration(KindWarning))
}

func TestRealScheduler(t *testing.T) {
	q := New(Options{})
	id := q.Enqueue(KindInfo, "x", "", 0)
	require.Eventually(t, func() bool {
		l := q.List()
		return len(l) == 1 && l[0].ID == id && l[0].Visible
	}, time.Second, 5*time.Millisecond)
}
