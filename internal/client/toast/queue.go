package toast

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind selects how a toast is presented.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

const (
	MountDelay   = 100 * time.Millisecond
	RemovalDelay = 300 * time.Millisecond

	DefaultMaxVisible = 5
)

// DefaultDuration returns how long a toast of kind k stays up.
func DefaultDuration(k Kind) time.Duration {
	switch k {
	case KindError:
		return 8 * time.Second
	case KindWarning:
		return 6 * time.Second
	}
	return 5 * time.Second
}

// Toast is one notification. Duration 0 means it stays until closed.
type Toast struct {
	ID        string
	Kind      Kind
	Title     string
	Message   string
	Duration  time.Duration
	Visible   bool
	Removing  bool
	CreatedAt time.Time
}

type item struct {
	Toast
	timers []Timer
}

func (it *item) stop() {
	for _, t := range it.timers {
		t.Stop()
	}
	it.timers = nil
}

// Options configures a Queue.
type Options struct {
	// MaxVisible bounds the queue; the oldest toast is dropped to make
	// room. 0 means unbounded.
	MaxVisible int
	Scheduler  Scheduler
}

// Queue holds the toasts in insertion order.
type Queue struct {
	sched Scheduler
	max   int

	mu       sync.Mutex
	items    []*item
	onChange func([]Toast)
}

func New(opts Options) *Queue {
	q := &Queue{sched: opts.Scheduler, max: opts.MaxVisible}
	if q.sched == nil {
		q.sched = RealScheduler()
	}
	if q.max < 0 {
		q.max = 0
	}
	return q
}

// OnChange registers fn to receive the toast list after every change.
func (q *Queue) OnChange(fn func([]Toast)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = fn
}

// Enqueue adds a toast and returns its id.
func (q *Queue) Enqueue(kind Kind, message, title string, duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	it := &item{Toast: Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Duration:  duration,
		CreatedAt: q.sched.Now(),
	}}
	id := it.ID

	q.mu.Lock()
	q.items = append(q.items, it)
	if q.max > 0 {
		for len(q.items) > q.max {
			q.items[0].stop()
			q.items = slices.Delete(q.items, 0, 1)
		}
	}
	it.timers = append(it.timers, q.sched.AfterFunc(MountDelay, func() { q.mount(id) }))
	if duration > 0 {
		it.timers = append(it.timers, q.sched.AfterFunc(duration, func() { q.Close(id) }))
	}
	q.unlockAndNotify()
	return id
}

func (q *Queue) Success(message, title string) string {
	return q.Enqueue(KindSuccess, message, title, DefaultDuration(KindSuccess))
}

func (q *Queue) Error(message, title string) string {
	return q.Enqueue(KindError, message, title, DefaultDuration(KindError))
}

func (q *Queue) Info(message, title string) string {
	return q.Enqueue(KindInfo, message, title, DefaultDuration(KindInfo))
}

func (q *Queue) Warning(message, title string) string {
	return q.Enqueue(KindWarning, message, title, DefaultDuration(KindWarning))
}

func (q *Queue) mount(id string) {
	q.mu.Lock()
	it := q.find(id)
	if it == nil || it.Removing || it.Visible {
		q.mu.Unlock()
		return
	}
	it.Visible = true
	q.unlockAndNotify()
}

// Close starts the removal of a toast: it is marked removing at once and
// dropped after RemovalDelay. Closing an unknown or already closing toast
// does nothing.
func (q *Queue) Close(id string) {
	q.mu.Lock()
	it := q.find(id)
	if it == nil || it.Removing {
		q.mu.Unlock()
		return
	}
	it.stop()
	it.Removing = true
	it.timers = append(it.timers, q.sched.AfterFunc(RemovalDelay, func() { q.Dismiss(id) }))
	q.unlockAndNotify()
}

// Dismiss removes a toast immediately.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	for i, it := range q.items {
		if it.ID == id {
			it.stop()
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.unlockAndNotify()
			return
		}
	}
	q.mu.Unlock()
}

// Clear removes every toast.
func (q *Queue) Clear() {
	q.mu.Lock()
	for _, it := range q.items {
		it.stop()
	}
	q.items = nil
	q.unlockAndNotify()
}

// List returns the toasts oldest first.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.listLocked()
}

// Len returns the number of queued toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) find(id string) *item {
	for _, it := range q.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (q *Queue) listLocked() []Toast {
	out := make([]Toast, len(q.items))
	for i, it := range q.items {
		out[i] = it.Toast
	}
	return out
}

func (q *Queue) unlockAndNotify() {
	fn := q.onChange
	var list []Toast
	if fn != nil {
		list = q.listLocked()
	}
	q.mu.Unlock()
	if fn != nil {
		fn(list)
	}
}
