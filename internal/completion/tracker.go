// Package completion tracks which exercises an athlete has completed during
// the current application session.
package completion

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// FullProgress is the progress value of a completed exercise.
const FullProgress = 100

// Key identifies an exercise within a routine.
type Key struct {
	RoutineType  string `json:"routine_type"`
	ExerciseName string `json:"exercise_name"`
}

// Completion is the stored state for one exercise. It is replaced wholesale
// on every completion event.
type Completion struct {
	Key
	CompletedSets int       `json:"completed_sets"`
	Progress      int       `json:"progress"`
	CompletedAt   time.Time `json:"completed_at"`
}

type registration struct {
	fn func()
}

// Tracker holds completion state and notifies subscribers after each change.
// Listeners receive no arguments and should re-query the tracker.
type Tracker struct {
	mu        sync.Mutex
	entries   map[Key]Completion
	listeners []*registration
	now       func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[Key]Completion),
		now:     time.Now,
	}
}

// MarkCompleted overwrites any prior record for the exercise with a
// full-progress record, then notifies subscribers.
func (t *Tracker) MarkCompleted(routineType, exerciseName string, sets int) Completion {
	key := Key{RoutineType: routineType, ExerciseName: exerciseName}

	t.mu.Lock()
	c := Completion{
		Key:           key,
		CompletedSets: sets,
		Progress:      FullProgress,
		CompletedAt:   t.now(),
	}
	t.entries[key] = c
	t.mu.Unlock()

	t.notify()
	return c
}

// Completion returns the stored record for the exercise, if any.
func (t *Tracker) Completion(routineType, exerciseName string) (Completion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.entries[Key{RoutineType: routineType, ExerciseName: exerciseName}]
	return c, ok
}

// IsCompleted reports whether the exercise has a record at full progress.
func (t *Tracker) IsCompleted(routineType, exerciseName string) bool {
	c, ok := t.Completion(routineType, exerciseName)
	return ok && c.Progress == FullProgress
}

// Subscribe registers fn and returns a func that removes this registration.
// The same fn may be registered more than once and is then called once per
// registration.
func (t *Tracker) Subscribe(fn func()) (unsubscribe func()) {
	reg := &registration{fn: fn}

	t.mu.Lock()
	t.listeners = append(t.listeners, reg)
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.listeners = slices.DeleteFunc(t.listeners, func(r *registration) bool {
				return r == reg
			})
		})
	}
}

// ClearAll drops every record and notifies subscribers.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	clear(t.entries)
	t.mu.Unlock()

	t.notify()
}

// Len returns the number of stored records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns all records ordered by routine type, then exercise name.
func (t *Tracker) Snapshot() []Completion {
	t.mu.Lock()
	out := make([]Completion, 0, len(t.entries))
	for _, c := range t.entries {
		out = append(out, c)
	}
	t.mu.Unlock()

	slices.SortFunc(out, func(a, b Completion) int {
		if c := cmp.Compare(a.RoutineType, b.RoutineType); c != 0 {
			return c
		}
		return cmp.Compare(a.ExerciseName, b.ExerciseName)
	})
	return out
}

// Restore loads records without notifying subscribers.
func (t *Tracker) Restore(records []Completion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range records {
		t.entries[c.Key] = c
	}
}

// notify calls listeners in subscription order on the calling goroutine.
// The lock is not held, so listeners may call back into the tracker.
func (t *Tracker) notify() {
	t.mu.Lock()
	regs := slices.Clone(t.listeners)
	t.mu.Unlock()

	for _, r := range regs {
		r.fn()
	}
}
