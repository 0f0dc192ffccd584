package crowd

import (
	"github.com/google/btree"
)

// TaskID identifies a scheduled task. The zero value never names a task.
type TaskID uint64

// TaskFunc runs when a task is due. It returns the next resume time and
// true to stay scheduled, or false when the task is finished. A resume
// time at or before now means "next tick".
type TaskFunc func(now float64) (next float64, again bool)

type task struct {
	id       TaskID
	due      float64
	seq      uint64
	fn       TaskFunc
	canceled bool
}

func taskLess(a, b *task) bool {
	if a.due != b.due {
		return a.due < b.due
	}
	return a.seq < b.seq
}

// Scheduler is the central tick driver for cooperative timers: periodic
// avoidance recomputes, collision reaction phases, speed ramps and vector
// transitions. Tasks never block; they run to completion inside Advance.
// It is not safe for concurrent use.
type Scheduler struct {
	now    float64
	nextID TaskID
	seq    uint64
	queue  *btree.BTreeG[*task]
	byID   map[TaskID]*task
}

// NewScheduler creates an empty scheduler at time 0.
func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: btree.NewG[*task](16, taskLess),
		byID:  make(map[TaskID]*task),
	}
}

// Now returns the time of the last Advance.
func (s *Scheduler) Now() float64 { return s.now }

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return len(s.byID) }

// Pending reports whether id is still scheduled.
func (s *Scheduler) Pending(id TaskID) bool {
	_, ok := s.byID[id]
	return ok
}

// Schedule registers fn to first run at time at.
func (s *Scheduler) Schedule(at float64, fn TaskFunc) TaskID {
	s.nextID++
	t := &task{id: s.nextID, fn: fn}
	s.byID[t.id] = t
	s.enqueue(t, at)
	return t.id
}

// After runs fn once, delay seconds from now.
func (s *Scheduler) After(delay float64, fn func(now float64)) TaskID {
	return s.Schedule(s.now+delay, func(now float64) (float64, bool) {
		fn(now)
		return 0, false
	})
}

// Every runs fn now (on the next Advance) and then every period seconds.
func (s *Scheduler) Every(period float64, fn func(now float64)) TaskID {
	return s.Schedule(s.now, func(now float64) (float64, bool) {
		fn(now)
		return now + period, true
	})
}

// EachTick runs fn on every Advance for duration seconds, passing the
// normalized progress in [0, 1]. The last call always receives 1.
func (s *Scheduler) EachTick(duration float64, fn func(progress float64)) TaskID {
	start := s.now
	return s.Schedule(s.now, func(now float64) (float64, bool) {
		if duration <= 0 || now-start >= duration {
			fn(1)
			return 0, false
		}
		fn((now - start) / duration)
		return now, true
	})
}

// Cancel removes a pending task. It returns false if the task already
// finished or was never scheduled.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	t.canceled = true
	s.queue.Delete(t)
	delete(s.byID, id)
	return true
}

// Advance moves the clock to now and runs every task due at or before it,
// in due-time order. Tasks scheduled or rescheduled while advancing run on
// a later call, so a task resuming "next tick" cannot spin.
func (s *Scheduler) Advance(now float64) int {
	if now > s.now {
		s.now = now
	}

	var due []*task
	for {
		t, ok := s.queue.Min()
		if !ok || t.due > s.now {
			break
		}
		s.queue.DeleteMin()
		due = append(due, t)
	}

	ran := 0
	for _, t := range due {
		if t.canceled {
			continue
		}
		next, again := t.fn(s.now)
		ran++
		if t.canceled {
			// Cancelled itself while running.
			continue
		}
		if !again {
			delete(s.byID, t.id)
			continue
		}
		s.enqueue(t, next)
	}
	return ran
}

func (s *Scheduler) enqueue(t *task, at float64) {
	s.seq++
	t.due = at
	t.seq = s.seq
	s.queue.ReplaceOrInsert(t)
}
