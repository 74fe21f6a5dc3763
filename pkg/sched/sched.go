// Package sched provides a single-goroutine event loop with cancellable
// delayed tasks. Playback runs its clock polls, fade steps, and frame ticks
// on one Loop, so the render-facing state they touch never needs a lock:
// whoever is on the loop has exclusive access.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop executes posted functions serially on a dedicated goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	quit    chan struct{}
	stop    sync.Once
	done    chan struct{}
}

// NewLoop creates and starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		select {
		case <-l.wake:
		case <-l.quit:
			return
		}
	}
}

// Post schedules fn to run on the loop goroutine as soon as possible.
// Functions run in the order they were posted. Posts after Stop are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
		return
	default:
	}

	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After schedules fn to run on the loop goroutine after the delay. The
// returned task can be cancelled up until fn starts executing.
func (l *Loop) After(d time.Duration, fn func()) *Task {
	t := &Task{}
	t.timer = time.AfterFunc(d, func() {
		if t.cancelled.Load() {
			return
		}
		l.Post(func() {
			if t.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

// Stop shuts the loop down. Functions already queued may be dropped; the
// loop goroutine exits promptly. Stop is idempotent.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.quit) })
}

// Wait blocks until the loop goroutine has exited. It must not be called
// from the loop itself.
func (l *Loop) Wait() {
	<-l.done
}

// Task is a handle to one delayed function.
type Task struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

// Cancel prevents the task from running if it has not started yet. It is
// safe to call from any goroutine, including the loop, and more than once.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
}
