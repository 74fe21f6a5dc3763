package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestPostRunsInOrder(t *testing.T) {
	is := is.New(t)
	l := NewLoop()
	defer l.Stop()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done) })
	<-done

	is.Equal(len(got), 10)
	for i, v := range got {
		is.Equal(v, i)
	}
}

func TestAfterFires(t *testing.T) {
	is := is.New(t)
	l := NewLoop()
	defer l.Stop()

	fired := make(chan struct{})
	l.After(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		is.Fail() // delayed task never ran
	}
}

func TestCancelPreventsRun(t *testing.T) {
	is := is.New(t)
	l := NewLoop()
	defer l.Stop()

	var ran atomic.Bool
	task := l.After(20*time.Millisecond, func() { ran.Store(true) })
	task.Cancel()

	time.Sleep(60 * time.Millisecond)
	is.True(!ran.Load())

	// Cancelling twice is fine.
	task.Cancel()
}

func TestCancelFromLoop(t *testing.T) {
	is := is.New(t)
	l := NewLoop()
	defer l.Stop()

	var ran atomic.Bool
	task := l.After(20*time.Millisecond, func() { ran.Store(true) })

	done := make(chan struct{})
	l.Post(func() {
		task.Cancel()
		close(done)
	})
	<-done

	time.Sleep(60 * time.Millisecond)
	is.True(!ran.Load())
}

func TestSerializedAccess(t *testing.T) {
	is := is.New(t)
	l := NewLoop()
	defer l.Stop()

	// A plain int mutated from many posts; the race detector flags this if
	// tasks ever run concurrently.
	counter := 0
	done := make(chan struct{})
	const n = 100
	for i := 0; i < n; i++ {
		go l.Post(func() { counter++ })
	}

	deadline := time.After(2 * time.Second)
	for {
		check := make(chan int, 1)
		l.Post(func() { check <- counter })
		select {
		case v := <-check:
			if v == n {
				close(done)
			}
		case <-deadline:
			t.Fatal("posts never drained")
		}
		select {
		case <-done:
			is.Equal(counter, n)
			return
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestStopDropsLatePosts(t *testing.T) {
	l := NewLoop()
	l.Stop()
	l.Wait()

	// Must not panic or block.
	l.Post(func() { t.Fatal("post after stop ran") })
	l.Stop()
	time.Sleep(20 * time.Millisecond)
}
