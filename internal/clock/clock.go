package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock 抽象时间操作，便于测试注入
// Clock abstracts time so schedulers and date logic can be tested deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. The returned Timer can cancel it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop reports whether the call was prevented from firing.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeClock 手动推进的时钟，AfterFunc 回调在 Advance 中同步执行
// FakeClock only moves when Advance or Set is called. AfterFunc callbacks
// run synchronously inside Advance, in deadline order. Callbacks may
// register new timers; they must not call Advance.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	fn       func()
	done     bool
}

// Fake returns a FakeClock starting at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{now: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: f}
	c.waiters = append(c.waiters, t)
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.done {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls inside the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.compactLocked()
			c.mu.Unlock()
			return
		}
		next.done = true
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		fn := next.fn
		c.mu.Unlock()
		fn()
	}
}

// Set jumps to t (forward only) firing due timers on the way.
func (c *FakeClock) Set(t time.Time) {
	d := t.Sub(c.Now())
	if d < 0 {
		return
	}
	c.Advance(d)
}

func (c *FakeClock) nextDueLocked(target time.Time) *fakeTimer {
	var due []*fakeTimer
	for _, w := range c.waiters {
		if !w.done && !w.deadline.After(target) {
			due = append(due, w)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due[0]
}

func (c *FakeClock) compactLocked() {
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.done {
			kept = append(kept, w)
		}
	}
	c.waiters = kept
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
