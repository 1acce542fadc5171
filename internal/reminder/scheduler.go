package reminder

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"time"

	"vaultbot/internal/clock"
)

// Scheduler 按名称管理每日定时任务
// Scheduler runs named daily jobs at a wall-clock hour and minute. Scheduling
// a name that already exists replaces the previous job.
type Scheduler struct {
	mu     sync.Mutex
	clock  clock.Clock
	logger *slog.Logger
	jobs   map[string]*job
}

type job struct {
	hour   int
	minute int
	loc    *time.Location
	fn     func()
	next   time.Time
	timer  clock.Timer
}

// NewScheduler creates a scheduler driven by c.
func NewScheduler(c clock.Clock, logger *slog.Logger) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{clock: c, logger: logger, jobs: make(map[string]*job)}
}

// NextFire returns the first hour:minute in loc strictly after now.
func NextFire(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Schedule registers fn to run every day at hour:minute in loc and returns
// the first fire time.
func (s *Scheduler) Schedule(name string, hour, minute int, loc *time.Location, fn func()) (time.Time, error) {
	if err := ValidateTime(hour, minute); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(name)
	j := &job{hour: hour, minute: minute, loc: loc, fn: fn}
	s.jobs[name] = j
	s.armLocked(name, j, s.clock.Now())
	s.logger.Info("job scheduled", "job", name, "next", j.next.Format(time.RFC3339))
	return j.next, nil
}

// Cancel removes the job and reports whether one existed.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(name)
}

// Active reports whether a job with this name is scheduled.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Next returns the pending fire time of the job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return j.next, true
}

// Stop cancels every job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.jobs {
		s.cancelLocked(name)
	}
}

func (s *Scheduler) cancelLocked(name string) bool {
	j, ok := s.jobs[name]
	if !ok {
		return false
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	delete(s.jobs, name)
	return true
}

func (s *Scheduler) armLocked(name string, j *job, now time.Time) {
	// A timer may wake marginally early; never compute from before the
	// previous target or the same slot fires twice.
	if now.Before(j.next) {
		now = j.next
	}
	j.next = NextFire(now, j.hour, j.minute, j.loc)
	j.timer = s.clock.AfterFunc(j.next.Sub(s.clock.Now()), func() { s.fire(name, j) })
}

func (s *Scheduler) fire(name string, j *job) {
	s.mu.Lock()
	if s.jobs[name] != j {
		s.mu.Unlock()
		return
	}
	s.armLocked(name, j, s.clock.Now())
	next := j.next
	s.mu.Unlock()

	s.logger.Info("job firing", "job", name, "next", next.Format(time.RFC3339))
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", name, "panic", fmt.Sprint(r))
		}
	}()
	j.fn()
}

// ValidateTime checks a 24-hour clock time.
func ValidateTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	return nil
}

var clockTimeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)

// ParseClock parses "H:MM" or "HH:MM" at the start of s.
func ParseClock(s string) (hour, minute int, ok bool) {
	m := clockTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if ValidateTime(hour, minute) != nil {
		return 0, 0, false
	}
	return hour, minute, true
}
