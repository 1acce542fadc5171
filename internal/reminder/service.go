package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"vaultbot/internal/i18n"
	"vaultbot/internal/ticket"
)

// JobName is the scheduler key of the morning digest.
const JobName = "morning_reminder"

const (
	settingEnabled = "reminder.enabled"
	settingTime    = "reminder.time"

	fireTimeout = 2 * time.Minute
)

// ErrNoRecipients is returned when the digest has nobody to go to.
var ErrNoRecipients = errors.New("no reminder recipients configured")

// Sender delivers one message to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TicketSource is the slice of the vault the digest reads.
type TicketSource interface {
	OverdueTickets(ctx context.Context) ([]ticket.Ticket, error)
	TodayTickets(ctx context.Context) ([]ticket.Ticket, error)
	ActiveTickets(ctx context.Context) ([]ticket.Ticket, error)
}

// SettingsStore persists reminder changes made at runtime.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Settings is the reminder configuration currently in effect.
type Settings struct {
	Enabled  bool
	Hour     int
	Minute   int
	Location *time.Location
}

// Options wires a Service.
type Options struct {
	Scheduler  *Scheduler
	Tickets    TicketSource
	Sender     Sender
	Recipients []int64
	I18n       *i18n.I18n
	// Store is optional; without it runtime changes last until restart.
	Store    SettingsStore
	Settings Settings
	Logger   *slog.Logger
}

// Service 早间提醒服务
// Service owns the morning digest job: it restores persisted settings,
// schedules the job and delivers the digest to every recipient.
type Service struct {
	sched      *Scheduler
	tickets    TicketSource
	sender     Sender
	recipients []int64
	tr         *i18n.I18n
	store      SettingsStore
	logger     *slog.Logger

	mu       sync.Mutex
	settings Settings
}

// NewService builds a Service. Nothing is scheduled until Start.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tr := opts.I18n
	if tr == nil {
		tr = i18n.New("en")
	}
	settings := opts.Settings
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = NewScheduler(nil, logger)
	}
	return &Service{
		sched:      sched,
		tickets:    opts.Tickets,
		sender:     opts.Sender,
		recipients: append([]int64(nil), opts.Recipients...),
		tr:         tr,
		store:      opts.Store,
		logger:     logger,
		settings:   settings,
	}
}

// Start restores persisted settings and schedules the digest when enabled.
func (s *Service) Start(ctx context.Context) error {
	s.restore(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settings.Enabled {
		s.logger.Info("reminders disabled")
		return nil
	}
	if len(s.recipients) == 0 {
		s.logger.Warn("no recipients configured, reminders will not be scheduled")
		return nil
	}
	return s.scheduleLocked()
}

// Stop cancels the digest job.
func (s *Service) Stop() {
	s.sched.Cancel(JobName)
}

// Settings returns a copy of the settings in effect.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Active reports whether the digest job is scheduled.
func (s *Service) Active() bool {
	return s.sched.Active(JobName)
}

// Next returns the pending fire time, if scheduled.
func (s *Service) Next() (time.Time, bool) {
	return s.sched.Next(JobName)
}

// SetTime moves the digest to hour:minute and turns it on.
func (s *Service) SetTime(ctx context.Context, hour, minute int) error {
	if err := ValidateTime(hour, minute); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recipients) == 0 {
		return ErrNoRecipients
	}
	s.settings.Hour, s.settings.Minute = hour, minute
	s.settings.Enabled = true
	if err := s.scheduleLocked(); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Enable schedules the digest at the configured time.
func (s *Service) Enable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recipients) == 0 {
		return ErrNoRecipients
	}
	s.settings.Enabled = true
	if err := s.scheduleLocked(); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Disable cancels the digest job.
func (s *Service) Disable(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = false
	s.sched.Cancel(JobName)
	s.logger.Info("reminders disabled")
	s.persist(ctx)
}

// Digest builds the current digest text.
func (s *Service) Digest(ctx context.Context) (string, error) {
	overdue, err := s.tickets.OverdueTickets(ctx)
	if err != nil {
		return "", fmt.Errorf("overdue tickets: %w", err)
	}
	today, err := s.tickets.TodayTickets(ctx)
	if err != nil {
		return "", fmt.Errorf("today tickets: %w", err)
	}
	active, err := s.tickets.ActiveTickets(ctx)
	if err != nil {
		return "", fmt.Errorf("active tickets: %w", err)
	}
	return BuildDigest(s.tr, overdue, today, active), nil
}

// Fire builds the digest once and sends it to every recipient. A failed
// delivery is logged and the remaining recipients are still tried. It
// returns the number of successful deliveries.
func (s *Service) Fire(ctx context.Context) (int, error) {
	text, err := s.Digest(ctx)
	if err != nil {
		s.logger.Error("build digest", "err", err)
		return 0, err
	}
	sent := 0
	for _, id := range s.recipients {
		if err := s.sender.Send(ctx, id, text); err != nil {
			s.logger.Error("send reminder failed", "user_id", id, "err", err)
			continue
		}
		sent++
		s.logger.Info("reminder sent", "user_id", id)
	}
	return sent, nil
}

func (s *Service) scheduleLocked() error {
	next, err := s.sched.Schedule(JobName, s.settings.Hour, s.settings.Minute, s.settings.Location, func() {
		ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
		defer cancel()
		_, _ = s.Fire(ctx)
	})
	if err != nil {
		return err
	}
	s.logger.Info("morning reminder scheduled",
		"time", fmt.Sprintf("%02d:%02d", s.settings.Hour, s.settings.Minute),
		"tz", s.settings.Location.String(),
		"next", next.Format(time.RFC3339))
	return nil
}

func (s *Service) restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok, err := s.store.GetSetting(ctx, settingEnabled); err != nil {
		s.logger.Warn("load reminder setting", "key", settingEnabled, "err", err)
	} else if ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			s.settings.Enabled = b
		}
	}
	if v, ok, err := s.store.GetSetting(ctx, settingTime); err != nil {
		s.logger.Warn("load reminder setting", "key", settingTime, "err", err)
	} else if ok {
		if h, m, valid := ParseClock(v); valid {
			s.settings.Hour, s.settings.Minute = h, m
		} else {
			s.logger.Warn("ignoring stored reminder time", "value", v)
		}
	}
}

func (s *Service) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SetSetting(ctx, settingEnabled, strconv.FormatBool(s.settings.Enabled)); err != nil {
		s.logger.Warn("save reminder setting", "key", settingEnabled, "err", err)
	}
	if err := s.store.SetSetting(ctx, settingTime, fmt.Sprintf("%02d:%02d", s.settings.Hour, s.settings.Minute)); err != nil {
		s.logger.Warn("save reminder setting", "key", settingTime, "err", err)
	}
}
