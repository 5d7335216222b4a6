package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/vocabquiz/pkg/models"
)

// Константы для настроек уведомлений по умолчанию
const (
	DefaultNotificationStartHour = 4  // Время начала уведомлений
	DefaultNotificationEndHour   = 18 // Время окончания уведомлений
	DefaultPurgeInterval         = 30 * time.Minute

	// reminderWorkers bounds the learners checked at once
	reminderWorkers = 4
)

// Notifier sends review reminders to a chat
type Notifier interface {
	SendReminders(ctx context.Context, chatID int64, count int) error
}

// LearnerSource lists learners who want a reminder at an hour
type LearnerSource interface {
	GetLearnersForNotification(ctx context.Context, hour int) ([]models.Learner, error)
}

// DueSource lists the cards a learner should review
type DueSource interface {
	DueCards(ctx context.Context, learnerID uuid.UUID, today time.Time, limit int) ([]models.LearnerCard, error)
}

// Purger removes expired game exclusion sets
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Config holds the scheduling settings
type Config struct {
	NotificationStartHour int
	NotificationEndHour   int
	PurgeInterval         time.Duration
}

// DefaultConfig returns the default schedule
func DefaultConfig() Config {
	return Config{
		NotificationStartHour: DefaultNotificationStartHour,
		NotificationEndHour:   DefaultNotificationEndHour,
		PurgeInterval:         DefaultPurgeInterval,
	}
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	config    Config
	notifier  Notifier
	learners  LearnerSource
	due       DueSource
	purger    Purger
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithNotifier enables reminders through n
func WithNotifier(n Notifier, learners LearnerSource, due DueSource) Option {
	return func(s *Scheduler) {
		s.notifier = n
		s.learners = learners
		s.due = due
	}
}

// WithPurger enables the periodic purge of expired exclusion sets
func WithPurger(p Purger) Option {
	return func(s *Scheduler) {
		s.purger = p
	}
}

// WithLogger sets the scheduler logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates a new scheduler instance
func New(config Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    config,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.notifier != nil {
		// Hourly check for learners who need a reminder
		if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
			return err
		}
	}
	if s.purger != nil && s.config.PurgeInterval > 0 {
		if _, err := s.scheduler.Every(s.config.PurgeInterval).Do(s.purgeExpired); err != nil {
			return err
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	if _, err := s.SendDueReminders(context.Background(), s.now()); err != nil {
		s.logger.Error("reminder run failed", "error", err)
	}
}

func (s *Scheduler) purgeExpired() {
	n, err := s.purger.PurgeExpired(context.Background())
	if err != nil {
		s.logger.Error("purge of used items failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("purged expired used items", "count", n)
	}
}

// SendDueReminders reminds every learner whose notification hour is the hour
// of now and who has due cards. Nothing is sent outside the notification window.
// It returns the number of reminders sent.
func (s *Scheduler) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	currentHour := now.Hour()
	if currentHour < s.config.NotificationStartHour || currentHour > s.config.NotificationEndHour {
		s.logger.Debug("outside notification hours, skipping reminders",
			"hour", currentHour,
			"start", s.config.NotificationStartHour,
			"end", s.config.NotificationEndHour)
		return 0, nil
	}

	learners, err := s.learners.GetLearnersForNotification(ctx, currentHour)
	if err != nil {
		return 0, err
	}

	var sent atomic.Int64
	var g errgroup.Group
	g.SetLimit(reminderWorkers)
	for _, learner := range learners {
		g.Go(func() error {
			ok, err := s.remind(ctx, learner, now)
			if err != nil {
				// one unreachable learner does not stop the others
				s.logger.Error("failed to remind learner", "learner_id", learner.ID, "error", err)
				return nil
			}
			if ok {
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(sent.Load()), nil
}

// RunManualCheck forces a reminder check for one learner regardless of the hour
func (s *Scheduler) RunManualCheck(ctx context.Context, learner models.Learner) (bool, error) {
	return s.remind(ctx, learner, s.now())
}

func (s *Scheduler) remind(ctx context.Context, learner models.Learner, now time.Time) (bool, error) {
	due, err := s.due.DueCards(ctx, learner.ID, now, 0)
	if err != nil {
		return false, err
	}
	if len(due) == 0 {
		return false, nil
	}
	if err := s.notifier.SendReminders(ctx, learner.ChatID, len(due)); err != nil {
		return false, err
	}
	s.logger.Info("reminder sent", "learner_id", learner.ID, "due", len(due))
	return true, nil
}
