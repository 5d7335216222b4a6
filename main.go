package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/bot"
	"github.com/example/vocabquiz/internal/config"
	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/practice"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/scheduler"
)

// app holds what every command shares once the root command has run
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	items      *database.ItemRepository
	categories *database.CategoryRepository
	cards      *database.CardRepository
	learners   *database.LearnerRepository
	used       *database.ExclusionRepository
	service    *practice.Service
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(a.logger)

	db, err := database.Connect(cfg.DBType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.db = db
	a.items = database.NewItemRepository(db)
	a.categories = database.NewCategoryRepository(db)
	a.cards = database.NewCardRepository(db)
	a.learners = database.NewLearnerRepository(db)
	a.used = database.NewExclusionRepository(db)

	generator := quiz.NewGenerator(a.items, quiz.WithLogger(a.logger))
	a.service = practice.NewService(generator, a.cards, a.used,
		practice.WithUsedTTL(cfg.GameUsedTTL),
		practice.WithLogger(a.logger))
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:                "vocabquiz",
		Short:              "Spaced repetition vocabulary quizzes",
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}
	root.AddCommand(
		a.serveCmd(),
		a.importCmd(),
		a.enrollCmd(),
		a.quizCmd(),
		a.practiceCmd(),
		a.reviewCmd(),
		a.dueCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run reminders and housekeeping until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []scheduler.Option{
				scheduler.WithPurger(a.used),
				scheduler.WithLogger(a.logger),
			}
			if a.cfg.EnableScheduler {
				notifier, err := bot.NewNotifier(a.cfg.TelegramToken, a.logger)
				if err != nil {
					a.logger.Warn("reminders disabled", "error", err)
				} else {
					opts = append(opts, scheduler.WithNotifier(notifier, a.learners, a.service))
				}
			}

			s := scheduler.New(scheduler.Config{
				NotificationStartHour: a.cfg.NotificationStartHour,
				NotificationEndHour:   a.cfg.NotificationEndHour,
				PurgeInterval:         a.cfg.PurgeInterval,
			}, opts...)
			if err := s.Start(); err != nil {
				return err
			}

			a.logger.Info("vocabquiz started, press Ctrl+C to stop")
			<-ctx.Done()

			a.logger.Info("shutting down")
			s.Stop()
			return nil
		},
	}
}

// newRand returns the randomness for one command run; seed 0 means time based
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext gives a command the root context, cancelled on interrupt
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
