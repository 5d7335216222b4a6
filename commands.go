package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/excel"
	"github.com/example/vocabquiz/pkg/models"
)

func (a *app) importCmd() *cobra.Command {
	config := excel.DefaultImportConfig()
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import vocabulary items from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			config.FilePath = args[0]
			result, err := excel.NewImporter(a.items, a.categories, a.logger).Import(ctx, config)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&config.SheetName, "sheet", "", "sheet to import (first sheet when empty)")
	cmd.Flags().IntVar(&config.StartRow, "start-row", config.StartRow, "first row to import, 1-based")
	cmd.Flags().StringVar(&config.PromptColumn, "prompt-column", config.PromptColumn, "column with the prompt")
	cmd.Flags().StringVar(&config.TranslationColumn, "translation-column", config.TranslationColumn, "column with the translation")
	cmd.Flags().StringVar(&config.CategoryColumn, "category-column", config.CategoryColumn, "column with the category")
	return cmd
}

func (a *app) enrollCmd() *cobra.Command {
	var (
		learnerFlag string
		itemIDs     []int64
		chatID      int64
		hour        int
	)
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Add items to a learner's review boxes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			learnerID, err := uuid.Parse(learnerFlag)
			if err != nil {
				return fmt.Errorf("invalid learner id: %w", err)
			}
			if chatID != 0 {
				learner := &models.Learner{ID: learnerID, ChatID: chatID, NotificationEnabled: true, NotificationHour: hour}
				if err := a.learners.Upsert(ctx, learner); err != nil {
					return err
				}
			}

			cards := make([]models.LearnerCard, 0, len(itemIDs))
			for _, id := range itemIDs {
				item, err := a.items.ByID(ctx, id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d does not exist", id)
				}
				card, err := a.cards.Enroll(ctx, learnerID, id)
				if err != nil {
					return err
				}
				cards = append(cards, *card)
			}
			return writeJSON(cmd.OutOrStdout(), cards)
		},
	}
	cmd.Flags().StringVar(&learnerFlag, "learner", "", "learner id")
	cmd.Flags().Int64SliceVar(&itemIDs, "item", nil, "item ids to enroll")
	cmd.Flags().Int64Var(&chatID, "chat-id", 0, "telegram chat for reminders")
	cmd.Flags().IntVar(&hour, "hour", 9, "reminder hour (0-23)")
	_ = cmd.MarkFlagRequired("learner")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func (a *app) quizCmd() *cobra.Command {
	var (
		learnerFlag string
		count       int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Print a quiz over the learner's cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			learnerID, err := uuid.Parse(learnerFlag)
			if err != nil {
				return fmt.Errorf("invalid learner id: %w", err)
			}
			if !cmd.Flags().Changed("count") {
				count = a.cfg.QuizDefaultCount
			}
			questions, err := a.service.QuizQuestions(ctx, newRand(seed), learnerID, count)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), questions)
		},
	}
	cmd.Flags().StringVar(&learnerFlag, "learner", "", "learner id")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions (QUIZ_DEFAULT_COUNT when unset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, time based when 0")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

// gameBatch is the practice output; pass GameID back to continue the game
type gameBatch struct {
	GameID    string            `json:"game_id"`
	Questions []models.Question `json:"questions"`
}

func (a *app) practiceCmd() *cobra.Command {
	var (
		learnerFlag string
		gameID      string
		count       int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Print the next questions of an open pool game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			learnerID, err := uuid.Parse(learnerFlag)
			if err != nil {
				return fmt.Errorf("invalid learner id: %w", err)
			}
			if !cmd.Flags().Changed("count") {
				count = a.cfg.GameDefaultCount
			}
			if gameID == "" {
				gameID = shortuuid.New()
			}
			questions, err := a.service.GameQuestions(ctx, newRand(seed), learnerID, gameID, count)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), gameBatch{GameID: gameID, Questions: questions})
		},
	}
	cmd.Flags().StringVar(&learnerFlag, "learner", "", "learner id")
	cmd.Flags().StringVar(&gameID, "game", "", "game to continue, a new game when empty")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions (GAME_DEFAULT_COUNT when unset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, time based when 0")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

func (a *app) reviewCmd() *cobra.Command {
	var (
		learnerFlag string
		itemID      int64
		correct     bool
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Record the outcome of answering an item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			learnerID, err := uuid.Parse(learnerFlag)
			if err != nil {
				return fmt.Errorf("invalid learner id: %w", err)
			}
			card, err := a.service.RecordAnswer(ctx, learnerID, itemID, correct, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), card)
		},
	}
	cmd.Flags().StringVar(&learnerFlag, "learner", "", "learner id")
	cmd.Flags().Int64Var(&itemID, "item", 0, "item id")
	cmd.Flags().BoolVar(&correct, "correct", false, "the answer was correct")
	_ = cmd.MarkFlagRequired("learner")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func (a *app) dueCmd() *cobra.Command {
	var (
		learnerFlag string
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the learner's cards due today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			learnerID, err := uuid.Parse(learnerFlag)
			if err != nil {
				return fmt.Errorf("invalid learner id: %w", err)
			}
			cards, err := a.service.DueCards(ctx, learnerID, time.Now(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cards)
		},
	}
	cmd.Flags().StringVar(&learnerFlag, "learner", "", "learner id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of cards, 0 for all")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}
