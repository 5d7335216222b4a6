package quiz

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/vocabquiz/pkg/models"
)

const (
	// OptionsPerQuestion is the number of options a full question carries
	OptionsPerQuestion = 4
	// DistractorsPerQuestion is the number of wrong options requested per question
	DistractorsPerQuestion = OptionsPerQuestion - 1

	// categoryBatchFactor sizes the same-category candidate batch per needed distractor
	categoryBatchFactor = 20
)

// Generator builds multiple choice questions from an item pool
type Generator struct {
	pool    ItemPool
	sampler Sampler
	logger  *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithSampler replaces the default anchor sampler
func WithSampler(s Sampler) Option {
	return func(g *Generator) {
		g.sampler = s
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a new question generator
func NewGenerator(pool ItemPool, opts ...Option) *Generator {
	g := &Generator{
		pool:    pool,
		sampler: NewAnchorSampler(pool),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SelectDistractors picks up to k wrong options for correct.
//
// Items of the same category are preferred; the rest come from the sampler.
// A short result means the pool ran out and is not an error.
func (g *Generator) SelectDistractors(ctx context.Context, rnd Rand, correct models.Item, exclude models.IDSet, k int) ([]models.Item, error) {
	local := exclude.Clone()
	local.Add(correct.ID)

	picked := make([]models.Item, 0, k)

	if correct.HasCategory() && k > 0 {
		candidates, err := g.pool.ByCategory(ctx, *correct.CategoryID, local, k*categoryBatchFactor)
		if err != nil {
			return nil, errors.Wrapf(err, "load category %d candidates", *correct.CategoryID)
		}
		rnd.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, c := range candidates {
			if len(picked) >= k {
				break
			}
			if local.Has(c.ID) {
				continue
			}
			picked = append(picked, c)
			local.Add(c.ID)
		}
	}

	for len(picked) < k {
		item, err := g.sampler.PickExcluding(ctx, rnd, local)
		if errors.Is(err, ErrPoolExhausted) {
			break
		}
		if err != nil {
			return nil, err
		}
		picked = append(picked, *item)
		local.Add(item.ID)
	}

	return picked, nil
}

// BuildQuestion builds a question asking for item's translation.
//
// Options never repeat a trimmed text, and texts listed in excludeOptionTexts
// are never used for wrong options. The question has fewer than four options
// only when the pool cannot supply more distinct texts.
func (g *Generator) BuildQuestion(ctx context.Context, rnd Rand, item models.Item, excludeOptionTexts map[string]struct{}) (*models.Question, error) {
	correctText := strings.TrimSpace(item.Translation)
	if correctText == "" {
		return nil, errors.Wrapf(ErrEmptyTranslation, "item %d", item.ID)
	}

	distractors, err := g.SelectDistractors(ctx, rnd, item, nil, DistractorsPerQuestion)
	if err != nil {
		return nil, err
	}

	options := make([]models.Option, 0, OptionsPerQuestion)
	options = append(options, models.Option{ItemID: item.ID, Text: correctText})
	seen := map[string]struct{}{correctText: {}}
	tried := models.NewIDSet(item.ID)

	add := func(candidate models.Item) {
		tried.Add(candidate.ID)
		text := strings.TrimSpace(candidate.Translation)
		if text == "" {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		if _, banned := excludeOptionTexts[text]; banned {
			return
		}
		seen[text] = struct{}{}
		options = append(options, models.Option{ItemID: candidate.ID, Text: text})
	}

	for _, d := range distractors {
		add(d)
	}

	// Top up with random items; every tried id is excluded so the loop ends
	for len(options) < OptionsPerQuestion {
		extra, err := g.sampler.PickExcluding(ctx, rnd, tried)
		if errors.Is(err, ErrPoolExhausted) {
			break
		}
		if err != nil {
			return nil, err
		}
		add(*extra)
	}

	if len(options) > OptionsPerQuestion {
		options = options[:OptionsPerQuestion]
	}
	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &models.Question{
		Prompt:        strings.TrimSpace(item.Prompt),
		CorrectItemID: item.ID,
		Options:       options,
	}, nil
}
