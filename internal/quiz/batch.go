package quiz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/vocabquiz/pkg/models"
)

// poolAttemptsPerQuestion bounds the sampling rounds of an open pool batch
const poolAttemptsPerQuestion = 60

// BuildForLearnerCards builds up to count questions, one per distinct item id,
// in random order. Items no longer active are skipped. An item with an empty
// translation fails the whole batch with ErrEmptyTranslation.
func (g *Generator) BuildForLearnerCards(ctx context.Context, rnd Rand, itemIDs []int64, count int) ([]models.Question, error) {
	ids := distinct(itemIDs)
	if count > len(ids) {
		count = len(ids)
	}
	if count <= 0 {
		return []models.Question{}, nil
	}

	rnd.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	questions := make([]models.Question, 0, count)
	for _, id := range ids[:count] {
		item, err := g.pool.ByID(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "load item %d", id)
		}
		if item == nil {
			g.logger.Debug("skipping inactive item", "item_id", id)
			continue
		}

		q, err := g.BuildQuestion(ctx, rnd, *item, nil)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, nil
}

// BuildFromPool builds up to count questions from the whole pool, skipping
// every id in used. Each item that anchored a question, or could not, is
// added to used so that callers can thread the set through later calls.
//
// A short result means the pool is exhausted for now; it is not an error.
func (g *Generator) BuildFromPool(ctx context.Context, rnd Rand, count int, used models.IDSet) ([]models.Question, error) {
	if count <= 0 {
		return []models.Question{}, nil
	}
	if used == nil {
		used = models.IDSet{}
	}

	questions := make([]models.Question, 0, count)
	for attempts := 0; len(questions) < count && attempts < count*poolAttemptsPerQuestion; attempts++ {
		item, err := g.sampler.PickExcluding(ctx, rnd, used)
		if errors.Is(err, ErrPoolExhausted) {
			g.logger.Debug("pool exhausted", "collected", len(questions), "requested", count)
			break
		}
		if err != nil {
			return questions, err
		}

		q, err := g.BuildQuestion(ctx, rnd, *item, nil)
		if errors.Is(err, ErrEmptyTranslation) {
			used.Add(item.ID)
			continue
		}
		if err != nil {
			return questions, err
		}

		used.Add(item.ID)
		questions = append(questions, *q)
	}
	return questions, nil
}

// distinct returns ids without duplicates, keeping first occurrences in order
func distinct(ids []int64) []int64 {
	seen := make(models.IDSet, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}
