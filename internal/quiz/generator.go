package quiz

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-bank/internal/question"
)

// ErrEmptyBank is returned when a test is requested from a bank with no questions.
var ErrEmptyBank = errors.New("no questions found in the bank, add questions first")

// Generator draws randomized tests from a bank. Safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	limit int
	now   func() time.Time
}

// GeneratorOptions tunes a Generator. Zero values pick defaults.
type GeneratorOptions struct {
	MaxQuestions int
	// Rand makes generation reproducible in tests.
	Rand *rand.Rand
}

func NewGenerator(opts GeneratorOptions) *Generator {
	limit := opts.MaxQuestions
	if limit <= 0 {
		limit = DefaultMaxQuestions
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, limit: limit, now: time.Now}
}

// Generate picks up to the configured number of questions in random order and shuffles
// each question's options. The bank slice is not modified.
func (g *Generator) Generate(bank []question.Question) (Test, error) {
	if len(bank) == 0 {
		return Test{}, ErrEmptyBank
	}

	pool := make([]question.Question, len(bank))
	for i, q := range bank {
		pool[i] = q.Clone()
	}

	g.mu.Lock()
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > g.limit {
		pool = pool[:g.limit]
	}
	for _, q := range pool {
		opts := q.Options
		g.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	}
	g.mu.Unlock()

	return Test{
		ID:        uuid.New(),
		CreatedAt: g.now().UTC(),
		Questions: pool,
	}, nil
}

// Limit reports the maximum test size.
func (g *Generator) Limit() int {
	return g.limit
}
