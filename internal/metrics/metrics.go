package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/quiz"
)

// Collectors exposes bank and quiz activity to Prometheus.
type Collectors struct {
	Questions       prometheus.Gauge
	Added           prometheus.Counter
	Duplicates      prometheus.Counter
	ImportsRejected prometheus.Counter
	TestScores      prometheus.Histogram
}

// New registers the collectors with reg. Passing prometheus.DefaultRegisterer
// exposes them on the promhttp default handler.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Questions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quizbank_questions",
			Help: "Number of questions currently stored in the bank.",
		}),
		Added: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizbank_questions_added_total",
			Help: "Questions appended by text or JSON imports.",
		}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizbank_questions_duplicate_total",
			Help: "Imported questions skipped because their text already existed.",
		}),
		ImportsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizbank_imports_rejected_total",
			Help: "JSON import documents rejected as malformed.",
		}),
		TestScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizbank_test_score_ratio",
			Help:    "Share of correct answers per graded test.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
	reg.MustRegister(c.Questions, c.Added, c.Duplicates, c.ImportsRejected, c.TestScores)
	return c
}

// BankCountChanged implements bank.CountObserver.
func (c *Collectors) BankCountChanged(_ context.Context, count int) {
	c.Questions.Set(float64(count))
}

// ObserveMerge counts appended and skipped questions.
func (c *Collectors) ObserveMerge(res bank.MergeResult) {
	c.Added.Add(float64(res.Added))
	c.Duplicates.Add(float64(res.Duplicates))
}

// ObserveImportRejected counts a refused import document.
func (c *Collectors) ObserveImportRejected(error) {
	c.ImportsRejected.Inc()
}

// ObserveResult records a graded test.
func (c *Collectors) ObserveResult(res quiz.Result) {
	c.TestScores.Observe(res.Ratio())
}
