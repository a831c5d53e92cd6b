package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-bank/internal/question"
)

// DefaultMaxQuestions caps how many questions a generated test holds.
const DefaultMaxQuestions = 60

// NoAnswer is recorded for questions left unanswered.
const NoAnswer = "No answer"

// Test is an issued test including its answer key. It never leaves the server as is;
// takers receive its Paper.
type Test struct {
	ID        uuid.UUID           `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Questions []question.Question `json:"questions"`
}

// Item is one question as shown to a taker, options already in display order.
type Item struct {
	Number   int      `json:"number"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Paper is the answer-free view of a Test.
type Paper struct {
	ID    uuid.UUID `json:"id"`
	Items []Item    `json:"items"`
}

// Paper strips the answer key.
func (t Test) Paper() Paper {
	items := make([]Item, len(t.Questions))
	for i, q := range t.Questions {
		items[i] = Item{
			Number:   i + 1,
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
		}
	}
	return Paper{ID: t.ID, Items: items}
}

// Review reports how one question was answered.
type Review struct {
	Number        int    `json:"number"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Result is a graded test.
type Result struct {
	TestID     uuid.UUID `json:"test_id"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	Review     []Review  `json:"review"`
}

// Summary renders the score line, e.g. "45 / 60 (75.0%)".
func (r Result) Summary() string {
	return fmt.Sprintf("%d / %d (%.1f%%)", r.Score, r.Total, r.Percentage)
}

// Ratio is the share of correct answers in [0, 1].
func (r Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}
