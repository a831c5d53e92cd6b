package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/question"
)

// ErrTestNotFound is returned when submitting to an unknown, expired or already graded test.
var ErrTestNotFound = errors.New("test not found or already submitted")

// BankReader is the slice of the bank repository the quiz flow needs.
type BankReader interface {
	Load(ctx context.Context) ([]question.Question, error)
}

// Service issues tests from the bank and grades submissions.
type Service struct {
	bank      BankReader
	generator *Generator
	sessions  SessionStore
	onGraded  func(Result)
	logger    zerolog.Logger
}

// ServiceOptions wires optional hooks.
type ServiceOptions struct {
	// OnGraded is called with every graded result, e.g. to record metrics.
	OnGraded func(Result)
}

func NewService(bank BankReader, generator *Generator, sessions SessionStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		bank:      bank,
		generator: generator,
		sessions:  sessions,
		onGraded:  opts.OnGraded,
		logger:    logger.With().Str("component", "quiz").Logger(),
	}
}

// Start generates a test, remembers its key and returns the answer-free paper.
func (s *Service) Start(ctx context.Context) (Paper, error) {
	qs, err := s.bank.Load(ctx)
	if err != nil {
		return Paper{}, err
	}
	t, err := s.generator.Generate(qs)
	if err != nil {
		return Paper{}, err
	}
	if err := s.sessions.Put(ctx, t); err != nil {
		return Paper{}, fmt.Errorf("store test: %w", err)
	}
	s.logger.Info().Str("test_id", t.ID.String()).Int("questions", len(t.Questions)).Msg("test started")
	return t.Paper(), nil
}

// Submit grades a started test. A test can be submitted once.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, answers map[int]string) (Result, error) {
	t, err := s.sessions.Take(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if t == nil {
		return Result{}, ErrTestNotFound
	}

	res := Grade(*t, answers)
	if s.onGraded != nil {
		s.onGraded(res)
	}
	s.logger.Info().Str("test_id", id.String()).Int("score", res.Score).Int("total", res.Total).Msg("test graded")
	return res, nil
}
