package bank

import (
	"errors"

	"github.com/gokatarajesh/quiz-bank/internal/question"
)

var (
	// ErrValidation wraps question.ErrInvalid so callers need only import this package.
	ErrValidation = question.ErrInvalid
	// ErrIndexOutOfRange is returned by UpdateAt and DeleteAt for a position outside the bank.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrMalformedImport rejects an import document as a whole; nothing is merged.
	ErrMalformedImport = errors.New("malformed import document")
	// ErrNoQuestionsFound is returned when non-blank text contains no parsable question.
	ErrNoQuestionsFound = errors.New("could not find any valid questions to extract, please check the format")
	// ErrEmptyBank is returned by operations that need at least one stored question.
	ErrEmptyBank = errors.New("no questions found in the bank")
	// ErrCorruptBank means the stored document could not be decoded.
	ErrCorruptBank = errors.New("stored question bank is corrupt")
)
