package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MinOptions is the smallest option list accepted from edits and imports.
const MinOptions = 2

var (
	// ErrInvalid marks a question rejected by Validate.
	ErrInvalid = errors.New("invalid question")
	// ErrMalformedPayload marks an import document that is not a list of questions.
	ErrMalformedPayload = errors.New("invalid file structure: expected an array of question objects")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Normalize trims the prompt, the options and the correct answer, dropping blank options.
func Normalize(q Question) Question {
	out := Question{
		Question:      strings.TrimSpace(q.Question),
		Options:       make([]string, 0, len(q.Options)),
		CorrectAnswer: strings.TrimSpace(q.CorrectAnswer),
	}
	for _, opt := range q.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out.Options = append(out.Options, opt)
		}
	}
	return out
}

// Validate checks an edited question. It expects input already passed through Normalize.
func Validate(q Question) error {
	if q.Question == "" {
		return &ValidationError{Field: "question", Reason: "question text cannot be empty"}
	}
	if len(q.Options) < MinOptions {
		return &ValidationError{Field: "options", Reason: fmt.Sprintf("a question must have at least %d options", MinOptions)}
	}
	if q.CorrectAnswer == "" {
		return &ValidationError{Field: "correctAnswer", Reason: "a correct answer must be selected"}
	}
	if !q.HasOption(q.CorrectAnswer) {
		return &ValidationError{Field: "correctAnswer", Reason: fmt.Sprintf("%q is not one of the options", q.CorrectAnswer)}
	}
	return nil
}

// ValidPayload reports whether data, as produced by decoding JSON into an empty
// interface, is an array of well-formed question objects. One bad element rejects all.
func ValidPayload(data any) bool {
	items, ok := data.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if !validPayloadItem(item) {
			return false
		}
	}
	return true
}

func validPayloadItem(item any) bool {
	obj, ok := item.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	if _, ok := obj["question"].(string); !ok {
		return false
	}
	rawOptions, ok := obj["options"].([]any)
	if !ok || len(rawOptions) < MinOptions {
		return false
	}
	correct, ok := obj["correctAnswer"].(string)
	if !ok {
		return false
	}
	found := false
	for _, raw := range rawOptions {
		opt, ok := raw.(string)
		if !ok {
			return false
		}
		if opt == correct {
			found = true
		}
	}
	return found
}

// DecodePayload parses an import document and returns its questions in file order.
// Questions are built from the exact keys ValidPayload checked, so case-variant
// duplicates such as "CorrectAnswer" cannot slip past validation.
func DecodePayload(data []byte) ([]Question, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if !ValidPayload(generic) {
		return nil, ErrMalformedPayload
	}

	items := generic.([]any)
	questions := make([]Question, 0, len(items))
	for _, item := range items {
		questions = append(questions, fromPayloadItem(item.(map[string]any)))
	}
	return questions, nil
}

func fromPayloadItem(obj map[string]any) Question {
	rawOptions := obj["options"].([]any)
	options := make([]string, 0, len(rawOptions))
	for _, raw := range rawOptions {
		options = append(options, raw.(string))
	}
	return Question{
		Question:      obj["question"].(string),
		Options:       options,
		CorrectAnswer: obj["correctAnswer"].(string),
	}
}
