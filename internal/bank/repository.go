package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/kv"
	"github.com/gokatarajesh/quiz-bank/internal/question"
)

const (
	// DefaultKey is the store key holding the whole bank document.
	DefaultKey = "mos-test-questions"
	// ExportFilename is the suggested name for exported banks.
	ExportFilename = "mos-questions.json"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// CountObserver is told the bank size after every write.
type CountObserver interface {
	BankCountChanged(ctx context.Context, count int)
}

// CountObserverFunc adapts a function to CountObserver.
type CountObserverFunc func(ctx context.Context, count int)

func (f CountObserverFunc) BankCountChanged(ctx context.Context, count int) {
	f(ctx, count)
}

// MergeResult summarizes a merge: how many questions were appended and how many
// were skipped because their text was already present.
type MergeResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// Repository owns the ordered question bank stored as one JSON document.
// Each public method is a complete read-modify-write; methods are serialized.
type Repository struct {
	mu               sync.Mutex
	store            kv.Store
	key              string
	observers        []CountObserver
	onMerge          func(MergeResult)
	onImportRejected func(error)
	logger           zerolog.Logger
}

// Options tunes a Repository.
type Options struct {
	Key       string
	Observers []CountObserver
	// OnMerge sees the outcome of every successful merge.
	OnMerge func(MergeResult)
	// OnImportRejected sees every import document refused as malformed.
	OnImportRejected func(error)
}

func NewRepository(store kv.Store, opts Options, logger zerolog.Logger) *Repository {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Repository{
		store:            store,
		key:              key,
		observers:        opts.Observers,
		onMerge:          opts.OnMerge,
		onImportRejected: opts.OnImportRejected,
		logger:           logger.With().Str("component", "bank").Logger(),
	}
}

// Observe registers another count observer.
func (r *Repository) Observe(o CountObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Load returns the stored questions in insertion order. A missing document is an empty bank.
func (r *Repository) Load(ctx context.Context) ([]question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Save replaces the stored bank.
func (r *Repository) Save(ctx context.Context, questions []question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, questions)
}

// Count returns the number of stored questions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	qs, err := r.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(qs), nil
}

// MergeAdd appends the questions whose text is not in the bank yet. Within the batch
// the first occurrence of a text wins as well.
func (r *Repository) MergeAdd(ctx context.Context, incoming []question.Question) (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergeAdd(ctx, incoming)
}

// AddText parses pasted text and merges the result.
func (r *Repository) AddText(ctx context.Context, raw string) (MergeResult, error) {
	parsed := question.Parse(raw)
	if len(parsed) == 0 && strings.TrimSpace(raw) != "" {
		return MergeResult{}, ErrNoQuestionsFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergeAdd(ctx, parsed)
}

// Import reads a JSON document of questions and merges it. An invalid document is
// rejected as a whole with ErrMalformedImport.
func (r *Repository) Import(ctx context.Context, src io.Reader) (MergeResult, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return MergeResult{}, fmt.Errorf("read import: %w", err)
	}
	questions, err := question.DecodePayload(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		r.logger.Warn().Err(err).Int("bytes", len(data)).Msg("import rejected")
		if r.onImportRejected != nil {
			r.onImportRejected(err)
		}
		return MergeResult{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergeAdd(ctx, questions)
}

// UpdateAt replaces the question at index after normalizing and validating it.
func (r *Repository) UpdateAt(ctx context.Context, index int, q question.Question) error {
	q = question.Normalize(q)
	if err := question.Validate(q); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	qs, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := checkIndex(index, len(qs)); err != nil {
		return err
	}
	qs[index] = q
	return r.save(ctx, qs)
}

// DeleteAt removes the question at index, shifting later questions down.
func (r *Repository) DeleteAt(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	qs, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := checkIndex(index, len(qs)); err != nil {
		return err
	}
	qs = append(qs[:index], qs[index+1:]...)
	return r.save(ctx, qs)
}

// Clear deletes the whole bank.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("clear bank: %w", err)
	}
	r.logger.Info().Msg("bank cleared")
	r.notify(ctx, 0)
	return nil
}

// Export renders the bank as indented JSON suitable for Import.
func (r *Repository) Export(ctx context.Context) ([]byte, error) {
	qs, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, ErrEmptyBank
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(qs); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r *Repository) mergeAdd(ctx context.Context, incoming []question.Question) (MergeResult, error) {
	existing, err := r.load(ctx)
	if err != nil {
		return MergeResult{}, err
	}

	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, q := range existing {
		seen[q.Question] = struct{}{}
	}

	merged := existing
	for _, q := range incoming {
		if _, dup := seen[q.Question]; dup {
			continue
		}
		seen[q.Question] = struct{}{}
		merged = append(merged, q.Clone())
	}

	res := MergeResult{
		Added:      len(merged) - len(existing),
		Duplicates: len(incoming) - (len(merged) - len(existing)),
	}
	if err := r.save(ctx, merged); err != nil {
		return MergeResult{}, err
	}
	r.logger.Info().Int("added", res.Added).Int("duplicates", res.Duplicates).Msg("questions merged")
	if r.onMerge != nil {
		r.onMerge(res)
	}
	return res, nil
}

func (r *Repository) load(ctx context.Context) ([]question.Question, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []question.Question{}, nil
	}
	var qs []question.Question
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBank, err)
	}
	if qs == nil {
		qs = []question.Question{}
	}
	return qs, nil
}

func (r *Repository) save(ctx context.Context, qs []question.Question) error {
	if qs == nil {
		qs = []question.Question{}
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encode bank: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	r.notify(ctx, len(qs))
	return nil
}

func (r *Repository) notify(ctx context.Context, count int) {
	r.logger.Debug().Int("count", count).Msg("bank count changed")
	for _, o := range r.observers {
		o.BankCountChanged(ctx, count)
	}
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return fmt.Errorf("%w: index %d, bank has %d questions", ErrIndexOutOfRange, index, length)
	}
	return nil
}
