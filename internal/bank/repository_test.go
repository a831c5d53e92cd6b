package bank

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-bank/internal/kv"
	"github.com/gokatarajesh/quiz-bank/internal/question"
)

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) BankCountChanged(ctx context.Context, count int) {
	m.Called(ctx, count)
}

// failingStore wraps a store and fails writes once armed.
type failingStore struct {
	kv.Store
	failSet bool
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func newTestRepo(t *testing.T) (*Repository, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	return NewRepository(store, Options{}, zerolog.Nop()), store
}

func q(text string, options []string, correct string) question.Question {
	return question.Question{Question: text, Options: options, CorrectAnswer: correct}
}

func sampleText() string {
	return strings.Join([]string{
		"1. What is 2+2?",
		question.MarkerPlain.String() + "3",
		question.MarkerCorrect.String() + "4",
		question.MarkerPlain.String() + "5",
		"2. Which key saves a workbook?",
		question.MarkerCorrect.String() + "Ctrl+S",
		question.MarkerPlain.String() + "Ctrl+P",
	}, "\n")
}

func TestLoadEmptyStorage(t *testing.T) {
	repo, _ := newTestRepo(t)

	qs, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, qs)
	assert.Empty(t, qs)
}

func TestLoadCorruptDocument(t *testing.T) {
	repo, store := newTestRepo(t)
	require.NoError(t, store.Set(context.Background(), DefaultKey, `{"not":"an array"}`))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptBank)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	bank := []question.Question{
		q("Zeta", []string{"a", "b"}, "b"),
		q("Alpha <b>bold</b> & co", []string{"x", "y", "z"}, "x"),
		q("Mid", []string{"same", "same"}, "same"),
	}

	require.NoError(t, repo.Save(ctx, bank))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, bank, got)
}

func TestSaveUsesConfiguredKey(t *testing.T) {
	store := kv.NewMemory()
	repo := NewRepository(store, Options{Key: "custom"}, zerolog.Nop())
	require.NoError(t, repo.Save(context.Background(), []question.Question{q("Q", []string{"a", "b"}, "a")}))

	_, ok, _ := store.Get(context.Background(), DefaultKey)
	assert.False(t, ok)
	raw, ok, _ := store.Get(context.Background(), "custom")
	assert.True(t, ok)
	assert.JSONEq(t, `[{"question":"Q","options":["a","b"],"correctAnswer":"a"}]`, raw)
}

func TestMergeAddReportsDuplicates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	batch := []question.Question{q("Q1", []string{"a", "b"}, "a")}

	res, err := repo.MergeAdd(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 1, Duplicates: 0}, res)

	res, err = repo.MergeAdd(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 0, Duplicates: 1}, res)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMergeAddFirstOccurrenceWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	res, err := repo.MergeAdd(ctx, []question.Question{
		q("Q1", []string{"a", "b"}, "a"),
		q("Q1", []string{"c", "d"}, "d"),
	})
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 1, Duplicates: 1}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", "b"}, got[0].Options)
}

func TestMergeAddAppendsInOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{q("B", []string{"1", "2"}, "1")}))

	res, err := repo.MergeAdd(ctx, []question.Question{
		q("C", []string{"1", "2"}, "2"),
		q("B", []string{"9", "8"}, "9"),
		q("A", []string{"1", "2"}, "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 2, Duplicates: 1}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	texts := make([]string, len(got))
	for i, item := range got {
		texts[i] = item.Question
	}
	assert.Equal(t, []string{"B", "C", "A"}, texts)
	assert.Equal(t, []string{"1", "2"}, got[0].Options, "existing entry is untouched")
}

func TestAddTextIsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddText(ctx, sampleText())
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 2}, first)
	once, err := repo.Load(ctx)
	require.NoError(t, err)

	second, err := repo.AddText(ctx, sampleText())
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 0, Duplicates: 2}, second)
	twice, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestAddTextWithoutQuestions(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddText(ctx, "just some notes\nwithout numbering")
	assert.ErrorIs(t, err, ErrNoQuestionsFound)
	_, ok, _ := store.Get(ctx, DefaultKey)
	assert.False(t, ok, "nothing is written")

	res, err := repo.AddText(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, MergeResult{}, res)
}

func TestUpdateAtRejectsAnswerOutsideOptions(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	original := []question.Question{q("Q", []string{"a", "b"}, "a")}
	require.NoError(t, repo.Save(ctx, original))

	err := repo.UpdateAt(ctx, 0, q("Q", []string{"a", "b"}, "c"))
	assert.ErrorIs(t, err, ErrValidation)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestUpdateAtValidation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{q("Q", []string{"a", "b"}, "a")}))

	cases := map[string]question.Question{
		"blank prompt":         q("   ", []string{"a", "b"}, "a"),
		"one real option":      q("Q", []string{"a", "  ", ""}, "a"),
		"missing answer":       q("Q", []string{"a", "b"}, ""),
		"answer was trimmed":   q("Q", []string{"a", "b"}, "   "),
		"answer not an option": q("Q", []string{"a", "b"}, "B"),
	}
	for name, upd := range cases {
		t.Run(name, func(t *testing.T) {
			err := repo.UpdateAt(ctx, 0, upd)
			assert.ErrorIs(t, err, ErrValidation)
			var verr *question.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpdateAtNormalizesAndReplaces(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{
		q("Q1", []string{"a", "b"}, "a"),
		q("Q2", []string{"c", "d"}, "c"),
	}))

	require.NoError(t, repo.UpdateAt(ctx, 1, q("  Q2 edited ", []string{" c ", "", "e "}, " e")))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, q("Q1", []string{"a", "b"}, "a"), got[0])
	assert.Equal(t, q("Q2 edited", []string{"c", "e"}, "e"), got[1])
}

func TestUpdateAtIndexOutOfRange(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	valid := q("Q", []string{"a", "b"}, "a")

	assert.ErrorIs(t, repo.UpdateAt(ctx, 0, valid), ErrIndexOutOfRange)
	require.NoError(t, repo.Save(ctx, []question.Question{valid}))
	assert.ErrorIs(t, repo.UpdateAt(ctx, 1, valid), ErrIndexOutOfRange)
	assert.ErrorIs(t, repo.UpdateAt(ctx, -1, valid), ErrIndexOutOfRange)
}

func TestDeleteAt(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{q("Only", []string{"a", "b"}, "a")}))

	require.NoError(t, repo.DeleteAt(ctx, 0))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, repo.DeleteAt(ctx, 0), ErrIndexOutOfRange)
}

func TestDeleteAtShifts(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{
		q("A", []string{"1", "2"}, "1"),
		q("B", []string{"1", "2"}, "1"),
		q("C", []string{"1", "2"}, "1"),
	}))

	require.NoError(t, repo.DeleteAt(ctx, 1))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Question)
	assert.Equal(t, "C", got[1].Question)
}

func TestClear(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{q("A", []string{"1", "2"}, "1")}))

	require.NoError(t, repo.Clear(ctx))
	_, ok, _ := store.Get(ctx, DefaultKey)
	assert.False(t, ok)
	require.NoError(t, repo.Clear(ctx), "clearing an empty bank succeeds")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportMergesValidDocument(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []question.Question{q("Q1", []string{"a", "b"}, "a")}))

	doc := "\xef\xbb\xbf" + `[
		{"question":"Q1","options":["x","y"],"correctAnswer":"x"},
		{"question":"Q2","options":["x","y"],"correctAnswer":"y"}
	]`
	res, err := repo.Import(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 1, Duplicates: 1}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []question.Question{
		q("Q1", []string{"a", "b"}, "a"),
		q("Q2", []string{"x", "y"}, "y"),
	}, got)
}

func TestImportIsAllOrNothing(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	for name, doc := range map[string]string{
		"malformed element": `[{"question":"Q","options":["a","b"],"correctAnswer":"a"},{"question":5}]`,
		"invalid json":      `[{"question":`,
		"object root":       `{"question":"Q","options":["a","b"],"correctAnswer":"a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Import(ctx, strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrMalformedImport)
			_, ok, _ := store.Get(ctx, DefaultKey)
			assert.False(t, ok)
		})
	}
}

func TestImportKeepsCorrectAnswerAmongOptions(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	doc := `[{"question":"Q","options":["a","b"],"correctAnswer":"a","CORRECTANSWER":"zzz"}]`
	res, err := repo.Import(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 1}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].CorrectAnswer)
	assert.Contains(t, got[0].Options, got[0].CorrectAnswer)
}

func TestAddTextWithByteOrderMark(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	raw := "\ufeff1. What is 2+2?\n" + question.MarkerPlain.String() + "3\n" + question.MarkerCorrect.String() + "4"
	res, err := repo.AddText(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 1}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []question.Question{q("What is 2+2?", []string{"3", "4"}, "4")}, got)
}

func TestImportAndTextShareDedupe(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddText(ctx, sampleText())
	require.NoError(t, err)

	exported, err := repo.Export(ctx)
	require.NoError(t, err)

	res, err := repo.Import(ctx, strings.NewReader(string(exported)))
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Added: 0, Duplicates: 2}, res)
}

func TestExport(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Export(ctx)
	assert.ErrorIs(t, err, ErrEmptyBank)

	require.NoError(t, repo.Save(ctx, []question.Question{q("A & B?", []string{"1", "2"}, "2")}))
	out, err := repo.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "question": "A & B?",
    "options": [
      "1",
      "2"
    ],
    "correctAnswer": "2"
  }
]`, string(out))

	var back []question.Question
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "A & B?", back[0].Question)
}

func TestObserversSeeCounts(t *testing.T) {
	obs := new(mockObserver)
	repo := NewRepository(kv.NewMemory(), Options{Observers: []CountObserver{obs}}, zerolog.Nop())
	ctx := context.Background()

	obs.On("BankCountChanged", mock.Anything, 2).Once()
	obs.On("BankCountChanged", mock.Anything, 1).Once()
	obs.On("BankCountChanged", mock.Anything, 0).Once()

	_, err := repo.AddText(ctx, sampleText())
	require.NoError(t, err)
	require.NoError(t, repo.DeleteAt(ctx, 0))
	require.NoError(t, repo.Clear(ctx))

	obs.AssertExpectations(t)
}

func TestObserveFunc(t *testing.T) {
	repo, _ := newTestRepo(t)
	var counts []int
	repo.Observe(CountObserverFunc(func(_ context.Context, n int) {
		counts = append(counts, n)
	}))

	require.NoError(t, repo.Save(context.Background(), []question.Question{q("A", []string{"1", "2"}, "1")}))
	assert.Equal(t, []int{1}, counts)
}

func TestFailedWriteLeavesBankUntouched(t *testing.T) {
	store := &failingStore{Store: kv.NewMemory()}
	obs := new(mockObserver)
	repo := NewRepository(store, Options{Observers: []CountObserver{obs}}, zerolog.Nop())
	ctx := context.Background()

	obs.On("BankCountChanged", mock.Anything, 1).Once()
	require.NoError(t, repo.Save(ctx, []question.Question{q("A", []string{"1", "2"}, "1")}))

	store.failSet = true
	_, err := repo.MergeAdd(ctx, []question.Question{q("B", []string{"1", "2"}, "1")})
	assert.Error(t, err)
	assert.Error(t, repo.DeleteAt(ctx, 0))

	store.failSet = false
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []question.Question{q("A", []string{"1", "2"}, "1")}, got)
	obs.AssertExpectations(t)
}

func TestMergeAndRejectHooks(t *testing.T) {
	var merges []MergeResult
	var rejected int
	repo := NewRepository(kv.NewMemory(), Options{
		OnMerge:          func(res MergeResult) { merges = append(merges, res) },
		OnImportRejected: func(error) { rejected++ },
	}, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.AddText(ctx, sampleText())
	require.NoError(t, err)
	_, err = repo.AddText(ctx, sampleText())
	require.NoError(t, err)
	_, err = repo.Import(ctx, strings.NewReader(`[{"question":5}]`))
	require.ErrorIs(t, err, ErrMalformedImport)

	assert.Equal(t, []MergeResult{{Added: 2}, {Duplicates: 2}}, merges)
	assert.Equal(t, 1, rejected)
}
