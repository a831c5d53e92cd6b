package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/logging"
	"github.com/gokatarajesh/quiz-bank/internal/question"
	"github.com/gokatarajesh/quiz-bank/internal/quiz"
	httperrors "github.com/gokatarajesh/quiz-bank/pkg/http/errors"
)

// maxBodyBytes bounds pasted text and import documents.
const maxBodyBytes = 8 << 20

// BankHandlers exposes the question bank over REST.
type BankHandlers struct {
	bank *bank.Repository
}

func NewBankHandlers(repo *bank.Repository) *BankHandlers {
	return &BankHandlers{bank: repo}
}

// List handles GET /v1/questions
func (h *BankHandlers) List(w http.ResponseWriter, r *http.Request) {
	qs, err := h.bank.Load(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"count":     len(qs),
		"questions": qs,
	})
}

// Count handles GET /v1/questions/count
func (h *BankHandlers) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.bank.Count(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]int{"count": n})
}

type parseRequest struct {
	Text string `json:"text"`
}

// Parse handles POST /v1/questions/parse. The body is either raw text or {"text": "..."}.
func (h *BankHandlers) Parse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondDomainError(w, r, err)
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Could not read request body")
		return
	}

	text := string(body)
	if isJSON(r) {
		var req parseRequest
		if err := json.Unmarshal(body, &req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
		text = req.Text
	}
	if strings.TrimSpace(text) == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Please paste some text first", "text")
		return
	}

	res, err := h.bank.AddText(r.Context(), text)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

// Import handles POST /v1/questions/import
func (h *BankHandlers) Import(w http.ResponseWriter, r *http.Request) {
	res, err := h.bank.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

// Export handles GET /v1/questions/export
func (h *BankHandlers) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.bank.Export(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": bank.ExportFilename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Update handles PUT /v1/questions/{index}
func (h *BankHandlers) Update(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	var q question.Question
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&q); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if err := h.bank.UpdateAt(r.Context(), index, q); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /v1/questions/{index}
func (h *BankHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.bank.DeleteAt(r.Context(), index); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /v1/questions
func (h *BankHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.Clear(r.Context()); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestHandlers issues and grades tests.
type TestHandlers struct {
	quiz *quiz.Service
}

func NewTestHandlers(svc *quiz.Service) *TestHandlers {
	return &TestHandlers{quiz: svc}
}

// Start handles POST /v1/tests
func (h *TestHandlers) Start(w http.ResponseWriter, r *http.Request) {
	paper, err := h.quiz.Start(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, paper)
}

type submitRequest struct {
	// Answers maps zero-based question positions to the chosen option text.
	Answers map[int]string `json:"answers"`
}

// Submit handles POST /v1/tests/{id}/submit
func (h *TestHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidTestID, "Invalid test id")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	res, err := h.quiz.Submit(r.Context(), id, req.Answers)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"result":  res,
		"summary": res.Summary(),
	})
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidIndex, "Question index must be an integer")
		return 0, false
	}
	return index, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// respondDomainError maps bank and quiz errors onto HTTP responses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *question.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httperrors.RespondErrorWithDetails(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodeInvalidRequest, "Request body too large",
			map[string]any{"limit_bytes": tooLarge.Limit})
	case errors.As(err, &verr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, verr.Reason, verr.Field)
	case errors.Is(err, bank.ErrMalformedImport):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "Invalid file format. Please import a valid JSON file exported from this app.")
	case errors.Is(err, bank.ErrNoQuestionsFound):
		httperrors.RespondValidationError(w, httperrors.ErrCodeNoQuestionsFound, err.Error(), "text")
	case errors.Is(err, bank.ErrIndexOutOfRange):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, err.Error())
	case errors.Is(err, bank.ErrEmptyBank):
		httperrors.RespondNotFound(w, httperrors.ErrCodeEmptyBank, "There are no questions to export.")
	case errors.Is(err, quiz.ErrEmptyBank):
		httperrors.RespondNotFound(w, httperrors.ErrCodeEmptyBank, "No questions found in the bank. Please add some first.")
	case errors.Is(err, quiz.ErrTestNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeTestNotFound, err.Error())
	case errors.Is(err, bank.ErrCorruptBank):
		logging.FromContext(r.Context()).Error().Err(err).Msg("corrupt bank")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeCorruptBank, "Stored question bank could not be read")
	default:
		logging.FromContext(r.Context()).Error().Err(err).Msg("request failed")
		httperrors.RespondInternalError(w, "Internal server error")
	}
}
