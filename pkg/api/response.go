package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dskvich/study-bot-api/pkg/domain"
	"github.com/dskvich/study-bot-api/pkg/logger"
	"github.com/samber/lo"
)

const (
	msgInternalError    = "Internal server error"
	msgQuestionNotFound = "Question not found"
	msgInvalidID        = "Invalid question id"
	msgInvalidBody      = "Invalid request body"
	msgKeywordRequired  = "Query parameter 'keyword' is required"
)

type questionRequest struct {
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

type questionResponse struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"questionText"`
	AnswerText   string    `json:"answerText"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toQuestionResponse(q domain.Question) questionResponse {
	return questionResponse{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		AnswerText:   q.AnswerText,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

func toQuestionResponses(questions []domain.Question) []questionResponse {
	return lo.Map(questions, func(q domain.Question, _ int) questionResponse {
		return toQuestionResponse(q)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", logger.Err(err))
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, messageResponse{Message: msg})
}

// writeInternalError logs err and answers with a fixed body so storage
// details never reach the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, logger.Err(err))
	writeMessage(w, r, http.StatusInternalServerError, msgInternalError)
}
