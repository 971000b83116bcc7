package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dskvich/study-bot-api/pkg/domain"
)

const maxBodyBytes = 1 << 20

type QuestionLister interface {
	GetAll(ctx context.Context) ([]domain.Question, error)
}

type QuestionSearcher interface {
	Search(ctx context.Context, keyword string) ([]domain.Question, error)
}

type QuestionCreator interface {
	Create(ctx context.Context, questionText, answerText string) (*domain.Question, error)
}

type QuestionUpdater interface {
	Update(ctx context.Context, id int64, questionText, answerText string) (bool, error)
}

type QuestionDeleter interface {
	Delete(ctx context.Context, id int64) (bool, error)
}

func GetAllQuestions(lister QuestionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := lister.GetAll(r.Context())
		if err != nil {
			writeInternalError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, toQuestionResponses(questions))
	}
}

// SearchQuestions rejects a missing or blank keyword instead of matching
// every row.
func SearchQuestions(searcher QuestionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		if strings.TrimSpace(keyword) == "" {
			writeMessage(w, r, http.StatusBadRequest, msgKeywordRequired)
			return
		}

		questions, err := searcher.Search(r.Context(), keyword)
		if err != nil {
			writeInternalError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, toQuestionResponses(questions))
	}
}

func CreateQuestion(creator QuestionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeQuestionRequest(w, r)
		if err != nil {
			slog.InfoContext(r.Context(), "Rejected question body", "error", err)
			writeMessage(w, r, http.StatusBadRequest, msgInvalidBody)
			return
		}

		question, err := creator.Create(r.Context(), body.QuestionText, body.AnswerText)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				writeMessage(w, r, http.StatusBadRequest, validationMessage(err))
				return
			}
			writeInternalError(w, r, err)
			return
		}

		slog.InfoContext(r.Context(), "Question created", "id", question.ID)
		writeJSON(w, r, http.StatusCreated, toQuestionResponse(*question))
	}
}

func UpdateQuestion(updater QuestionUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			writeMessage(w, r, http.StatusBadRequest, msgInvalidID)
			return
		}

		body, err := decodeQuestionRequest(w, r)
		if err != nil {
			slog.InfoContext(r.Context(), "Rejected question body", "id", id, "error", err)
			writeMessage(w, r, http.StatusBadRequest, msgInvalidBody)
			return
		}

		updated, err := updater.Update(r.Context(), id, body.QuestionText, body.AnswerText)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				writeMessage(w, r, http.StatusBadRequest, validationMessage(err))
				return
			}
			writeInternalError(w, r, err)
			return
		}
		if !updated {
			writeMessage(w, r, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		slog.InfoContext(r.Context(), "Question updated", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuestion(deleter QuestionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			writeMessage(w, r, http.StatusBadRequest, msgInvalidID)
			return
		}

		deleted, err := deleter.Delete(r.Context(), id)
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		if !deleted {
			writeMessage(w, r, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		slog.InfoContext(r.Context(), "Question deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func decodeQuestionRequest(w http.ResponseWriter, r *http.Request) (questionRequest, error) {
	var body questionRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return questionRequest{}, fmt.Errorf("decoding body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return questionRequest{}, errors.New("body must contain a single JSON object")
	}

	return body, nil
}

// validationMessage drops the sentinel prefix, leaving the field messages.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == "" {
		return domain.ErrValidation.Error()
	}
	return msg
}
