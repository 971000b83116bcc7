package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/bun"
)

var (
	errEmptyQuestionText = errors.New("question text cannot be empty")
	errEmptyAnswerText   = errors.New("answer text cannot be empty")
)

type Question struct {
	bun.BaseModel `bun:"table:questions" json:"-"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	QuestionText string    `bun:"question_text,notnull" json:"questionText"`
	AnswerText   string    `bun:"answer_text,notnull" json:"answerText"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func NewQuestion(questionText, answerText string) *Question {
	return &Question{
		QuestionText: questionText,
		AnswerText:   answerText,
	}
}

// Validate reports every empty text field at once. Whitespace-only text
// counts as empty. The returned error matches ErrValidation.
func (q *Question) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(q.QuestionText) == "" {
		result = multierror.Append(result, errEmptyQuestionText)
	}
	if strings.TrimSpace(q.AnswerText) == "" {
		result = multierror.Append(result, errEmptyAnswerText)
	}

	if result == nil {
		return nil
	}

	result.ErrorFormat = func(errs []error) string {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return strings.Join(msgs, "; ")
	}

	return fmt.Errorf("%w: %w", ErrValidation, result)
}
