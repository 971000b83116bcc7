package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dskvich/study-bot-api/pkg/domain"
	"github.com/dskvich/study-bot-api/pkg/logger"
	"github.com/uptrace/bun"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type questionRepository struct {
	db *bun.DB
}

func NewQuestionRepository(db *bun.DB) *questionRepository {
	return &questionRepository{db: db}
}

// Search returns questions whose question or answer text contains keyword.
// An empty keyword matches every row.
func (r *questionRepository) Search(ctx context.Context, keyword string) ([]domain.Question, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	questions := []domain.Question{}

	err := r.db.NewSelect().
		Model(&questions).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`question_text LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`answer_text LIKE ? ESCAPE '\'`, pattern)
		}).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error searching questions", "keyword", keyword, logger.Err(err))
		return nil, fmt.Errorf("searching questions by %q: %w", keyword, err)
	}

	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, questionText, answerText string) (*domain.Question, error) {
	question := domain.NewQuestion(questionText, answerText)
	if err := question.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(question).
		Returning("id").
		Exec(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error creating question", logger.Err(err))
		return nil, fmt.Errorf("saving question: %w", err)
	}

	return question, nil
}

// Update reports false when no question has the given id.
func (r *questionRepository) Update(ctx context.Context, id int64, questionText, answerText string) (bool, error) {
	question := domain.NewQuestion(questionText, answerText)
	if err := question.Validate(); err != nil {
		return false, err
	}
	question.ID = id
	question.UpdatedAt = time.Now().UTC()

	res, err := r.db.NewUpdate().
		Model(question).
		Column("question_text", "answer_text", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error updating question", "id", id, logger.Err(err))
		return false, fmt.Errorf("updating question %d: %w", id, err)
	}

	return rowsAffected(res)
}

// Delete reports false when no question has the given id.
func (r *questionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*domain.Question)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error deleting question", "id", id, logger.Err(err))
		return false, fmt.Errorf("deleting question %d: %w", id, err)
	}

	return rowsAffected(res)
}

func (r *questionRepository) GetAll(ctx context.Context) ([]domain.Question, error) {
	questions := []domain.Question{}

	err := r.db.NewSelect().
		Model(&questions).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error getting all questions", logger.Err(err))
		return nil, fmt.Errorf("fetching questions: %w", err)
	}

	return questions, nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}
