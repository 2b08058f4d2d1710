package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizis-session-service/internal/domain"
)

// QuestionBank is a Postgres-backed question provider. Question sets live as
// JSONB rows keyed by (category, difficulty); text is stored already decoded,
// so no entity handling happens here.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := b.pool.Query(ctx, `SELECT DISTINCT category_id, category_name FROM question_sets ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", domain.ErrProviderUnavailable, err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("%w: scan category: %v", domain.ErrProviderUnavailable, err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", domain.ErrProviderUnavailable, err)
	}
	return categories, nil
}

// FetchQuestions returns up to req.Amount questions for the requested set. A
// missing set is a valid empty result, mirroring the HTTP provider's contract.
func (b *QuestionBank) FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx,
		`SELECT questions FROM question_sets WHERE category_id=$1 AND difficulty=$2`,
		req.Category, req.Difficulty,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch questions: %v", domain.ErrProviderUnavailable, err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: unmarshal question set: %v", domain.ErrProviderUnavailable, err)
	}
	if req.Amount > 0 && req.Amount < len(questions) {
		questions = questions[:req.Amount]
	}
	return questions, nil
}
