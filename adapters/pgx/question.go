package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/quora/core"
)

func (a *Adapter) CreateQuestion(ctx context.Context, q *core.Question) error {
	err := a.q.QueryRowContext(ctx,
		`INSERT INTO questions (uuid, content, date, user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		q.UUID, q.Content, q.Date, q.UserID,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (a *Adapter) GetQuestionByUUID(ctx context.Context, uuid string) (*core.Question, error) {
	q := &core.Question{}
	err := a.q.QueryRowContext(ctx,
		`SELECT id, uuid, content, date, user_id FROM questions WHERE uuid = $1`, uuid,
	).Scan(&q.ID, &q.UUID, &q.Content, &q.Date, &q.UserID)
	if err != nil {
		return nil, mapNotFound(err, core.ErrRecordNotFound)
	}
	return q, nil
}

func (a *Adapter) ListQuestions(ctx context.Context) ([]*core.Question, error) {
	return a.listQuestions(ctx, `SELECT id, uuid, content, date, user_id FROM questions ORDER BY id`)
}

func (a *Adapter) ListQuestionsByUser(ctx context.Context, userID int64) ([]*core.Question, error) {
	return a.listQuestions(ctx, `SELECT id, uuid, content, date, user_id FROM questions WHERE user_id = $1 ORDER BY id`, userID)
}

func (a *Adapter) listQuestions(ctx context.Context, query string, args ...any) ([]*core.Question, error) {
	rows, err := a.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*core.Question, 0)
	for rows.Next() {
		q := &core.Question{}
		if err := rows.Scan(&q.ID, &q.UUID, &q.Content, &q.Date, &q.UserID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (a *Adapter) UpdateQuestion(ctx context.Context, q *core.Question) error {
	res, err := a.q.ExecContext(ctx, `UPDATE questions SET content = $1 WHERE id = $2`, q.Content, q.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, core.ErrRecordNotFound)
}

// DeleteQuestion removes the question; answers go with it via ON DELETE CASCADE.
func (a *Adapter) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := a.q.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, core.ErrRecordNotFound)
}
