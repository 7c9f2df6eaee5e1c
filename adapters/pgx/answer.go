package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lborres/quora/core"
)

const foreignKeyViolation = "23503"

func (a *Adapter) CreateAnswer(ctx context.Context, ans *core.Answer) error {
	err := a.q.QueryRowContext(ctx,
		`INSERT INTO answers (uuid, ans, date, user_id, question_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ans.UUID, ans.Content, ans.Date, ans.UserID, ans.QuestionID,
	).Scan(&ans.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return core.ErrRecordNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (a *Adapter) GetAnswerByUUID(ctx context.Context, uuid string) (*core.Answer, error) {
	ans := &core.Answer{}
	err := a.q.QueryRowContext(ctx,
		`SELECT id, uuid, ans, date, user_id, question_id FROM answers WHERE uuid = $1`, uuid,
	).Scan(&ans.ID, &ans.UUID, &ans.Content, &ans.Date, &ans.UserID, &ans.QuestionID)
	if err != nil {
		return nil, mapNotFound(err, core.ErrRecordNotFound)
	}
	return ans, nil
}

func (a *Adapter) ListAnswersByQuestion(ctx context.Context, questionID int64) ([]*core.Answer, error) {
	rows, err := a.q.QueryContext(ctx,
		`SELECT id, uuid, ans, date, user_id, question_id FROM answers WHERE question_id = $1 ORDER BY id`, questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*core.Answer, 0)
	for rows.Next() {
		ans := &core.Answer{}
		if err := rows.Scan(&ans.ID, &ans.UUID, &ans.Content, &ans.Date, &ans.UserID, &ans.QuestionID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, ans)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (a *Adapter) UpdateAnswer(ctx context.Context, ans *core.Answer) error {
	res, err := a.q.ExecContext(ctx, `UPDATE answers SET ans = $1 WHERE id = $2`, ans.Content, ans.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, core.ErrRecordNotFound)
}

func (a *Adapter) DeleteAnswer(ctx context.Context, id int64) error {
	res, err := a.q.ExecContext(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, core.ErrRecordNotFound)
}
