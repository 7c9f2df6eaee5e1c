package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
)

const maxContentLength = 500

type QuestionService struct {
	db  core.StorageAdapter
	log logging.Logger
}

// Ensure QuestionService implements QuestionHandler
var _ core.QuestionHandler = (*QuestionService)(nil)

func NewQuestionService(db core.StorageAdapter, log logging.Logger) *QuestionService {
	if log == nil {
		log = logging.Nop{}
	}
	return &QuestionService{db: db, log: log}
}

func validateContent(content string) error {
	if err := validation.Validate(content, validation.Required, validation.Length(1, maxContentLength)); err != nil {
		return core.ErrInvalidInput.WithMessage("content: " + err.Error())
	}
	return nil
}

func (s *QuestionService) Create(ctx context.Context, actor *core.User, content string) (*core.Question, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	q := &core.Question{
		UUID:    uuid.NewString(),
		Content: content,
		Date:    time.Now().UTC(),
		UserID:  actor.ID,
	}

	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		if err := tx.CreateQuestion(ctx, q); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "question created", "question_id", q.UUID, "user_id", actor.UUID)
	return q, nil
}

func (s *QuestionService) All(ctx context.Context, actor *core.User) ([]*core.Question, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var questions []*core.Question
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		questions, err = tx.ListQuestions(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionService) AllByUser(ctx context.Context, actor *core.User, userUUID string) ([]*core.Question, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var questions []*core.Question
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		owner, err := tx.GetUserByUUID(ctx, userUUID)
		if err != nil {
			if errors.Is(err, core.ErrRecordNotFound) {
				return core.ErrUserNotFound.WithMessage("User with entered uuid whose question details are to be seen does not exist")
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		questions, err = tx.ListQuestionsByUser(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) Edit(ctx context.Context, actor *core.User, questionUUID, content string) (*core.Question, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var q *core.Question
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		q, err = s.find(ctx, tx, questionUUID)
		if err != nil {
			return err
		}

		if err := CanMutate(actor, q, PrivilegeEdit); err != nil {
			return err
		}

		q.Content = content
		if err := tx.UpdateQuestion(ctx, q); err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "question edited", "question_id", q.UUID, "user_id", actor.UUID)
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, actor *core.User, questionUUID string) (*core.Question, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var q *core.Question
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		q, err = s.find(ctx, tx, questionUUID)
		if err != nil {
			return err
		}

		if err := CanMutate(actor, q, PrivilegeDelete); err != nil {
			return err
		}

		if err := tx.DeleteQuestion(ctx, q.ID); err != nil {
			return fmt.Errorf("failed to delete question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "question deleted", "question_id", q.UUID, "user_id", actor.UUID)
	return q, nil
}

func (s *QuestionService) find(ctx context.Context, tx core.StorageAdapter, questionUUID string) (*core.Question, error) {
	q, err := tx.GetQuestionByUUID(ctx, questionUUID)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return nil, core.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}
