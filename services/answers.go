package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
)

type AnswerService struct {
	db  core.StorageAdapter
	log logging.Logger
}

// Ensure AnswerService implements AnswerHandler
var _ core.AnswerHandler = (*AnswerService)(nil)

func NewAnswerService(db core.StorageAdapter, log logging.Logger) *AnswerService {
	if log == nil {
		log = logging.Nop{}
	}
	return &AnswerService{db: db, log: log}
}

func (s *AnswerService) Create(ctx context.Context, actor *core.User, questionUUID, content string) (*core.Answer, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var a *core.Answer
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		q, err := tx.GetQuestionByUUID(ctx, questionUUID)
		if err != nil {
			if errors.Is(err, core.ErrRecordNotFound) {
				return core.ErrQuestionNotFound.WithMessage("The question entered is invalid")
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		a = &core.Answer{
			UUID:       uuid.NewString(),
			Content:    content,
			Date:       time.Now().UTC(),
			UserID:     actor.ID,
			QuestionID: q.ID,
		}
		if err := tx.CreateAnswer(ctx, a); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "answer created", "answer_id", a.UUID, "question_id", questionUUID, "user_id", actor.UUID)
	return a, nil
}

func (s *AnswerService) AllForQuestion(ctx context.Context, actor *core.User, questionUUID string) ([]*core.Answer, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var answers []*core.Answer
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		q, err := tx.GetQuestionByUUID(ctx, questionUUID)
		if err != nil {
			if errors.Is(err, core.ErrRecordNotFound) {
				return core.ErrQuestionNotFound.WithMessage("The question with entered uuid whose details are to be seen does not exist")
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		answers, err = tx.ListAnswersByQuestion(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}
		for _, a := range answers {
			a.QuestionContent = q.Content
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *AnswerService) Edit(ctx context.Context, actor *core.User, answerUUID, content string) (*core.Answer, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var a *core.Answer
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		a, err = s.find(ctx, tx, answerUUID)
		if err != nil {
			return err
		}

		if err := CanMutate(actor, a, PrivilegeEdit); err != nil {
			return err
		}

		a.Content = content
		if err := tx.UpdateAnswer(ctx, a); err != nil {
			return fmt.Errorf("failed to update answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "answer edited", "answer_id", a.UUID, "user_id", actor.UUID)
	return a, nil
}

func (s *AnswerService) Delete(ctx context.Context, actor *core.User, answerUUID string) (*core.Answer, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var a *core.Answer
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		a, err = s.find(ctx, tx, answerUUID)
		if err != nil {
			return err
		}

		if err := CanMutate(actor, a, PrivilegeDelete); err != nil {
			return err
		}

		if err := tx.DeleteAnswer(ctx, a.ID); err != nil {
			return fmt.Errorf("failed to delete answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "answer deleted", "answer_id", a.UUID, "user_id", actor.UUID)
	return a, nil
}

func (s *AnswerService) find(ctx context.Context, tx core.StorageAdapter, answerUUID string) (*core.Answer, error) {
	a, err := tx.GetAnswerByUUID(ctx, answerUUID)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return nil, core.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return a, nil
}
