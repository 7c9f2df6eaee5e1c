// Package memory is a process-local core.StorageAdapter. It backs tests
// and the server's development mode; data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lborres/quora/core"
)

// Ensure Store implements StorageAdapter
var _ core.StorageAdapter = (*Store)(nil)

// Store keeps every table in maps. Transactions are serialized and roll
// back by restoring a snapshot taken at begin.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextID    int64
	users     map[int64]*core.User
	sessions  map[string]*core.Session // key: token hash
	questions map[int64]*core.Question
	answers   map[int64]*core.Answer
}

func New() *Store {
	return &Store{
		users:     make(map[int64]*core.User),
		sessions:  make(map[string]*core.Session),
		questions: make(map[int64]*core.Question),
		answers:   make(map[int64]*core.Answer),
	}
}

// WithTx runs fn against s. Any error returned by fn discards every write
// fn made.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx core.StorageAdapter) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, &txView{Store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// txView is the Store handed to a transaction body. Nested WithTx calls
// join the outer transaction.
type txView struct {
	*Store
}

func (t *txView) WithTx(ctx context.Context, fn func(ctx context.Context, tx core.StorageAdapter) error) error {
	return fn(ctx, t)
}

type snapshot struct {
	nextID    int64
	users     map[int64]*core.User
	sessions  map[string]*core.Session
	questions map[int64]*core.Question
	answers   map[int64]*core.Answer
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		nextID:    s.nextID,
		users:     make(map[int64]*core.User, len(s.users)),
		sessions:  make(map[string]*core.Session, len(s.sessions)),
		questions: make(map[int64]*core.Question, len(s.questions)),
		answers:   make(map[int64]*core.Answer, len(s.answers)),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.sessions {
		snap.sessions[k] = v
	}
	for k, v := range s.questions {
		snap.questions[k] = v
	}
	for k, v := range s.answers {
		snap.answers[k] = v
	}
	return snap
}

// restore is safe because stored records are never mutated in place.
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.users = snap.users
	s.sessions = snap.sessions
	s.questions = snap.questions
	s.answers = snap.answers
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ============================================
// USERS
// ============================================

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return core.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return core.ErrDuplicateEmail
		}
	}

	u.ID = s.id()
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, core.ErrRecordNotFound
}

func (s *Store) GetUserByUUID(ctx context.Context, uuid string) (*core.User, error) {
	return s.findUser(func(u *core.User) bool { return u.UUID == uuid })
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.findUser(func(u *core.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.findUser(func(u *core.User) bool { return u.Email == email })
}

func (s *Store) findUser(match func(*core.User) bool) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, core.ErrRecordNotFound
}

// SetRole changes a user's role. Signup only creates non-admins, so this is
// how operators and tests promote an admin.
func (s *Store) SetRole(ctx context.Context, userID int64, role core.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrRecordNotFound
	}
	updated := *u
	updated.Role = role
	s.users[userID] = &updated
	return nil
}

// ============================================
// SESSIONS
// ============================================

func (s *Store) CreateSession(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = s.id()
	stored := *session
	s.sessions[session.TokenHash] = &stored
	return nil
}

func (s *Store) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[tokenHash]; ok {
		out := *session
		return &out, nil
	}
	return nil, core.ErrSessionNotFound
}

func (s *Store) CloseSession(ctx context.Context, tokenHash string, logoutAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[tokenHash]
	if !ok {
		return core.ErrSessionNotFound
	}
	if session.IsLoggedOut() {
		return core.ErrAlreadySignedOut
	}
	closed := *session
	closed.LogoutAt = &logoutAt
	s.sessions[tokenHash] = &closed
	return nil
}

// ============================================
// QUESTIONS
// ============================================

func (s *Store) CreateQuestion(ctx context.Context, q *core.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	stored := *q
	s.questions[q.ID] = &stored
	return nil
}

func (s *Store) GetQuestionByUUID(ctx context.Context, uuid string) (*core.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.UUID == uuid {
			out := *q
			return &out, nil
		}
	}
	return nil, core.ErrRecordNotFound
}

func (s *Store) ListQuestions(ctx context.Context) ([]*core.Question, error) {
	return s.listQuestions(func(*core.Question) bool { return true }), nil
}

func (s *Store) ListQuestionsByUser(ctx context.Context, userID int64) ([]*core.Question, error) {
	return s.listQuestions(func(q *core.Question) bool { return q.UserID == userID }), nil
}

func (s *Store) listQuestions(match func(*core.Question) bool) []*core.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Question, 0)
	for _, q := range s.questions {
		if match(q) {
			c := *q
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) UpdateQuestion(ctx context.Context, q *core.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return core.ErrRecordNotFound
	}
	stored := *q
	s.questions[q.ID] = &stored
	return nil
}

// DeleteQuestion removes the question and its answers.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return core.ErrRecordNotFound
	}
	delete(s.questions, id)
	for aid, a := range s.answers {
		if a.QuestionID == id {
			delete(s.answers, aid)
		}
	}
	return nil
}

// ============================================
// ANSWERS
// ============================================

func (s *Store) CreateAnswer(ctx context.Context, a *core.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[a.QuestionID]; !ok {
		return core.ErrRecordNotFound
	}
	a.ID = s.id()
	stored := *a
	s.answers[a.ID] = &stored
	return nil
}

func (s *Store) GetAnswerByUUID(ctx context.Context, uuid string) (*core.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.answers {
		if a.UUID == uuid {
			out := *a
			return &out, nil
		}
	}
	return nil, core.ErrRecordNotFound
}

func (s *Store) ListAnswersByQuestion(ctx context.Context, questionID int64) ([]*core.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Answer, 0)
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateAnswer(ctx context.Context, a *core.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[a.ID]; !ok {
		return core.ErrRecordNotFound
	}
	stored := *a
	s.answers[a.ID] = &stored
	return nil
}

func (s *Store) DeleteAnswer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[id]; !ok {
		return core.ErrRecordNotFound
	}
	delete(s.answers, id)
	return nil
}
