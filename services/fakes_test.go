package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lborres/quora/adapters/memory"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/pkg/crypto"
)

const testSecret = "services-test-secret-0123456789abcdef"

// FakeCache is a test-only fake implementing core.Cache.
// It stores entries in a map and exposes error fields for behavior injection.
type FakeCache struct {
	cache  map[string]*core.SessionData
	mu     sync.RWMutex
	getErr error
	setErr error
	delErr error
	hits   int
	misses int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{cache: make(map[string]*core.SessionData)}
}

func (f *FakeCache) Get(ctx context.Context, tokenHash string) (*core.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.cache[tokenHash]
	if !ok {
		f.misses++
		return nil, core.ErrCacheNotFound
	}
	f.hits++
	return d, nil
}

func (f *FakeCache) Set(ctx context.Context, tokenHash string, data *core.SessionData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.cache[tokenHash] = data
	return nil
}

func (f *FakeCache) Add(ctx context.Context, tokenHash string, data *core.SessionData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if _, ok := f.cache[tokenHash]; !ok {
		f.cache[tokenHash] = data
	}
	return nil
}

func (f *FakeCache) Delete(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.cache, tokenHash)
	return nil
}

func (f *FakeCache) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]*core.SessionData)
	return nil
}

func (f *FakeCache) Has(tokenHash string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.cache[tokenHash]
	return ok
}

// SignedOut reports whether tokenHash is cached as a closed session.
func (f *FakeCache) SignedOut(tokenHash string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	d, ok := f.cache[tokenHash]
	return ok && d.Session.IsLoggedOut()
}

// fakePublisher records events and optionally fails.
type fakePublisher struct {
	mu     sync.Mutex
	events []core.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) types() []core.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// faultyStore wraps a store and injects errors into selected operations,
// including inside transactions.
type faultyStore struct {
	core.StorageAdapter
	createUserErr    error
	createSessionErr error
	getUserErr       error
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx core.StorageAdapter) error) error {
	return f.StorageAdapter.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		wrapped := *f
		wrapped.StorageAdapter = tx
		return fn(ctx, &wrapped)
	})
}

func (f *faultyStore) CreateUser(ctx context.Context, u *core.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	return f.StorageAdapter.CreateUser(ctx, u)
}

func (f *faultyStore) CreateSession(ctx context.Context, s *core.Session) error {
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	return f.StorageAdapter.CreateSession(ctx, s)
}

func (f *faultyStore) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return f.StorageAdapter.GetUserByUsername(ctx, username)
}

var errStorage = errors.New("storage unavailable")

// clock is a settable time source for session expiry tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func cheapHasher() *crypto.Argon2 {
	return &crypto.Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

type testEnv struct {
	store     *memory.Store
	cache     *FakeCache
	events    *fakePublisher
	clock     *clock
	sessions  *SessionManager
	auth      *AuthService
	questions *QuestionService
	answers   *AnswerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.New(), nil)
}

// newTestEnvWithStore wires the services over db. store is the memory store
// underneath db, used by tests to seed and inspect state.
func newTestEnvWithStore(t *testing.T, store *memory.Store, db core.StorageAdapter) *testEnv {
	t.Helper()
	if db == nil {
		db = store
	}

	codec, err := crypto.NewTokenCodec(testSecret, "")
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}

	env := &testEnv{
		store:  store,
		cache:  NewFakeCache(),
		events: &fakePublisher{},
		clock:  &clock{now: time.Now()},
	}
	env.sessions = NewSessionManager(core.SessionConfig{MaxAge: 8 * time.Hour}, codec, env.cache, nil)
	env.sessions.now = env.clock.Now
	env.auth = NewAuthService(db, cheapHasher(), env.sessions, env.events, nil)
	env.questions = NewQuestionService(db, nil)
	env.answers = NewAnswerService(db, nil)
	return env
}

func signUpInput(username, email, password string) core.SignUpInput {
	return core.SignUpInput{
		FirstName: username,
		LastName:  "Tester",
		Username:  username,
		Email:     email,
		Password:  password,
		Country:   "IN",
	}
}

// register signs up and signs in a user, returning the identity and token.
func (e *testEnv) register(t *testing.T, username, password string) (*core.User, string) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.SignUp(ctx, signUpInput(username, username+"@example.com", password)); err != nil {
		t.Fatalf("SignUp(%s) error = %v", username, err)
	}
	res, err := e.auth.SignIn(ctx, username, password, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("SignIn(%s) error = %v", username, err)
	}
	return res.User, res.Token
}
