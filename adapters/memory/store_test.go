package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/quora/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, username, email string) *core.User {
	t.Helper()
	u := &core.User{UUID: username + "-uuid", Username: username, Email: email, Role: core.RoleNonAdmin}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// Requirement: username and email are unique at creation
func TestStore_CreateUser_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "alice", "alice@example.com")

	err := s.CreateUser(ctx, &core.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateUsername)

	err = s.CreateUser(ctx, &core.User{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}

func TestStore_UserLookups(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice", "alice@example.com")
	require.NotZero(t, alice.ID)

	byID, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byUUID, err := s.GetUserByUUID(ctx, "alice-uuid")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byUUID.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)

	// Returned records are copies
	byID.Username = "mallory"
	again, _ := s.GetUserByID(ctx, alice.ID)
	assert.Equal(t, "alice", again.Username)
}

func TestStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice", "alice@example.com")

	session := &core.Session{UUID: "s1", UserID: alice.ID, TokenHash: "h1", LoginAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSessionByHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, got.IsLoggedOut())

	require.NoError(t, s.CloseSession(ctx, "h1", time.Now()))

	got, err = s.GetSessionByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.IsLoggedOut())
	first := *got.LogoutAt

	assert.ErrorIs(t, s.CloseSession(ctx, "h1", time.Now().Add(time.Minute)), core.ErrAlreadySignedOut)
	got, err = s.GetSessionByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, first.Equal(*got.LogoutAt))

	_, err = s.GetSessionByHash(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.ErrorIs(t, s.CloseSession(ctx, "missing", time.Now()), core.ErrSessionNotFound)
}

// Requirement: a failed transaction leaves no trace
func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		require.NoError(t, tx.CreateUser(ctx, &core.User{UUID: "u", Username: "bob", Email: "bob@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestStore_WithTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner core.StorageAdapter) error {
			return inner.CreateUser(ctx, &core.User{UUID: "u", Username: "bob", Email: "bob@example.com"})
		})
	})
	require.NoError(t, err)

	_, err = s.GetUserByUsername(ctx, "bob")
	assert.NoError(t, err)
}

func TestStore_DeleteQuestionCascadesAnswers(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice", "alice@example.com")

	q := &core.Question{UUID: "q1", Content: "Why?", UserID: alice.ID}
	require.NoError(t, s.CreateQuestion(ctx, q))
	a := &core.Answer{UUID: "a1", Content: "Because", UserID: alice.ID, QuestionID: q.ID}
	require.NoError(t, s.CreateAnswer(ctx, a))

	require.NoError(t, s.DeleteQuestion(ctx, q.ID))

	_, err := s.GetAnswerByUUID(ctx, "a1")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
	assert.ErrorIs(t, s.DeleteQuestion(ctx, q.ID), core.ErrRecordNotFound)
}

func TestStore_ListsAreOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice", "alice@example.com")
	bob := seedUser(t, s, "bob", "bob@example.com")

	for _, c := range []struct {
		uuid  string
		owner int64
	}{{"q1", alice.ID}, {"q2", bob.ID}, {"q3", alice.ID}} {
		require.NoError(t, s.CreateQuestion(ctx, &core.Question{UUID: c.uuid, Content: c.uuid, UserID: c.owner}))
	}

	all, err := s.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"q1", "q2", "q3"}, []string{all[0].UUID, all[1].UUID, all[2].UUID})

	mine, err := s.ListQuestionsByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := s.ListAnswersByQuestion(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SetRole(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice", "alice@example.com")

	require.NoError(t, s.SetRole(ctx, alice.ID, core.RoleAdmin))

	got, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	assert.ErrorIs(t, s.SetRole(ctx, 999, core.RoleAdmin), core.ErrRecordNotFound)
}
