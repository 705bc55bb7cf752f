package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amoria/internal/domain"
	"amoria/internal/store/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	// One connection, or each pool connection would see its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, HashedPassword: "x", Status: domain.StatusActive}
	require.NoError(t, sqlite.NewUserRepo(db).Create(context.Background(), u))
	return u
}

func TestMessageRepoSeenLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewMessageRepo(db)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	msg := &domain.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "ciphertext"}
	require.NoError(t, repo.Create(ctx, msg))
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Seen)

	got, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.SenderID)
	assert.False(t, got.Seen)
	assert.Nil(t, got.SeenAt)

	firstAt := time.Now().UTC()
	transitioned, err := repo.MarkSeen(ctx, msg.ID, firstAt)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// The second mark is a no-op and must not move seen_at.
	transitioned, err = repo.MarkSeen(ctx, msg.ID, firstAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, transitioned)

	got, err = repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, got.Seen)
	require.NotNil(t, got.SeenAt)
	assert.WithinDuration(t, firstAt, *got.SeenAt, time.Second)
}

func TestMessageRepoListBetween(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewMessageRepo(db)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	carol := createUser(t, db, "carol@example.com")

	m1 := &domain.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "one"}
	m2 := &domain.Message{SenderID: bob.ID, ReceiverID: alice.ID, Body: "two"}
	m3 := &domain.Message{SenderID: alice.ID, ReceiverID: carol.ID, Body: "other pair"}
	for _, m := range []*domain.Message{m1, m2, m3} {
		require.NoError(t, repo.Create(ctx, m))
	}

	msgs, err := repo.ListBetween(ctx, alice.ID, bob.ID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// Newest first, both directions of the pair, nothing from other pairs.
	assert.Equal(t, m2.ID, msgs[0].ID)
	assert.Equal(t, m1.ID, msgs[1].ID)

	// An upper bound before the second message leaves only the first.
	msgs, err = repo.ListBetween(ctx, alice.ID, bob.ID, m2.CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m1.ID, msgs[0].ID)

	msgs, err = repo.ListBetween(ctx, alice.ID, bob.ID, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m2.ID, msgs[0].ID)
}

func TestMessageRepoUnseenCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewMessageRepo(db)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	carol := createUser(t, db, "carol@example.com")

	for range 2 {
		require.NoError(t, repo.Create(ctx, &domain.Message{SenderID: bob.ID, ReceiverID: alice.ID, Body: "b"}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Message{SenderID: carol.ID, ReceiverID: alice.ID, Body: "c"}))
	// Traffic in the other direction never counts against alice.
	require.NoError(t, repo.Create(ctx, &domain.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "a"}))

	counts, err := repo.CountUnseenBySender(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{bob.ID: 2, carol.ID: 1}, counts)

	require.NoError(t, repo.MarkAllSeenFrom(ctx, bob.ID, alice.ID, time.Now().UTC()))

	counts, err = repo.CountUnseenBySender(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{carol.ID: 1}, counts)
}

func TestBlockRepoExistsEitherDirection(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewBlockRepo(db)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	exists, err := repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &domain.Block{BlockerID: alice.ID, BlockedID: bob.ID}))

	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		exists, err := repo.Exists(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, exists)
	}

	ids, err := repo.ListBlockedUserIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID}, ids)

	require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))
	exists, err = repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a block that is not there reports NotFound.
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID, bob.ID), domain.ErrNotFound)
}

func TestMatchRepoPair(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewMatchRepo(db)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	match := &domain.Match{InitiatorID: alice.ID, ReceiverID: bob.ID}
	require.NoError(t, repo.Create(ctx, match))
	assert.NotZero(t, match.ID)

	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		exists, err := repo.ExistsForPair(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, exists)
	}

	matches, err := repo.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, match.ID, matches[0].ID)

	require.NoError(t, repo.DeleteForPair(ctx, bob.ID, alice.ID))
	exists, err := repo.ExistsForPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
