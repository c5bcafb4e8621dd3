package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-user-auth"
)

func TestUsers_InsertAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo()

	alice, err := repo.Users().Insert(ctx, &auth.User{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	bob, err := repo.Users().Insert(ctx, &auth.User{Username: "bob", PasswordHash: "h", Role: auth.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, 1, alice.ID)
	assert.Equal(t, auth.RoleUser, alice.Role)
	assert.Equal(t, 2, bob.ID)
	assert.Equal(t, auth.RoleAdmin, bob.Role)

	doc := store.stored()
	assert.Len(t, doc.Users, 2)
	assert.Equal(t, 3, doc.NextID)
	assert.Equal(t, 2, store.saves)
}

func TestUsers_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()

	for _, name := range []string{"a", "b", "c"} {
		_, err := repo.Users().Insert(ctx, &auth.User{Username: name, PasswordHash: "h"})
		require.NoError(t, err)
	}

	removed, err := repo.Users().Delete(ctx, "3")
	require.NoError(t, err)
	require.True(t, removed)

	next, err := repo.Users().Insert(ctx, &auth.User{Username: "d", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, 4, next.ID)
}

func TestUsers_LoadedCounterStaysAhead(t *testing.T) {
	repo, _ := newRepo(auth.User{ID: 9, Username: "old", PasswordHash: "h"})

	u, err := repo.Users().Insert(context.Background(), &auth.User{Username: "new", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, 10, u.ID)
}

func TestUsers_GetByID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: "h"})

	u, err := repo.Users().GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	for _, id := range []string{"2", "0", "abc", ""} {
		_, err := repo.Users().GetByID(ctx, id)
		assert.True(t, auth.IsUserNotFound(err), "id %q", id)
	}
}

func TestUsers_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: "h"})

	u, err := repo.Users().GetByID(ctx, "1")
	require.NoError(t, err)
	u.Username = "mallory"

	list, err := repo.Users().List(ctx)
	require.NoError(t, err)
	list[0].Username = "eve"

	again, err := repo.Users().GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestUsers_GetByUsername(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: "h"})

	u, err := repo.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	_, err = repo.Users().GetByUsername(ctx, "ALICE")
	assert.True(t, auth.IsUserNotFound(err))
}

func TestUsers_UpdateReplacesRecord(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(auth.User{ID: 1, Username: "alice", Email: "a@example.com", PasswordHash: "h", Role: auth.RoleUser})

	u, err := repo.Users().Update(ctx, "1", &auth.User{ID: 99, Username: "alicia", PasswordHash: "h2"})
	require.NoError(t, err)

	assert.Equal(t, 1, u.ID, "id comes from the path")
	assert.Equal(t, "alicia", u.Username)
	assert.Empty(t, u.Email, "omitted fields are not carried over")

	doc := store.stored()
	require.Len(t, doc.Users, 1)
	assert.Equal(t, *u, doc.Users[0])
}

func TestUsers_UpdateMissingDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo()

	_, err := repo.Users().Update(ctx, "5", &auth.User{Username: "ghost", PasswordHash: "h"})
	assert.True(t, auth.IsUserNotFound(err))

	list, err := repo.Users().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, store.saves)
}

func TestUsers_Delete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: "h"})

	removed, err := repo.Users().Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.Users().GetByID(ctx, "1")
	assert.True(t, auth.IsUserNotFound(err))

	removed, err = repo.Users().Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUsers_StorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(auth.User{ID: 1, Username: "alice", PasswordHash: "h"})
	store.setFailSave(true)

	_, err := repo.Users().Insert(ctx, &auth.User{Username: "bob", PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, auth.IsStorageError(err))
	assert.False(t, auth.IsUserNotFound(err))

	_, err = repo.Users().Update(ctx, "1", &auth.User{Username: "alicia", PasswordHash: "h"})
	assert.True(t, auth.IsStorageError(err))

	removed, err := repo.Users().Delete(ctx, "1")
	assert.False(t, removed)
	assert.True(t, auth.IsStorageError(err), "storage failures are not reported as not found")

	snapshot := repo.Snapshot()
	require.Len(t, snapshot.Users, 1)
	assert.Equal(t, "alice", snapshot.Users[0].Username)
	assert.Equal(t, 2, snapshot.NextID)

	store.setFailSave(false)
	bob, err := repo.Users().Insert(ctx, &auth.User{Username: "bob", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, 2, bob.ID)
}

func TestUsers_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.Users().Insert(ctx, &auth.User{Username: string(rune('a' + i)), PasswordHash: "h"})
			if err == nil {
				ids <- u.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n+1, store.stored().NextID)
}

func TestRepositoryManager(t *testing.T) {
	repo, _ := newRepo()
	assert.NoError(t, repo.Validate())
	assert.NotPanics(t, repo.MustValidate)

	empty := auth.NewRepositoryManager(context.Background(), nil, auth.WithManagerLogger(nopLogger{}))
	assert.Error(t, empty.Validate())
	assert.Panics(t, empty.MustValidate)

	err := empty.RunInTx(context.Background(), func(context.Context, *auth.Collection) error { return nil })
	assert.True(t, auth.IsStorageError(err))
}

func TestRepositoryManager_CancelledContext(t *testing.T) {
	repo, store := newRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Users().Insert(ctx, &auth.User{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.saves)

	_, err = repo.Users().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
