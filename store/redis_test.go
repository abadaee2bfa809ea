package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*AccountStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewAccountStore(client, "ac"), mr
}

func testAccount(id, username, email string) *Account {
	now := time.Now().UTC().Truncate(time.Second)
	return &Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndFind(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	account := testAccount("id-1", "alice", "alice@example.com")
	require.NoError(t, s.Create(ctx, account))

	byID, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byEmail.ID)

	byUsername, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byUsername.ID)
}

func TestFindMissingReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReportsCollidingField(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	var dup *DuplicateFieldError

	err := s.Create(ctx, testAccount("id-2", "alice", "other@example.com"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	err = s.Create(ctx, testAccount("id-3", "bob", "alice@example.com"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	// The failed creates must not have written partial state.
	_, err = s.FindByID(ctx, "id-2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByID(ctx, "id-3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateConcurrentDuplicatesReportEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	start := make(chan struct{})
	results := make(chan error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results <- s.Create(ctx, testAccount(
				fmt.Sprintf("id-%d", i),
				fmt.Sprintf("user%d", i),
				"shared@example.com",
			))
		}(i)
	}
	close(start)
	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		if err == nil {
			created++
			continue
		}
		var dup *DuplicateFieldError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "email", dup.Field)
		conflicts++
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflicts)
}

func TestCreateUniqueIndexIsCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	var dup *DuplicateFieldError
	err := s.Create(ctx, testAccount("id-2", "Alice", "x@example.com"))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
}

func TestAppendSessionEvictsOldestAtCap(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	for i := 0; i < 5; i++ {
		_, evicted, err := s.AppendSession(ctx, "id-1", RefreshSession{
			ID:        "sess-" + string(rune('a'+i)),
			CreatedAt: time.Now().UTC(),
		}, 5)
		require.NoError(t, err)
		assert.False(t, evicted)
	}

	updated, evicted, err := s.AppendSession(ctx, "id-1", RefreshSession{
		ID:        "sess-new",
		CreatedAt: time.Now().UTC(),
	}, 5)
	require.NoError(t, err)
	assert.True(t, evicted)
	require.Len(t, updated.Sessions, 5)
	assert.Equal(t, "sess-b", updated.Sessions[0].ID)
	assert.Equal(t, "sess-new", updated.Sessions[4].ID)
	assert.EqualValues(t, 6, updated.LoginCount)
}

func TestRotateSessionIsSingleUse(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))
	_, _, err := s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-old"}, 5)
	require.NoError(t, err)

	updated, err := s.RotateSession(ctx, "id-1", "sess-old", RefreshSession{ID: "sess-next"})
	require.NoError(t, err)
	require.Len(t, updated.Sessions, 1)
	assert.Equal(t, "sess-next", updated.Sessions[0].ID)

	_, err = s.RotateSession(ctx, "id-1", "sess-old", RefreshSession{ID: "sess-replay"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRotateSessionMovesSuccessorToTail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))
	_, _, err := s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-a"}, 2)
	require.NoError(t, err)
	_, _, err = s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-b"}, 2)
	require.NoError(t, err)

	// Rotating the oldest slot makes it the newest.
	updated, err := s.RotateSession(ctx, "id-1", "sess-a", RefreshSession{ID: "sess-c"})
	require.NoError(t, err)
	require.Len(t, updated.Sessions, 2)
	assert.Equal(t, "sess-b", updated.Sessions[0].ID)
	assert.Equal(t, "sess-c", updated.Sessions[1].ID)

	// A login at the cap now evicts sess-b, not the freshly rotated device.
	updated, evicted, err := s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-d"}, 2)
	require.NoError(t, err)
	assert.True(t, evicted)
	require.Len(t, updated.Sessions, 2)
	assert.Equal(t, "sess-c", updated.Sessions[0].ID)
	assert.Equal(t, "sess-d", updated.Sessions[1].ID)
}

func TestRemoveSessionIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))
	_, _, err := s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-a"}, 5)
	require.NoError(t, err)

	require.NoError(t, s.RemoveSession(ctx, "id-1", "sess-a"))
	require.NoError(t, s.RemoveSession(ctx, "id-1", "sess-a"))

	account, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Empty(t, account.Sessions)
}

func TestSetResetSecretAndLookup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	secret := ResetSecret{
		Digest:    "digest-1",
		Kind:      ResetKindToken,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	require.NoError(t, s.SetResetSecret(ctx, "id-1", secret))

	account, err := s.FindByResetDigest(ctx, "digest-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", account.ID)
}

func TestSetResetSecretReplacesPendingChallenge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	expires := time.Now().UTC().Add(10 * time.Minute)
	require.NoError(t, s.SetResetSecret(ctx, "id-1", ResetSecret{Digest: "digest-1", Kind: ResetKindToken, ExpiresAt: expires}))
	require.NoError(t, s.SetResetSecret(ctx, "id-1", ResetSecret{Digest: "digest-2", Kind: ResetKindToken, ExpiresAt: expires}))

	_, err := s.FindByResetDigest(ctx, "digest-1")
	assert.ErrorIs(t, err, ErrNotFound)

	account, err := s.FindByResetDigest(ctx, "digest-2")
	require.NoError(t, err)
	assert.Equal(t, "id-1", account.ID)
}

func TestResetCredentialsClearsSessionsAndChallenge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))
	_, _, err := s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-a"}, 5)
	require.NoError(t, err)
	_, _, err = s.AppendSession(ctx, "id-1", RefreshSession{ID: "sess-b"}, 5)
	require.NoError(t, err)

	require.NoError(t, s.SetResetSecret(ctx, "id-1", ResetSecret{
		Digest:    "digest-1",
		Kind:      ResetKindToken,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}))

	updated, err := s.ResetCredentials(ctx, "id-1", "new-hash")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)
	assert.Equal(t, 1, updated.TokenVersion)
	assert.Empty(t, updated.Sessions)
	assert.Nil(t, updated.ResetSecret)

	// The consumed digest no longer resolves.
	_, err = s.FindByResetDigest(ctx, "digest-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetEmailVerifiedIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))

	first, err := s.SetEmailVerified(ctx, "id-1")
	require.NoError(t, err)
	assert.True(t, first.EmailVerified)

	second, err := s.SetEmailVerified(ctx, "id-1")
	require.NoError(t, err)
	assert.True(t, second.EmailVerified)
}

func TestListAccounts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testAccount("id-1", "alice", "alice@example.com")))
	require.NoError(t, s.Create(ctx, testAccount("id-2", "bob", "bob@example.com")))
	require.NoError(t, s.Create(ctx, testAccount("id-3", "carol", "carol@example.com")))

	all, err := s.ListAccounts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	seen := map[string]bool{}
	for _, account := range all {
		seen[account.Username] = true
	}
	assert.True(t, seen["alice"] && seen["bob"] && seen["carol"])

	limited, err := s.ListAccounts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpdateMissingAccountReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.AppendSession(ctx, "ghost", RefreshSession{ID: "sess"}, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.RemoveSession(ctx, "ghost", "sess")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnavailableBackendWrapsSentinel(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	mr.Close()

	err := s.Create(ctx, testAccount("id-1", "alice", "alice@example.com"))
	assert.True(t, errors.Is(err, ErrUnavailable))
}
