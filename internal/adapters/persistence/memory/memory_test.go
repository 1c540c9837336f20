package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()

	ok, err := repo.CreateIfAbsent(ctx, &models.Account{ID: "1", DisplayName: "alice", Role: "admin"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CreateIfAbsent(ctx, &models.Account{ID: "2", DisplayName: "alice", Role: "sales"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByDisplayName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "admin", got.Role)

	_, err = repo.GetByDisplayName(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContacts_EnsureExistsKeepsFirstSeen(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := s.Contacts().EnsureExists(ctx, &models.Contact{ExternalID: "+1555", FirstSeenAt: first})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Contacts().EnsureExists(ctx, &models.Contact{ExternalID: "+1555", FirstSeenAt: first.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, created)

	c, ok := s.Contact("+1555")
	require.True(t, ok)
	assert.Equal(t, first, c.FirstSeenAt)
}

func TestContacts_ConcurrentEnsureExists(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.Contacts().EnsureExists(ctx, &models.Contact{ExternalID: "+1555", FirstSeenAt: time.Now()})
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	n, err := s.Contacts().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMessages_ListByContactOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Messages()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, &models.MessageLog{ContactKey: "a", Body: "later", Direction: domain.DirectionInbound, CreatedAt: t0.Add(time.Second)}))
	require.NoError(t, repo.Append(ctx, &models.MessageLog{ContactKey: "a", Body: "hi", Direction: domain.DirectionInbound, CreatedAt: t0}))
	require.NoError(t, repo.Append(ctx, &models.MessageLog{ContactKey: "a", Body: "hello", Direction: domain.DirectionOutbound, CreatedAt: t0}))
	require.NoError(t, repo.Append(ctx, &models.MessageLog{ContactKey: "b", Body: "other", Direction: domain.DirectionInbound, CreatedAt: t0}))

	got, err := repo.ListByContact(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "hi", got[0].Body)
	assert.Equal(t, "hello", got[1].Body)
	assert.Equal(t, "later", got[2].Body)
}

func TestProducts_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Products()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &models.Product{Name: name}))
	}

	got, total, err := repo.List(ctx, 1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Accounts().Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessages_RejectsUnknownDirection(t *testing.T) {
	repo := NewStore().Messages()
	err := repo.Append(context.Background(), &models.MessageLog{ContactKey: "a", Direction: "sideways"})
	assert.Error(t, err)
}

func TestProducts_ListNegativeRange(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Products()
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "a", Quantity: 1, Price: 1}))

	got, total, err := repo.List(ctx, -5, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, got, 1)

	got, _, err = repo.List(ctx, 0, -1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
