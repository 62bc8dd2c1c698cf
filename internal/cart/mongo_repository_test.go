package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (Repository, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestMongoGet_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := repo.Get(context.Background(), "nonexistent@shop.test")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongoSave_InsertThenGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := newCart("user@shop.test")
	cart.addItem(Item{ProductID: 1, ProductName: "keyboard", UnitPrice: 49.99})

	err := repo.Save(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Version)

	stored, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)
	assert.Equal(t, "user@shop.test", stored.Email)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(1), stored.Items[0].ProductID)
	assert.Equal(t, 1, stored.Items[0].Quantity)
	assert.Equal(t, int64(1), stored.Version)
	assert.InDelta(t, 49.99, stored.TotalPrice, 1e-9)
}

func TestMongoSave_UpdateAdvancesVersion(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := newCart("user@shop.test")
	require.NoError(t, repo.Save(ctx, cart))

	cart.addItem(Item{ProductID: 2, ProductName: "mouse", UnitPrice: 19.99})
	require.NoError(t, repo.Save(ctx, cart))
	assert.Equal(t, int64(2), cart.Version)

	stored, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
	assert.Len(t, stored.Items, 1)
}

func TestMongoSave_StaleVersionConflicts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := newCart("user@shop.test")
	require.NoError(t, repo.Save(ctx, cart))

	// two readers pick up version 1
	first, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)

	first.addItem(Item{ProductID: 1, ProductName: "keyboard", UnitPrice: 49.99})
	require.NoError(t, repo.Save(ctx, first))

	second.addItem(Item{ProductID: 2, ProductName: "mouse", UnitPrice: 19.99})
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// the first write is intact
	stored, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(1), stored.Items[0].ProductID)
}

func TestMongoSave_DuplicateInsertConflicts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newCart("user@shop.test")))

	err := repo.Save(ctx, newCart("user@shop.test"))
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMongoSave_TouchesUpdatedAt(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := newCart("user@shop.test")
	require.NoError(t, repo.Save(ctx, cart))
	firstWrite := cart.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	cart.addItem(Item{ProductID: 1, ProductName: "keyboard", UnitPrice: 49.99})
	require.NoError(t, repo.Save(ctx, cart))

	stored, err := repo.Get(ctx, "user@shop.test")
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(firstWrite))
}
