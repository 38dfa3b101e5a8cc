package storefront

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.NewCreateTable().Model((*User)(nil)).IfNotExists().Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewCreateTable().Model((*Item)(nil)).IfNotExists().Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewDelete().Model((*User)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewDelete().Model((*Item)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)

	return db
}

func TestUsersRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsersRepository(db)
	ctx := context.Background()

	hash, err := HashPassword("wonderland1")
	require.NoError(t, err)

	alice, err := repo.Register(ctx, &User{Username: "alice", PasswordHash: hash})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)

	t.Run("find by username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrIdentityNotFound)

		_, err = repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Register(ctx, &User{Username: "alice", PasswordHash: hash})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestItemsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemsRepository(db)
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	chair, err := repo.Create(ctx, &Item{Name: "chair", Price: 15.99})
	require.NoError(t, err)
	assert.Equal(t, "chair", chair.Name)

	t.Run("create duplicate", func(t *testing.T) {
		_, err := repo.Create(ctx, &Item{Name: "chair", Price: 20})
		assert.ErrorIs(t, err, ErrItemExists)
	})

	t.Run("names with spaces", func(t *testing.T) {
		_, err := repo.Create(ctx, &Item{Name: "garden table", Price: 42.50})
		require.NoError(t, err)

		found, err := repo.FindByName(ctx, "garden table")
		require.NoError(t, err)
		assert.Equal(t, 42.50, found.Price)
	})

	t.Run("update existing", func(t *testing.T) {
		updated, err := repo.Update(ctx, &Item{Name: "chair", Price: 17.99})
		require.NoError(t, err)
		assert.Equal(t, 17.99, updated.Price)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := repo.Update(ctx, &Item{Name: "ghost", Price: 1})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("upsert creates then updates", func(t *testing.T) {
		lamp, err := repo.Upsert(ctx, &Item{Name: "lamp", Price: 9.99})
		require.NoError(t, err)
		assert.Equal(t, 9.99, lamp.Price)

		lamp, err = repo.Upsert(ctx, &Item{Name: "lamp", Price: 12.49})
		require.NoError(t, err)
		assert.Equal(t, 12.49, lamp.Price)

		found, err := repo.FindByName(ctx, "lamp")
		require.NoError(t, err)
		assert.Equal(t, 12.49, found.Price)
	})

	t.Run("list is ordered", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "chair", items[0].Name)
		assert.Equal(t, "garden table", items[1].Name)
		assert.Equal(t, "lamp", items[2].Name)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "lamp"))

		_, err := repo.FindByName(ctx, "lamp")
		assert.ErrorIs(t, err, ErrItemNotFound)

		require.NoError(t, repo.Delete(ctx, "lamp"))
	})
}

func TestRepositoryManagerValidate(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	require.NoError(t, repo.Validate())
	require.NotNil(t, repo.Users())
	require.NotNil(t, repo.Items())
}

func TestRegisterUserHandler(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	ctx := context.Background()

	handler := NewRegisterUserHandler(repo)

	err := handler.Execute(ctx, RegisterUserMessage{Username: "alice", Password: "wonderland1"})
	require.NoError(t, err)

	user, err := repo.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "wonderland1", user.PasswordHash)
	assert.NoError(t, ComparePasswordAndHash("wonderland1", user.PasswordHash))

	t.Run("duplicate username", func(t *testing.T) {
		err := handler.Execute(ctx, RegisterUserMessage{Username: "alice", Password: "other"})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
	})

	t.Run("empty password", func(t *testing.T) {
		err := handler.Execute(ctx, RegisterUserMessage{Username: "bob", Password: ""})
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		err := handler.Execute(cancelled, RegisterUserMessage{Username: "carol", Password: "pw"})
		require.Error(t, err)
	})
}

func TestUpsertItemHandler(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	ctx := context.Background()

	handler := NewUpsertItemHandler(repo)

	item, err := handler.Execute(ctx, UpsertItemMessage{Name: "desk", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, float64(120), item.Price)

	item, err = handler.Execute(ctx, UpsertItemMessage{Name: "desk", Price: 95.50})
	require.NoError(t, err)
	assert.Equal(t, 95.50, item.Price)

	found, err := repo.Items().FindByName(ctx, "desk")
	require.NoError(t, err)
	assert.Equal(t, 95.50, found.Price)
}

// Full credential lifecycle over the real persistence layer: register,
// authenticate, issue a token, resolve its subject, then delete the user
// and watch resolution fail.
func TestCredentialLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	ctx := context.Background()

	require.NoError(t, NewRegisterUserHandler(repo).Execute(ctx, RegisterUserMessage{
		Username: "alice",
		Password: "wonderland1",
	}))

	auther := NewAuthenticator(repo.Users(), testConfig{})

	token, err := auther.Login(ctx, "alice", "wonderland1")
	require.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)

	user, err := auther.ResolveSubject(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = db.NewDelete().Model((*User)(nil)).Where("username = ?", "alice").Exec(ctx)
	require.NoError(t, err)

	_, err = auther.ResolveSubject(ctx, claims)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}
