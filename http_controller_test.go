package storefront

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturedResponse struct {
	status int
	body   any
}

// newJSONRecorder mocks out ctx.JSON and records what the handler rendered.
func newJSONRecorder(ctx *router.MockContext) *capturedResponse {
	rec := &capturedResponse{}
	ctx.On("JSON", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		rec.status = args.Int(0)
		rec.body = args.Get(1)
	})
	return rec
}

func newTestController(t *testing.T) (*StoreController, RepositoryManager) {
	t.Helper()

	repo := NewRepositoryManager(newTestDB(t))
	auther, err := NewHTTPAuthenticator(NewAuthenticator(repo.Users(), testConfig{}), testConfig{})
	require.NoError(t, err)

	controller := NewStoreController(
		WithControllerRepo(repo),
		WithControllerAuther(auther),
	)
	return controller, repo
}

func TestRegistrationCreate(t *testing.T) {
	controller, repo := newTestController(t)

	register := func(username, password string) *capturedResponse {
		ctx := router.NewMockContext()
		rec := newJSONRecorder(ctx)
		ctx.On("Bind", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			payload := args.Get(0).(*RegistrationCreatePayload)
			payload.Username = username
			payload.Password = password
		})
		ctx.On("Context").Return(context.Background())

		require.NoError(t, controller.RegistrationCreate(ctx))
		return rec
	}

	rec := register("alice", "wonderland1")
	assert.Equal(t, router.StatusCreated, rec.status)
	assert.Equal(t, map[string]string{"message": "User created successfully."}, rec.body)

	user, err := repo.Users().FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NoError(t, ComparePasswordAndHash("wonderland1", user.PasswordHash))

	t.Run("duplicate username", func(t *testing.T) {
		rec := register("alice", "something-else")
		assert.Equal(t, router.StatusBadRequest, rec.status)
		assert.Equal(t, map[string]string{"message": "A user with that username already exists."}, rec.body)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := register("", "")
		assert.Equal(t, router.StatusBadRequest, rec.status)
	})
}

func TestAuthCreate(t *testing.T) {
	controller, repo := newTestController(t)

	hash, err := HashPassword("wonderland1")
	require.NoError(t, err)
	_, err = repo.Users().Register(context.Background(), &User{Username: "alice", PasswordHash: hash})
	require.NoError(t, err)

	auth := func(username, password string) *capturedResponse {
		ctx := router.NewMockContext()
		rec := newJSONRecorder(ctx)
		ctx.On("Bind", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			payload := args.Get(0).(*AuthCreatePayload)
			payload.Username = username
			payload.Password = password
		})
		ctx.On("Context").Return(context.Background())

		require.NoError(t, controller.AuthCreate(ctx))
		return rec
	}

	t.Run("valid credentials", func(t *testing.T) {
		rec := auth("alice", "wonderland1")
		assert.Equal(t, router.StatusOK, rec.status)

		body, ok := rec.body.(map[string]string)
		require.True(t, ok)
		assert.NotEmpty(t, body["access_token"])
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		wrongPassword := auth("alice", "nope")
		unknownUser := auth("ghost", "nope")

		assert.Equal(t, router.StatusUnauthorized, wrongPassword.status)
		assert.Equal(t, wrongPassword.status, unknownUser.status)
		assert.Equal(t, wrongPassword.body, unknownUser.body)
	})
}

type failingLoginAuther struct {
	err error
}

func (a failingLoginAuther) Login(ctx router.Context, payload LoginPayload) (string, error) {
	return "", a.err
}

func (a failingLoginAuther) ProtectedRoute() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return next
	}
}

func TestAuthCreateStoreFailure(t *testing.T) {
	controller := NewStoreController(
		WithControllerRepo(NewRepositoryManager(newTestDB(t))),
		WithControllerAuther(failingLoginAuther{
			err: goerrors.New("database connection reset", goerrors.CategoryInternal),
		}),
	)

	ctx := router.NewMockContext()
	rec := newJSONRecorder(ctx)
	ctx.On("Bind", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*AuthCreatePayload)
		payload.Username = "alice"
		payload.Password = "wonderland1"
	})
	ctx.On("Context").Return(context.Background())

	require.NoError(t, controller.AuthCreate(ctx))
	assert.Equal(t, router.StatusInternalServerError, rec.status)

	body, ok := rec.body.(map[string]string)
	require.True(t, ok)
	assert.NotEqual(t, "Invalid credentials", body["message"])
}

func TestItemHandlers(t *testing.T) {
	controller, repo := newTestController(t)

	itemRequest := func(name string, price *float64, handler router.HandlerFunc) *capturedResponse {
		ctx := router.NewMockContext()
		rec := newJSONRecorder(ctx)
		ctx.ParamsM["name"] = name
		ctx.On("Context").Return(context.Background())
		if price != nil {
			ctx.On("Bind", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
				payload := args.Get(0).(*ItemPayload)
				payload.Price = price
			})
		} else {
			ctx.On("Bind", mock.Anything).Return(nil)
		}

		require.NoError(t, handler(ctx))
		return rec
	}

	price := func(v float64) *float64 { return &v }

	t.Run("create", func(t *testing.T) {
		rec := itemRequest("chair", price(15.99), controller.ItemCreate)
		assert.Equal(t, router.StatusCreated, rec.status)

		item, ok := rec.body.(*Item)
		require.True(t, ok)
		assert.Equal(t, "chair", item.Name)
		assert.Equal(t, 15.99, item.Price)
	})

	t.Run("create duplicate", func(t *testing.T) {
		rec := itemRequest("chair", price(20), controller.ItemCreate)
		assert.Equal(t, router.StatusBadRequest, rec.status)
		assert.Equal(t, map[string]string{
			"message": "An item with name 'chair' already exists.",
		}, rec.body)
	})

	t.Run("create without price", func(t *testing.T) {
		rec := itemRequest("stool", nil, controller.ItemCreate)
		assert.Equal(t, router.StatusBadRequest, rec.status)
	})

	t.Run("show", func(t *testing.T) {
		rec := itemRequest("chair", nil, controller.ItemShow)
		assert.Equal(t, router.StatusOK, rec.status)

		body, ok := rec.body.(map[string]any)
		require.True(t, ok)
		item, ok := body["item"].(*Item)
		require.True(t, ok)
		assert.Equal(t, "chair", item.Name)
	})

	t.Run("show missing", func(t *testing.T) {
		rec := itemRequest("ghost", nil, controller.ItemShow)
		assert.Equal(t, router.StatusNotFound, rec.status)
		assert.Equal(t, map[string]string{"message": "Item not found"}, rec.body)
	})

	t.Run("update upserts", func(t *testing.T) {
		rec := itemRequest("bench", price(30), controller.ItemUpdate)
		assert.Equal(t, router.StatusOK, rec.status)

		rec = itemRequest("bench", price(25), controller.ItemUpdate)
		assert.Equal(t, router.StatusOK, rec.status)

		item, err := repo.Items().FindByName(context.Background(), "bench")
		require.NoError(t, err)
		assert.Equal(t, float64(25), item.Price)
	})

	t.Run("index", func(t *testing.T) {
		rec := itemRequest("", nil, controller.ItemIndex)
		assert.Equal(t, router.StatusOK, rec.status)

		body, ok := rec.body.(map[string]any)
		require.True(t, ok)
		items, ok := body["items"].([]*Item)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})

	t.Run("delete twice", func(t *testing.T) {
		rec := itemRequest("bench", nil, controller.ItemDelete)
		assert.Equal(t, router.StatusOK, rec.status)
		assert.Equal(t, map[string]string{"message": "Item deleted"}, rec.body)

		rec = itemRequest("bench", nil, controller.ItemDelete)
		assert.Equal(t, router.StatusOK, rec.status)
	})
}
