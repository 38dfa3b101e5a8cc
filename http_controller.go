package storefront

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator captures what the controller needs from the route
// authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (string, error)
	ProtectedRoute() router.MiddlewareFunc
}

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// RegisterStoreRoutes mounts the full API surface on the given router.
// Only the item detail read is protected; writes stay open to preserve the
// historical contract of this API.
func RegisterStoreRoutes(app RouteRegistrar, opts ...StoreControllerOption) *StoreController {
	controller := NewStoreController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Auth, controller.AuthCreate)

	app.Get(controller.Routes.Item, controller.ItemShow, controller.Auther.ProtectedRoute())
	app.Post(controller.Routes.Item, controller.ItemCreate)
	app.Put(controller.Routes.Item, controller.ItemUpdate)
	app.Delete(controller.Routes.Item, controller.ItemDelete)

	app.Get(controller.Routes.Items, controller.ItemIndex)

	return controller
}

type StoreControllerRoutes struct {
	Auth     string
	Register string
	Item     string
	Items    string
}

type StoreController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *StoreControllerRoutes
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type StoreControllerOption func(*StoreController) *StoreController

func NewStoreController(opts ...StoreControllerOption) *StoreController {
	c := &StoreController{
		Logger: defLogger{},
		Routes: &StoreControllerRoutes{
			Auth:     "/auth",
			Register: "/register",
			Item:     "/item/:name",
			Items:    "/items",
		},
	}

	c.ErrorHandler = c.defaultErrHandler

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in store controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in store controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) StoreControllerOption {
	return func(c *StoreController) *StoreController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) StoreControllerOption {
	return func(c *StoreController) *StoreController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) StoreControllerOption {
	return func(c *StoreController) *StoreController {
		c.Auther = auther
		return c
	}
}

// RegistrationCreatePayload is the registration body
type RegistrationCreatePayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

func (a *StoreController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": "Could not parse request body.",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": err.Error(),
		})
	}

	if a.Debug {
		a.Logger.Debug("registration payload", "payload", print.MaybePrettyJSON(payload))
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), RegisterUserMessage{
		Username: payload.Username,
		Password: payload.Password,
	}); err != nil {
		if IsConflictError(err) {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"message": "A user with that username already exists.",
			})
		}
		a.Logger.Error("register user execute: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]string{
		"message": "User created successfully.",
	})
}

// AuthCreatePayload is the credential body
type AuthCreatePayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r AuthCreatePayload) GetIdentifier() string {
	return r.Username
}

// GetPassword will return the password
func (r AuthCreatePayload) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r AuthCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthCreate exchanges credentials for a signed token. Unknown usernames and
// wrong passwords produce the same response.
func (a *StoreController) AuthCreate(ctx router.Context) error {
	payload := new(AuthCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("auth parse payload: ", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": "Could not parse request body.",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": err.Error(),
		})
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		if IsAuthError(err) {
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"message": "Invalid credentials",
			})
		}
		a.Logger.Error("auth login: ", "username", payload.Username, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"access_token": token,
	})
}

// ItemPayload is the item write body. Price is a pointer so an absent field
// is distinguishable from an explicit zero.
type ItemPayload struct {
	Price *float64 `form:"price" json:"price"`
}

// Validate will validate the payload
func (r ItemPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Price, validation.NotNil),
	)
}

func (a *StoreController) ItemShow(ctx router.Context) error {
	name := ctx.Param("name")

	item, err := a.Repo.Items().FindByName(ctx.Context(), name)
	if err != nil {
		if IsNotFoundError(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"message": "Item not found",
			})
		}
		a.Logger.Error("item show: ", "name", name, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"item": item,
	})
}

func (a *StoreController) ItemCreate(ctx router.Context) error {
	name := ctx.Param("name")

	payload := new(ItemPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": "Could not parse request body.",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": err.Error(),
		})
	}

	item, err := a.Repo.Items().Create(ctx.Context(), &Item{
		Name:  name,
		Price: *payload.Price,
	})
	if err != nil {
		if IsConflictError(err) {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"message": "An item with name '" + name + "' already exists.",
			})
		}
		a.Logger.Error("item create: ", "name", name, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, item)
}

// ItemUpdate has upsert semantics: missing items are created, existing ones
// get the new price.
func (a *StoreController) ItemUpdate(ctx router.Context) error {
	name := ctx.Param("name")

	payload := new(ItemPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": "Could not parse request body.",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"message": err.Error(),
		})
	}

	upsertItem := NewUpsertItemHandler(a.Repo)
	item, err := upsertItem.Execute(ctx.Context(), UpsertItemMessage{
		Name:  name,
		Price: *payload.Price,
	})
	if err != nil {
		a.Logger.Error("item update: ", "name", name, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, item)
}

// ItemDelete removes the named item. Deleting twice reports success both
// times.
func (a *StoreController) ItemDelete(ctx router.Context) error {
	name := ctx.Param("name")

	if err := a.Repo.Items().Delete(ctx.Context(), name); err != nil {
		a.Logger.Error("item delete: ", "name", name, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Item deleted",
	})
}

func (a *StoreController) ItemIndex(ctx router.Context) error {
	items, err := a.Repo.Items().List(ctx.Context())
	if err != nil {
		a.Logger.Error("item index: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"items": items,
	})
}

// defaultErrHandler maps classified errors to status codes for failures the
// handlers do not render themselves.
func (a *StoreController) defaultErrHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := router.StatusInternalServerError
	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		status = router.StatusUnauthorized
	case goerrors.CategoryNotFound:
		status = router.StatusNotFound
	case goerrors.CategoryConflict, goerrors.CategoryValidation, goerrors.CategoryBadInput:
		status = router.StatusBadRequest
	}

	return ctx.JSON(status, map[string]string{
		"message": richErr.Message,
	})
}
