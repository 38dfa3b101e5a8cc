package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	storefront "github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/activitymap"
	"github.com/goliatone/go-storefront/config"
)

type App struct {
	config *config.BaseConfig
	bunDB  *bun.DB
	repo   storefront.RepositoryManager
	auther *storefront.RouteAuthenticator
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	app := &App{
		config: config.Load(),
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPAuth(ctx, app); err != nil {
		panic(err)
	}

	RegisterRoutes(app)

	app.srv.Serve(app.config.GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	migrations, err := fs.Sub(storefront.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, sqldb, "."); err != nil {
		return err
	}

	app.bunDB = bun.NewDB(sqldb, sqlitedialect.New())

	repo := storefront.NewRepositoryManager(app.bunDB)
	repo.MustValidate()
	app.repo = repo

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	// Item names may contain spaces, so the path segment has to come back
	// decoded before routing.
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv

	return nil
}

func WithHTTPAuth(ctx context.Context, app *App) error {
	cfg := app.config.GetAuth()

	authenticator := storefront.NewAuthenticator(app.repo.Users(), cfg)
	authenticator.WithLogger(app.GetLogger("auth"))
	authenticator.WithActivitySink(loggingActivitySink{logger: app.GetLogger("activity")})

	auther, err := storefront.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		return err
	}
	auther.Logger = app.GetLogger("auth:http")

	app.auther = auther

	return nil
}

func RegisterRoutes(app *App) {
	storefront.RegisterStoreRoutes(
		app.srv.Router(),
		storefront.WithControllerRepo(app.repo),
		storefront.WithControllerAuther(app.auther),
		storefront.WithControllerLogger(app.GetLogger("store")),
	)
}

type loggingActivitySink struct {
	logger glog.Logger
}

func (s loggingActivitySink) Record(ctx context.Context, event storefront.ActivityEvent) error {
	entry := activitymap.Normalize(event)
	s.logger.Info("activity",
		"actor_id", entry.ActorID,
		"verb", entry.Verb,
		"object_type", entry.ObjectType,
		"object_id", entry.ObjectID,
		"channel", entry.Channel,
	)
	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
