package storefront

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Items provides persistence for catalog items, keyed by name.
type Items interface {
	FindByName(ctx context.Context, name string) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	Create(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Upsert(ctx context.Context, item *Item) (*Item, error)
	UpsertTx(ctx context.Context, tx bun.Tx, item *Item) (*Item, error)
	Delete(ctx context.Context, name string) error
}

// ItemsRepository implements Items using Bun.
type ItemsRepository struct {
	db bun.IDB
}

// NewItemsRepository creates a new repository.
func NewItemsRepository(db bun.IDB) *ItemsRepository {
	return &ItemsRepository{db: db}
}

// FindByName implements Items.
func (r *ItemsRepository) FindByName(ctx context.Context, name string) (*Item, error) {
	item := new(Item)
	err := r.db.NewSelect().
		Model(item).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query item by name")
	}
	return item, nil
}

// List returns every item ordered by name. An empty catalog yields an empty
// slice, never nil.
func (r *ItemsRepository) List(ctx context.Context) ([]*Item, error) {
	items := make([]*Item, 0)
	err := r.db.NewSelect().
		Model(&items).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list items")
	}
	return items, nil
}

// Create inserts a new item. A name collision surfaces as ErrItemExists.
func (r *ItemsRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	now := time.Now()
	if item.CreatedAt == nil {
		item.CreatedAt = &now
	}
	item.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(item).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrItemExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert item")
	}

	return item, nil
}

// Update sets the price of an existing item.
func (r *ItemsRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	now := time.Now()
	item.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(item).
		Column("price", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update item")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrItemNotFound
	}

	return item, nil
}

// Upsert creates the item or updates its price when it already exists.
func (r *ItemsRepository) Upsert(ctx context.Context, item *Item) (*Item, error) {
	return upsertItem(ctx, r.db, item)
}

// UpsertTx upserts an item inside an existing transaction.
func (r *ItemsRepository) UpsertTx(ctx context.Context, tx bun.Tx, item *Item) (*Item, error) {
	return upsertItem(ctx, tx, item)
}

func upsertItem(ctx context.Context, db bun.IDB, item *Item) (*Item, error) {
	now := time.Now()
	if item.CreatedAt == nil {
		item.CreatedAt = &now
	}
	item.UpdatedAt = &now

	_, err := db.NewInsert().
		Model(item).
		On("CONFLICT (name) DO UPDATE").
		Set("price = EXCLUDED.price").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert item")
	}

	return item, nil
}

// Delete removes an item by name. Deleting an absent item is not an error.
func (r *ItemsRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.NewDelete().
		Model((*Item)(nil)).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete item")
	}
	return nil
}
