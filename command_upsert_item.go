package storefront

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type UpsertItemMessage struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (e UpsertItemMessage) Type() string { return "item.upsert" }

// UpsertItemHandler creates the named item or replaces its price.
type UpsertItemHandler struct {
	repo RepositoryManager
}

func NewUpsertItemHandler(repo RepositoryManager) *UpsertItemHandler {
	return &UpsertItemHandler{repo: repo}
}

func (h *UpsertItemHandler) Execute(ctx context.Context, event UpsertItemMessage) (*Item, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during item upsert",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpsertItemHandler) execute(ctx context.Context, event UpsertItemMessage) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	item := &Item{
		Name:  event.Name,
		Price: event.Price,
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		item, err = h.repo.Items().UpsertTx(ctx, tx, item)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "item upsert transaction failed")
	}

	return item, nil
}
