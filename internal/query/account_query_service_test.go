package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gojenga/gojenga/internal/repository"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAccountQueries(t *testing.T) (*AccountQueryService, *repository.LedgerRepository, *repository.AccountReadRepository) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ledger := repository.NewLedgerRepository(store.NewMemoryStore(), "ledger")
	readRepo := repository.NewAccountReadRepository(ledger, client, zap.NewNop())
	return NewAccountQueryService(readRepo), ledger, readRepo
}

func TestGetAccount(t *testing.T) {
	svc, ledger, _ := setupAccountQueries(t)
	ctx := context.Background()
	_, err := ledger.CreateAccount(ctx, "kovax", decimal.RequireFromString("235.99"), true)
	require.NoError(t, err)

	view, err := svc.GetAccount(ctx, cqrs.GetAccountQuery{Name: "KOVAX", IsTest: true})
	require.NoError(t, err)
	assert.Equal(t, &models.AccountView{Name: "kovax", Balance: "235.99"}, view)

	_, err = svc.GetAccount(ctx, cqrs.GetAccountQuery{Name: "kovax"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.GetAccount(ctx, cqrs.GetAccountQuery{Name: "kov@x"})
	assert.ErrorIs(t, err, utils.ErrIllegalCharacters)
}

func TestListHistory(t *testing.T) {
	svc, _, readRepo := setupAccountQueries(t)
	ctx := context.Background()
	require.NoError(t, readRepo.AppendHistory(ctx, "ledger", "kovax", models.HistoryEntry{
		ID: "1", Type: "deposit", Change: "5.00", CreatedAt: time.Now().UTC(),
	}))

	entries, err := svc.ListHistory(ctx, cqrs.ListHistoryQuery{Name: "Kovax", Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "deposit", entries[0].Type)
}
