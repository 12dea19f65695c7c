package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gojenga/gojenga/shared/models"
	sharedredis "github.com/gojenga/gojenga/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accountViewKeyPrefix    = "account:view:"
	accountHistoryKeyPrefix = "account:history:"

	accountViewTTL = 30 * time.Second
	historyMaxLen  = 100
)

// AccountReadRepository serves account views from Redis, falling back to the
// ledger on a miss, and owns the projected per-account history lists.
// Balance mutations never read through it.
type AccountReadRepository struct {
	ledger *LedgerRepository
	redis  *goredis.Client
	cache  *sharedredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(ledger *LedgerRepository, redisClient *goredis.Client, logger *zap.Logger) *AccountReadRepository {
	return &AccountReadRepository{
		ledger: ledger,
		redis:  redisClient,
		cache:  sharedredis.NewViewCache[models.AccountView](redisClient, accountViewTTL, logger),
	}
}

func viewKey(table, name string) string {
	return accountViewKeyPrefix + table + ":" + name
}

func historyKey(table, name string) string {
	return accountHistoryKeyPrefix + table + ":" + name
}

// GetByName returns the cached view, or reads the ledger and warms the cache.
// A fill racing an invalidation is dropped.
func (r *AccountReadRepository) GetByName(ctx context.Context, name string, isTest bool) (*models.AccountView, error) {
	key := viewKey(r.ledger.Table(isTest), name)
	if view, ok := r.cache.Get(ctx, key); ok {
		return view, nil
	}

	version := r.cache.Version(ctx, key)
	account, err := r.ledger.GetBalance(ctx, name, isTest)
	if err != nil {
		return nil, err
	}
	view := models.AccountToView(account)
	r.cache.Fill(ctx, key, version, view)
	return view, nil
}

// InvalidateAccountView drops the cached view after a write.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, name string, isTest bool) {
	r.cache.Delete(ctx, viewKey(r.ledger.Table(isTest), name))
}

// AppendHistory pushes an entry to the front of the account's capped history.
func (r *AccountReadRepository) AppendHistory(ctx context.Context, table, name string, entry models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	key := historyKey(table, name)
	_, err = r.redis.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, historyMaxLen-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history for %s: %w", name, err)
	}
	return nil
}

// ListHistory returns up to limit entries, newest first.
func (r *AccountReadRepository) ListHistory(ctx context.Context, name string, isTest bool, limit int64) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > historyMaxLen {
		limit = historyMaxLen
	}
	raw, err := r.redis.LRange(ctx, historyKey(r.ledger.Table(isTest), name), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", name, err)
	}
	entries := make([]models.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteHistory removes the projected history of a deleted account.
func (r *AccountReadRepository) DeleteHistory(ctx context.Context, table, name string) error {
	if err := r.redis.Del(ctx, historyKey(table, name)).Err(); err != nil {
		return fmt.Errorf("failed to delete history for %s: %w", name, err)
	}
	return nil
}
