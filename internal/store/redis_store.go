package store

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// updateExistingScript sets one hash field only when the hash exists.
var updateExistingScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// RedisStore keeps every row as a hash under "<table>:<key>".
type RedisStore struct {
	client *goredis.Client
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func rowKey(table, key string) string {
	return fmt.Sprintf("%s:%s", table, key)
}

func (s *RedisStore) Get(ctx context.Context, table, key string) (Item, error) {
	fields, err := s.client.HGetAll(ctx, rowKey(table, key)).Result()
	if err != nil {
		return nil, wrap("get", table, key, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	item := Item(fields)
	item[KeyField] = key
	return item, nil
}

// Put replaces the whole row in a single MULTI/EXEC so stale attributes do not survive.
func (s *RedisStore) Put(ctx context.Context, table string, item Item) (Outcome, error) {
	key := item.Key()
	if key == "" {
		return OutcomeNotApplied, wrap("put", table, key, errMissingKey)
	}
	values := make(map[string]any, len(item))
	for k, v := range item {
		values[k] = v
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, rowKey(table, key))
		pipe.HSet(ctx, rowKey(table, key), values)
		return nil
	})
	if err != nil {
		return OutcomeNotApplied, wrap("put", table, key, err)
	}
	return OutcomeInserted, nil
}

func (s *RedisStore) Delete(ctx context.Context, table, key string) (Outcome, error) {
	if err := s.client.Del(ctx, rowKey(table, key)).Err(); err != nil {
		return OutcomeNotApplied, wrap("delete", table, key, err)
	}
	return OutcomeDeleted, nil
}

func (s *RedisStore) UpdateField(ctx context.Context, table, key, field, value string) (Outcome, error) {
	n, err := updateExistingScript.Run(ctx, s.client, []string{rowKey(table, key)}, field, value).Int()
	if err != nil {
		return OutcomeNotApplied, wrap("update", table, key, err)
	}
	if n == 0 {
		return OutcomeNotApplied, nil
	}
	return OutcomeUpdated, nil
}
