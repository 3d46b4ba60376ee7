package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/richtext"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps records in Redis, one string value per field. Keys are
// namespaced with a prefix.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	engine *richtext.Engine
}

var _ Store = &RedisStore{}

// NewRedisStore creates a store on top of a Redis client. Record keys are
// prefixed with prefix, which defaults to "richtext:field:".
// Loaded fields operate with engine, which may be nil.
func NewRedisStore(rdb redis.UniversalClient, prefix string, engine *richtext.Engine) *RedisStore {
	if prefix == "" {
		prefix = "richtext:field:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, engine: engine}
}

func (rs *RedisStore) key(k string) string {
	return rs.prefix + k
}

// Save is part of interface Store.
func (rs *RedisStore) Save(ctx context.Context, key string, f *richtext.Field) error {
	data, err := encode(f)
	if err != nil {
		return err
	}
	return rs.rdb.Set(ctx, rs.key(key), data, 0).Err()
}

// Load is part of interface Store.
func (rs *RedisStore) Load(ctx context.Context, key string) (*richtext.Field, error) {
	data, err := rs.rdb.Get(ctx, rs.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	} else if err != nil {
		return nil, err
	}
	return decode(key, data, rs.engine)
}

// Delete is part of interface Store.
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := rs.rdb.Del(ctx, rs.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

// Keys is part of interface Store. Keys are returned without prefix, in
// sorted order.
func (rs *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := rs.rdb.Scan(ctx, 0, globEscape(rs.prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), rs.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// globEscape quotes the characters of s which SCAN MATCH patterns treat
// specially.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '*', '?', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
