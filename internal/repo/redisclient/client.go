package redisclient

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/geocoder89/learnhub/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "learnhub:"
	// optimistic update attempts before giving up on a contended record
	maxWatchRetries = 10
)

// Client is a record store backend keeping one redis hash per kind,
// field = record id, value = JSON document. A kind with a unique field
// also gets an index hash, field value -> record id.
type Client struct {
	redisdb *redis.Client
	unique  map[string]string
}

// insertScript claims the id and, when KEYS[2] is given, the unique value
// in one step. Returns 0 on success, 1 if the id exists, 2 if the value is
// held by another record.
var insertScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 1
end
if #KEYS > 1 and redis.call('HSETNX', KEYS[2], ARGV[3], ARGV[1]) == 0 then
	return 2
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 0
`)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb, unique: store.UniqueFields}
}

func key(kind string) string {
	return keyPrefix + kind
}

func uniqueKey(kind, field string) string {
	return keyPrefix + kind + ":by_" + field
}

func (c *Client) Insert(ctx context.Context, kind, id string, doc []byte) error {
	keys := []string{key(kind)}
	args := []any{id, doc, ""}

	if field, ok := c.unique[kind]; ok {
		if value, ok := store.FieldValue(doc, field); ok {
			keys = append(keys, uniqueKey(kind, field))
			args[2] = value
		}
	}

	res, err := insertScript.Run(ctx, c.redisdb, keys, args...).Int()
	if err != nil {
		return store.Unavailable(kind+".insert", err)
	}

	switch res {
	case 1:
		return store.ErrIDTaken
	case 2:
		return store.ErrConflict
	}
	return nil
}

func (c *Client) Fetch(ctx context.Context, kind, id string) ([]byte, error) {
	doc, err := c.redisdb.HGet(ctx, key(kind), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, store.Unavailable(kind+".get", err)
	}

	return doc, nil
}

func (c *Client) All(ctx context.Context, kind string) ([][]byte, error) {
	return c.scan(ctx, kind, func([]byte) bool { return true })
}

// Match scans the whole hash; record counts in this system stay small.
func (c *Client) Match(ctx context.Context, kind, field, value string) ([][]byte, error) {
	return c.scan(ctx, kind, func(doc []byte) bool {
		return store.MatchField(doc, field, value)
	})
}

// Modify uses WATCH/MULTI on the kind's hash and retries when another
// writer touched it between read and write.
func (c *Client) Modify(ctx context.Context, kind, id string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	k := key(kind)

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		var (
			next      []byte
			domainErr error
		)

		err := c.redisdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGet(ctx, k, id).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					domainErr = store.ErrNotFound
					return domainErr
				}
				return err
			}

			next, domainErr = fn(current)
			if domainErr != nil {
				return domainErr
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, k, id, next)
				return nil
			})
			return err
		}, k)

		switch {
		case domainErr != nil:
			return nil, domainErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return nil, store.Unavailable(kind+".update", err)
		}

		return next, nil
	}

	return nil, store.Unavailable(kind+".update", redis.TxFailedErr)
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// this closes the client

func (c *Client) Close() error {
	return c.redisdb.Close()
}

func (c *Client) scan(ctx context.Context, kind string, keep func([]byte) bool) ([][]byte, error) {
	entries, err := c.redisdb.HGetAll(ctx, key(kind)).Result()
	if err != nil {
		return nil, store.Unavailable(kind+".list", err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		doc := []byte(entries[id])
		if keep(doc) {
			out = append(out, doc)
		}
	}

	return out, nil
}
