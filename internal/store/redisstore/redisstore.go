// Package redisstore shares records between gate processes through Redis.
// Each record is a JSON string key; a sorted set indexes ids by timestamp.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/store"
)

const defaultPrefix = "pbhp"

// Store implements store.Store on a Redis client.
type Store struct {
	client *redis.Client
	prefix string
}

// Open connects to dsn, either a redis:// URL or a bare host:port.
func Open(ctx context.Context, dsn string) (*Store, error) {
	var opts *redis.Options
	if strings.Contains(dsn, "://") {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("store: parse redis url: %w", err)
		}
		opts = parsed
	} else {
		if dsn == "" {
			dsn = "localhost:6379"
		}
		opts = &redis.Options{Addr: dsn}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: ping redis: %w", err)
	}
	return New(client, defaultPrefix), nil
}

// New wraps an existing client. Keys are namespaced under prefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) recordKey(id string) string { return s.prefix + ":record:" + id }
func (s *Store) indexKey() string          { return s.prefix + ":records" }

func (s *Store) Save(ctx context.Context, r model.Record) error {
	if err := store.ValidateID(r.RecordID); err != nil {
		return err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", r.RecordID, err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.recordKey(r.RecordID), body, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(r.Timestamp.UnixMilli()),
			Member: r.RecordID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: save record %s: %w", r.RecordID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Record, error) {
	body, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("store: get record %s: %w", id, err)
	}
	var r model.Record
	if err := json.Unmarshal(body, &r); err != nil {
		return model.Record{}, fmt.Errorf("store: corrupt record %s: %w", id, err)
	}
	return r, nil
}

// List returns records by timestamp. Index entries whose record key has
// gone missing are skipped.
func (s *Store) List(ctx context.Context) ([]model.Record, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	var out []model.Record
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Close() error { return s.client.Close() }

var _ store.Store = (*Store)(nil)
