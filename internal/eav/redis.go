package eav

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// RedisStorage keeps triples in Redis sets so several processes can share
// one EAV store.
//
// Layout, for prefix P:
//
//	P all        every triple
//	P e:<entity> triples with that entity
//	P a:<attr>   triples with that attribute
//	P v:<value>  triples with that value
//
// Members are the JSON encoding of the triple. A constrained fetch
// intersects the index sets of its constraints with SINTER.
type RedisStorage struct {
	client *backend.Client
	prefix string
}

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithPrefix sets the key prefix (default "nucleus:eav:").
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStorage) {
		s.prefix = prefix
	}
}

// NewRedisStorage connects to the Redis server at address.
func NewRedisStorage(address, password string, db int, opts ...RedisOption) *RedisStorage {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStorageFromClient(rdb, opts...)
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *backend.Client, opts ...RedisOption) *RedisStorage {
	s := &RedisStorage{
		client: client,
		prefix: "nucleus:eav:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) allKey() string            { return s.prefix + "all" }
func (s *RedisStorage) entityKey(e string) string { return s.prefix + "e:" + e }
func (s *RedisStorage) attrKey(a string) string   { return s.prefix + "a:" + a }
func (s *RedisStorage) valueKey(v string) string  { return s.prefix + "v:" + v }

// Add implements Storage. The four set writes go out in one MULTI/EXEC.
func (s *RedisStorage) Add(ctx context.Context, t EntityAttributeValue) error {
	if err := t.Validate(); err != nil {
		return err
	}
	member, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal triple: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.allKey(), member)
	pipe.SAdd(ctx, s.entityKey(string(t.Entity)), member)
	pipe.SAdd(ctx, s.attrKey(t.Attribute), member)
	pipe.SAdd(ctx, s.valueKey(string(t.Value)), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add triple to redis: %w", err)
	}
	return nil
}

// Fetch implements Storage.
func (s *RedisStorage) Fetch(ctx context.Context, q Query) (Set, error) {
	var keys []string
	if q.Entity != nil {
		keys = append(keys, s.entityKey(string(*q.Entity)))
	}
	if q.Attribute != nil {
		keys = append(keys, s.attrKey(*q.Attribute))
	}
	if q.Value != nil {
		keys = append(keys, s.valueKey(string(*q.Value)))
	}

	var members []string
	var err error
	if len(keys) == 0 {
		members, err = s.client.SMembers(ctx, s.allKey()).Result()
	} else {
		members, err = s.client.SInter(ctx, keys...).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("fetch triples from redis: %w", err)
	}

	out := make(Set, len(members))
	for _, m := range members {
		var t EntityAttributeValue
		if err := json.Unmarshal([]byte(m), &t); err != nil {
			return nil, fmt.Errorf("decode triple %q: %w", m, err)
		}
		out.Add(t)
	}
	return out, nil
}

// Clone implements Storage. The clone shares the client and key space.
func (s *RedisStorage) Clone() Storage {
	return &RedisStorage{client: s.client, prefix: s.prefix}
}

// Close closes the underlying client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
