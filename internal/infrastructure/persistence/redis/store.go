// Package redis implements todo.Repository on Redis. Each todo is a JSON
// document under its own key; transitions are optimistic WATCH/MULTI/EXEC
// transactions that re-read and retry when another writer got there first.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/document"
)

const (
	// maxRetries bounds optimistic retries for one mutation.
	maxRetries = 50

	// fetchBatch is the MGET batch size used when listing.
	fetchBatch = 200
)

// ErrTooMuchContention is returned when a mutation keeps losing its WATCH race.
var ErrTooMuchContention = errors.New("too much contention on todo key")

// Config holds Redis connection configuration.
type Config struct {
	Addr           string
	Password       string
	DB             int
	KeyPrefix      string        // default: "todo"
	ConnectTimeout time.Duration // default: 2.5s
	SocketTimeout  time.Duration // default: 10s
}

func (c *Config) applyDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "todo"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 2500 * time.Millisecond
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = 10 * time.Second
	}
}

// Store provides the Redis implementation of todo.Repository.
type Store struct {
	client *redis.Client
	prefix string
}

// Compile-time verification that Store implements the repository interface.
var _ todo.Repository = (*Store)(nil)

// NewStoreWithConfig creates a client and verifies the server answers.
func NewStoreWithConfig(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	cfg.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.SocketTimeout,
		WriteTimeout: cfg.SocketTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewStore(client, cfg.KeyPrefix), nil
}

// NewStore wraps an existing client. Keys are namespaced under prefix.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) todoKey(id string) string {
	return s.prefix + ":" + id
}

// indexKey is the sorted set of ids scored by creation time.
func (s *Store) indexKey() string {
	return s.prefix + "s:by_created"
}

// FindAll returns all non-deleted todos, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	return s.Filter(ctx, domain.FilterCriteria{})
}

// FindByID returns a non-deleted todo.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	doc, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	t, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if !t.Status.IsVisible() {
		return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	return t, nil
}

// Create stores a new pending todo and indexes it by creation time.
func (s *Store) Create(ctx context.Context, title string, description *string) (*domain.Todo, error) {
	t, err := document.NewTodo(title, description)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(document.FromTodo(t))
	if err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.todoKey(t.ID), raw, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(t.CreatedAt.UnixMilli()), Member: t.ID})
		return nil
	})
	if err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}
	return t, nil
}

// Update applies changes to a non-deleted todo.
func (s *Store) Update(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error) {
	return s.mutate(ctx, "update todo", id, document.Update(changes))
}

// Delete soft-deletes a non-deleted todo.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "delete todo", id, document.Delete)
	return err
}

// Restore moves a deleted todo back to pending.
func (s *Store) Restore(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "restore todo", id, document.Restore)
	return err
}

// mutate runs m inside WATCH on the todo key. EXEC fails with TxFailedErr if
// the key changed after it was read, in which case the whole read-check-write
// is retried against the new value.
func (s *Store) mutate(ctx context.Context, op, id string, m document.Mutation) (*domain.Todo, error) {
	key := s.todoKey(id)

	for range maxRetries {
		var result *domain.Todo
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := s.load(ctx, tx, id)
			if err != nil {
				return err
			}

			next, t, err := document.Transition(id, current, m)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(next)
			if err != nil {
				return domain.NewDatabaseError(op, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, raw, 0)
				return nil
			})
			if err != nil {
				return err
			}
			result = t
			return nil
		}, key)

		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDatabase):
			return nil, err
		default:
			return nil, domain.NewDatabaseError(op, err)
		}
	}
	return nil, domain.NewDatabaseError(op, ErrTooMuchContention)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load reads the stored document for id through c.
func (s *Store) load(ctx context.Context, c getter, id string) (document.Document, error) {
	raw, err := c.Get(ctx, s.todoKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return document.Document{}, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return document.Document{}, domain.NewDatabaseError("find todo", err)
	}

	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document.Document{}, domain.NewDatabaseError("decode todo", err)
	}
	return doc, nil
}

// Filter walks the creation index newest first and keeps matching todos.
func (s *Store) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}

	todos := make([]*domain.Todo, 0, len(ids))
	for start := 0; start < len(ids); start += fetchBatch {
		end := min(start+fetchBatch, len(ids))
		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, s.todoKey(id))
		}

		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, domain.NewDatabaseError("filter todos", err)
		}

		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue // indexed but missing
			}
			var doc document.Document
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return nil, domain.NewDatabaseError("decode todo", err)
			}
			t, err := decode(doc)
			if err != nil {
				return nil, err
			}
			if criteria.Matches(t) {
				todos = append(todos, t)
			}
		}
	}
	return todos, nil
}

func decode(doc document.Document) (*domain.Todo, error) {
	t, err := doc.ToTodo()
	if err != nil {
		return nil, domain.NewDatabaseError("decode todo", err)
	}
	return t, nil
}
