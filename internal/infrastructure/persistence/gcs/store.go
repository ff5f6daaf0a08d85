// Package gcs implements todo.Repository on Cloud Storage. Each todo is one
// JSON object; writes are guarded by generation preconditions so concurrent
// transitions on the same object cannot both commit.
package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/document"
)

const (
	// maxRetries bounds generation-mismatch retries for one mutation.
	maxRetries = 20

	// Limit concurrency to avoid overwhelming GCS and local resources.
	maxConcurrency = 20
)

// ErrTooMuchContention is returned when a mutation keeps losing the generation race.
var ErrTooMuchContention = errors.New("too much contention on todo object")

// Config holds Cloud Storage configuration.
type Config struct {
	Bucket           string
	Prefix           string        // object name prefix (default: "todos")
	Endpoint         string        // optional, e.g. an emulator; disables authentication
	OperationTimeout time.Duration // default: 10s
}

// Store provides the Cloud Storage implementation of todo.Repository.
type Store struct {
	client           *storage.Client
	bucket           string
	prefix           string
	operationTimeout time.Duration
}

// Compile-time verification that Store implements the repository interface.
var _ todo.Repository = (*Store)(nil)

// NewStore creates a new GCS store.
// Without an endpoint it assumes Application Default Credentials.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "todos"
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{
		client:           client,
		bucket:           cfg.Bucket,
		prefix:           strings.TrimSuffix(cfg.Prefix, "/"),
		operationTimeout: cfg.OperationTimeout,
	}, nil
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Bucket(s.bucket).Attrs(ctx)
	return err
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectName(id string) string {
	return path.Join(s.prefix, id+".json")
}

func (s *Store) object(id string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.objectName(id))
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// FindAll returns all non-deleted todos, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	return s.Filter(ctx, domain.FilterCriteria{})
}

// FindByID returns a non-deleted todo.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, _, err := s.read(ctx, s.object(id), id)
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

// Create writes a new object, failing if one with the same name exists.
func (s *Store) Create(ctx context.Context, title string, description *string) (*domain.Todo, error) {
	t, err := document.NewTodo(title, description)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	obj := s.object(t.ID).If(storage.Conditions{DoesNotExist: true})
	if err := write(ctx, obj, document.FromTodo(t)); err != nil {
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

// mutate reads the object with its generation, applies m and writes back
// only if the generation is unchanged. A 412 means another writer won and
// the cycle starts over.
func (s *Store) mutate(ctx context.Context, op, id string, m document.Mutation) (*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	handle := s.object(id)
	for range maxRetries {
		current, generation, err := s.read(ctx, handle, id)
		if err != nil {
			return nil, err
		}

		next, t, err := document.Transition(id, current, m)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			return nil, domain.NewDatabaseError(op, err)
		}

		err = write(ctx, handle.If(storage.Conditions{GenerationMatch: generation}), next)
		if err == nil {
			return t, nil
		}
		if !isPreconditionFailed(err) {
			return nil, domain.NewDatabaseError(op, err)
		}
	}
	return nil, domain.NewDatabaseError(op, ErrTooMuchContention)
}

// read fetches and decodes an object, returning its generation.
func (s *Store) read(ctx context.Context, obj *storage.ObjectHandle, id string) (document.Document, int64, error) {
	r, err := obj.NewReader(ctx)
	if err != nil {
		// Use errors.Is to handle wrapped errors from GCS client
		if errors.Is(err, storage.ErrObjectNotExist) {
			return document.Document{}, 0, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return document.Document{}, 0, domain.NewDatabaseError("find todo", err)
	}
	defer r.Close()

	var doc document.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return document.Document{}, 0, domain.NewDatabaseError("decode todo", err)
	}
	return doc, r.Attrs.Generation, nil
}

func write(ctx context.Context, obj *storage.ObjectHandle, doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal todo: %w", err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	return w.Close()
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}

// Filter scans the prefix, loads objects in parallel and keeps the matches.
func (s *Store) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix + "/"})

	// First, collect all object names
	var objectNames []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, domain.NewDatabaseError("filter todos", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			objectNames = append(objectNames, attrs.Name)
		}
	}

	// Then, fetch objects in parallel
	var (
		mu       sync.Mutex
		todos    = make([]*domain.Todo, 0, len(objectNames))
		firstErr error
		wg       sync.WaitGroup
	)
	semaphore := make(chan struct{}, maxConcurrency)

	for _, name := range objectNames {
		wg.Add(1)
		semaphore <- struct{}{} // Acquire token

		go func(objectName string) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release token

			id := strings.TrimSuffix(path.Base(objectName), ".json")
			doc, _, err := s.read(ctx, s.client.Bucket(s.bucket).Object(objectName), id)
			var t *domain.Todo
			if err == nil {
				t, err = decode(doc)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// removed between list and read
			case err != nil:
				if firstErr == nil {
					firstErr = err
				}
			case criteria.Matches(t):
				todos = append(todos, t)
			}
		}(name)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	domain.SortNewestFirst(todos)
	return todos, nil
}

func decode(doc document.Document) (*domain.Todo, error) {
	t, err := doc.ToTodo()
	if err != nil {
		return nil, domain.NewDatabaseError("decode todo", err)
	}
	return t, nil
}
