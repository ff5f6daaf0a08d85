package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/document"
)

// Store provides the MongoDB implementation of todo.Repository.
type Store struct {
	client           *mongo.Client
	coll             *mongo.Collection
	operationTimeout time.Duration
}

// Compile-time verification that Store implements the repository interface.
var _ todo.Repository = (*Store)(nil)

// NewStore wraps a connected client and collection.
func NewStore(client *mongo.Client, coll *mongo.Collection, operationTimeout time.Duration) *Store {
	return &Store{client: client, coll: coll, operationTimeout: operationTimeout}
}

// Collection returns the backing collection.
func (s *Store) Collection() *mongo.Collection {
	return s.coll
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.operationTimeout)
}

func statusIn(statuses []domain.Status) bson.M {
	return bson.M{"$in": domain.StatusStrings(statuses)}
}

// FindAll returns all non-deleted todos, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	return s.Filter(ctx, domain.FilterCriteria{})
}

// FindByID returns a non-deleted todo.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc document.Document
	err := s.coll.FindOne(ctx, bson.M{"id": id, "status": statusIn(domain.VisibleStatuses())}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return nil, domain.NewDatabaseError("find todo", err)
	}
	return toTodo(doc)
}

// Create inserts a new pending todo.
func (s *Store) Create(ctx context.Context, title string, description *string) (*domain.Todo, error) {
	t, err := document.NewTodo(title, description)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, document.FromTodo(t)); err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}
	return t, nil
}

// Update applies changes with a single findAndModify guarded by the status precondition.
func (s *Store) Update(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error) {
	set := bson.M{}
	unset := bson.M{}

	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = string(*changes.Status)
	}
	if msg, replace := changes.AppliedMessage(); replace {
		if msg != nil {
			set["completionMessage"] = *msg
		} else {
			unset["completionMessage"] = ""
		}
	}

	update := bson.M{"$max": bson.M{"updatedAt": document.Now()}}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc document.Document
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": statusIn(domain.UpdatableStatuses())},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return nil, domain.NewDatabaseError("update todo", err)
	}
	return toTodo(doc)
}

// Delete soft-deletes a non-deleted todo.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.transition(ctx, "delete todo", id, domain.StatusDeleted, domain.DeletableStatuses())
}

// Restore moves a deleted todo back to pending.
func (s *Store) Restore(ctx context.Context, id string) error {
	return s.transition(ctx, "restore todo", id, domain.StatusPending, domain.RestorableStatuses())
}

func (s *Store) transition(ctx context.Context, op, id string, to domain.Status, from []domain.Status) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": statusIn(from)},
		bson.M{
			"$set":   bson.M{"status": string(to)},
			"$unset": bson.M{"completionMessage": ""},
			"$max":   bson.M{"updatedAt": document.Now()},
		},
	)
	if err != nil {
		return domain.NewDatabaseError(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	return nil
}

// Filter returns todos matching criteria, newest first.
func (s *Store) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	filter := bson.M{"status": statusIn(criteria.Statuses())}
	if q, ok := criteria.TextQuery(); ok {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}))
	if err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}

	var docs []document.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}

	todos := make([]*domain.Todo, 0, len(docs))
	for _, doc := range docs {
		t, err := toTodo(doc)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func toTodo(doc document.Document) (*domain.Todo, error) {
	t, err := doc.ToTodo()
	if err != nil {
		return nil, domain.NewDatabaseError("decode todo", err)
	}
	return t, nil
}
