package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

// List returns every task in insertion order.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	tasks := []domain.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// Get returns the task with id.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Task
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

// Insert adds a new task document.
func (r *TaskRepository) Insert(ctx context.Context, t domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update sets the patched fields and returns the updated document. The
// stored updated_at only moves forward, by at least 1ms per update.
func (r *TaskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Task
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, patchPipeline(patch), opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &t, nil
}

// Delete removes the task with id and reports whether it existed.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates necessary indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// patchSet maps the supplied patch fields to their document keys.
func patchSet(p domain.TaskPatch) bson.M {
	set := bson.M{"updated_at": p.UpdatedAt.UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.AssignedTo != nil {
		set["assigned_to"] = *p.AssignedTo
	}
	if p.DueDate != nil {
		set["due_date"] = *p.DueDate
	}
	return set
}

// patchPipeline wraps patchSet in an update pipeline. Values are literals so
// user text starting with "$" is never read as a field path, and updated_at
// is the later of the patch time and the stored value plus 1ms.
func patchPipeline(p domain.TaskPatch) mongo.Pipeline {
	stage := bson.D{}
	for key, value := range patchSet(p) {
		if key == "updated_at" {
			continue
		}
		stage = append(stage, bson.E{Key: key, Value: bson.M{"$literal": value}})
	}
	stage = append(stage, bson.E{Key: "updated_at", Value: bson.M{
		"$max": bson.A{p.UpdatedAt.UTC(), bson.M{"$add": bson.A{"$updated_at", 1}}},
	}})
	return mongo.Pipeline{{{Key: "$set", Value: stage}}}
}

// Seed inserts tasks when the collection is empty.
func (r *TaskRepository) Seed(ctx context.Context, tasks []domain.Task) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	if n > 0 || len(tasks) == 0 {
		return 0, nil
	}
	docs := make([]any, len(tasks))
	for i, t := range tasks {
		docs[i] = t
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("seed tasks: %w", err)
	}
	return len(tasks), nil
}
