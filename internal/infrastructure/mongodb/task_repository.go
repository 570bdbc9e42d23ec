package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/task-service/internal/domain"
)

// TaskRepository is the MongoDB implementation of domain.TaskRepository
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	repo := &TaskRepository{collection: db.Collection("warehouse_tasks")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TaskRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "taskType", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sourceWarehouse", Value: 1}, {Key: "status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a task, inserting or updating by task ID
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"taskId": task.TaskID}
	update := bson.M{"$set": task}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByID retrieves a task by its task ID. A missing task is (nil, nil).
func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	err := r.collection.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &task, err
}

// FindByStatus retrieves tasks with a specific status, newest first
func (r *TaskRepository) FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"status": status}, opts)
}

// FindByType retrieves tasks of a specific type, newest first
func (r *TaskRepository) FindByType(ctx context.Context, taskType domain.TaskType) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"taskType": taskType}, opts)
}

// FindByAssignee retrieves tasks assigned to a user, newest first
func (r *TaskRepository) FindByAssignee(ctx context.Context, user string) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"assignedTo": user}, opts)
}

// FindOpen retrieves non-terminal tasks, highest priority first and oldest
// within the same priority
func (r *TaskRepository) FindOpen(ctx context.Context, warehouse string, limit int) ([]*domain.Task, error) {
	filter := bson.M{"status": bson.M{"$in": []domain.TaskStatus{
		domain.TaskStatusPending,
		domain.TaskStatusAssigned,
		domain.TaskStatusInProgress,
	}}}
	if warehouse != "" {
		filter["$or"] = []bson.M{
			{"sourceWarehouse": warehouse},
			{"targetWarehouse": warehouse},
		}
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Task, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.Task
	err = cursor.All(ctx, &tasks)
	return tasks, err
}
