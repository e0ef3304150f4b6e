package tasks

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/todoapi/pkg/mongo"
)

// TasksCollection is the collection holding task documents.
const TasksCollection = "tasks"

type taskDocument struct {
	ID             bson.ObjectID `bson:"_id"`
	UserID         bson.ObjectID `bson:"userId"`
	Title          string        `bson:"title"`
	Description    string        `bson:"description,omitempty"`
	Completed      bool          `bson:"completed"`
	DueDate        *time.Time    `bson:"dueDate,omitempty"`
	ReminderSentAt *time.Time    `bson:"reminderSentAt,omitempty"`
	Attempts       int           `bson:"reminderAttempts,omitempty"`
	RetryAt        *time.Time    `bson:"reminderRetryAt,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

func (d taskDocument) task() Task {
	return Task{
		ID:             d.ID.Hex(),
		UserID:         d.UserID.Hex(),
		Title:          d.Title,
		Description:    d.Description,
		Completed:      d.Completed,
		DueDate:        utc(d.DueDate),
		ReminderSentAt: utc(d.ReminderSentAt),

		ReminderAttempts: d.Attempts,
		ReminderRetryAt:  utc(d.RetryAt),

		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// MongoStorage implements Storage on a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		coll: db.Collection(TasksCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the owner index used by every query and the due
// date index used by the reminder.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
		{
			Keys:    bson.D{{Key: "completed", Value: 1}, {Key: "dueDate", Value: 1}},
			Options: options.Index().SetName("completed_due"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) CreateTask(ctx context.Context, task *Task) error {
	owner, err := bson.ObjectIDFromHex(task.UserID)
	if err != nil {
		return ErrNoOwner
	}

	now := s.now()
	doc := taskDocument{
		ID:          bson.NewObjectID(),
		UserID:      owner,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		DueDate:     task.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	task.ID = doc.ID.Hex()
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (s *MongoStorage) GetTask(ctx context.Context, userID, id string) (*Task, error) {
	filter, ok := ownedFilter(userID, id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.task()
	return &t, nil
}

func (s *MongoStorage) ListTasks(ctx context.Context, userID string, f ListFilter) ([]Task, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return []Task{}, nil
	}

	filter := bson.M{"userId": owner}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (s *MongoStorage) UpdateTask(ctx context.Context, userID, id string, upd TaskUpdate) (*Task, error) {
	filter, ok := ownedFilter(userID, id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	err := s.coll.FindOneAndUpdate(ctx, filter,
		updateDocument(upd, s.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.task()
	return &t, nil
}

func (s *MongoStorage) DeleteTask(ctx context.Context, userID, id string) error {
	filter, ok := ownedFilter(userID, id)
	if !ok {
		return ErrTaskNotFound
	}

	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *MongoStorage) DueTasks(ctx context.Context, from, until time.Time, limit int) ([]Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "dueDate", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, dueFilter(from, until), opts)
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (s *MongoStorage) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	return s.updateReminder(ctx, id, bson.M{"$set": bson.M{"reminderSentAt": at}})
}

func (s *MongoStorage) MarkReminderFailed(ctx context.Context, id string, retryAt time.Time) error {
	return s.updateReminder(ctx, id, bson.M{
		"$inc": bson.M{"reminderAttempts": 1},
		"$set": bson.M{"reminderRetryAt": retryAt},
	})
}

func (s *MongoStorage) updateReminder(ctx context.Context, id string, update bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrTaskNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// dueFilter matches incomplete, unreminded tasks due in [from, until] that
// are not waiting for a retry.
func dueFilter(from, until time.Time) bson.M {
	return bson.M{
		"completed":      false,
		"dueDate":        bson.M{"$gte": from, "$lte": until},
		"reminderSentAt": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"reminderRetryAt": bson.M{"$exists": false}},
			bson.M{"reminderRetryAt": bson.M{"$lte": from}},
		},
	}
}

func decodeTasks(ctx context.Context, cur *mongo.Cursor) ([]Task, error) {
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.task())
	}
	return out, nil
}

// ownedFilter matches task id owned by userID. It fails for malformed IDs.
func ownedFilter(userID, id string) (bson.M, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": owner}, true
}

func updateDocument(upd TaskUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}
	switch {
	case upd.DueDate != nil:
		set["dueDate"] = *upd.DueDate
		rearmReminder(unset)
	case upd.ClearDueDate:
		unset["dueDate"] = ""
		rearmReminder(unset)
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func rearmReminder(unset bson.M) {
	unset["reminderSentAt"] = ""
	unset["reminderAttempts"] = ""
	unset["reminderRetryAt"] = ""
}

var _ Storage = (*MongoStorage)(nil)
