package tasks

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	mongox "github.com/dmitrymomot/todoapi/pkg/mongo"
)

func TestUpdateDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	done := true
	title := "x"

	t.Run("fields", func(t *testing.T) {
		t.Parallel()
		doc := updateDocument(TaskUpdate{Title: &title, Completed: &done}, now)
		assert.Equal(t, bson.M{"$set": bson.M{"updatedAt": now, "title": "x", "completed": true}}, doc)
	})

	t.Run("new due date re-arms reminder", func(t *testing.T) {
		t.Parallel()
		doc := updateDocument(TaskUpdate{DueDate: &due}, now)
		assert.Equal(t, due, doc["$set"].(bson.M)["dueDate"])
		assert.Equal(t, bson.M{"reminderSentAt": "", "reminderAttempts": "", "reminderRetryAt": ""}, doc["$unset"])
	})

	t.Run("clear due date", func(t *testing.T) {
		t.Parallel()
		doc := updateDocument(TaskUpdate{ClearDueDate: true}, now)
		assert.Equal(t, bson.M{
			"dueDate":          "",
			"reminderSentAt":   "",
			"reminderAttempts": "",
			"reminderRetryAt":  "",
		}, doc["$unset"])
	})
}

func TestDueFilter(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(24 * time.Hour)
	f := dueFilter(from, until)

	assert.Equal(t, false, f["completed"])
	assert.Equal(t, bson.M{"$gte": from, "$lte": until}, f["dueDate"])
	assert.Equal(t, bson.M{"$exists": false}, f["reminderSentAt"])
	assert.Equal(t, bson.A{
		bson.M{"reminderRetryAt": bson.M{"$exists": false}},
		bson.M{"reminderRetryAt": bson.M{"$lte": from}},
	}, f["$or"])
}

func TestOwnedFilter(t *testing.T) {
	t.Parallel()

	id, owner := bson.NewObjectID(), bson.NewObjectID()
	f, ok := ownedFilter(owner.Hex(), id.Hex())
	require.True(t, ok)
	assert.Equal(t, bson.M{"_id": id, "userId": owner}, f)

	_, ok = ownedFilter(owner.Hex(), "bad")
	assert.False(t, ok)
	_, ok = ownedFilter("bad", id.Hex())
	assert.False(t, ok)
}

func TestMongoStorage_MalformedIDs(t *testing.T) {
	t.Parallel()

	s := &MongoStorage{}
	ctx := context.Background()

	_, err := s.GetTask(ctx, "u", "t")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, "u", "t"), ErrTaskNotFound)
	assert.ErrorIs(t, s.CreateTask(ctx, &Task{UserID: "nope", Title: "x"}), ErrNoOwner)

	list, err := s.ListTasks(ctx, "nope", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

// TestMongoStorage_Mongo runs against a live server when MONGODB_TEST_URI is set.
func TestMongoStorage_Mongo(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongox.ConnectDatabase(ctx, mongox.Config{
		URI:                    uri,
		Database:               "todoapi_test_" + bson.NewObjectID().Hex(),
		ConnectTimeout:         5 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	s := NewMongoStorage(db)
	require.NoError(t, s.EnsureIndexes(ctx))

	owner, other := bson.NewObjectID().Hex(), bson.NewObjectID().Hex()
	due := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Millisecond)

	task := &Task{UserID: owner, Title: "Write tests", DueDate: &due}
	require.NoError(t, s.CreateTask(ctx, task))
	require.NoError(t, s.CreateTask(ctx, &Task{UserID: owner, Title: "Done", Completed: true}))

	_, err = s.GetTask(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	open := false
	list, err := s.ListTasks(ctx, owner, ListFilter{Completed: &open})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)

	now := time.Now().UTC()
	dueList, err := s.DueTasks(ctx, now, now.Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, dueList, 1)

	require.NoError(t, s.MarkReminderFailed(ctx, task.ID, now.Add(time.Hour)))
	dueList, err = s.DueTasks(ctx, now, now.Add(24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, dueList)

	later := now.Add(time.Hour)
	dueList, err = s.DueTasks(ctx, later, later.Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, dueList, 1)
	assert.Equal(t, 1, dueList[0].ReminderAttempts)

	require.NoError(t, s.MarkReminderSent(ctx, task.ID, now))
	dueList, err = s.DueTasks(ctx, now, now.Add(24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, dueList)

	assert.ErrorIs(t, s.DeleteTask(ctx, other, task.ID), ErrTaskNotFound)
	require.NoError(t, s.DeleteTask(ctx, owner, task.ID))
}
