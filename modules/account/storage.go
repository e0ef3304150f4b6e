package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/todoapi/pkg/auth"
	mongox "github.com/dmitrymomot/todoapi/pkg/mongo"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

type userDocument struct {
	ID           bson.ObjectID `bson:"_id"`
	Email        string        `bson:"email"`
	Name         string        `bson:"name,omitempty"`
	Avatar       string        `bson:"avatar,omitempty"`
	PasswordHash string        `bson:"password,omitempty"`
	GoogleID     string        `bson:"googleId,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

func (d userDocument) user() *auth.User {
	return &auth.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		Avatar:       d.Avatar,
		PasswordHash: d.PasswordHash,
		GoogleID:     d.GoogleID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Storage implements auth.UserStorage on a MongoDB collection. Email
// uniqueness relies on the index created by EnsureIndexes.
type Storage struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewStorage(db *mongo.Database) *Storage {
	return &Storage{
		coll: db.Collection(UsersCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique email index.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, user *auth.User) error {
	now := s.now()
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		Name:         user.Name,
		Avatar:       user.Avatar,
		PasswordHash: user.PasswordHash,
		GoogleID:     user.GoogleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongox.IsDuplicateKey(err) {
			return auth.ErrDuplicateEmail
		}
		return err
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Storage) UpdateUser(ctx context.Context, id string, upd auth.UserUpdate) (*auth.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}

	var doc userDocument
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		updateDocument(upd, s.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case mongox.IsNotFound(err):
		return nil, auth.ErrUserNotFound
	case mongox.IsDuplicateKey(err):
		return nil, auth.ErrDuplicateEmail
	case err != nil:
		return nil, err
	}
	return doc.user(), nil
}

func (s *Storage) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return doc.user(), nil
}

// updateDocument builds a $set for the supplied fields. Empty name or avatar
// values clear the field.
func updateDocument(upd auth.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	setOrUnset := func(key string, v *string) {
		switch {
		case v == nil:
		case *v == "":
			unset[key] = ""
		default:
			set[key] = *v
		}
	}

	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	setOrUnset("name", upd.Name)
	setOrUnset("avatar", upd.Avatar)
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

var _ auth.UserStorage = (*Storage)(nil)
