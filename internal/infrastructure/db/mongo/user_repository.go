package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

const (
	usersCollection   = "users"
	usernameIndexName = "uniq_username"
	emailIndexName    = "uniq_email"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	Role               string             `bson:"role"`
	EmailNotifications bool               `bson:"email_notifications"`
	TokenVersion       int                `bson:"token_version"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Username:           u.Username,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		EmailNotifications: u.EmailNotifications,
		TokenVersion:       u.TokenVersion,
		CreatedAt:          u.CreatedAt.Unix(),
		UpdatedAt:          u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 mu.ID.Hex(),
		Username:           mu.Username,
		Email:              mu.Email,
		PasswordHash:       mu.PasswordHash,
		Role:               domain.Role(mu.Role),
		EmailNotifications: mu.EmailNotifications,
		TokenVersion:       mu.TokenVersion,
		CreatedAt:          unixToTime(mu.CreatedAt),
		UpdatedAt:          unixToTime(mu.UpdatedAt),
	}
}

// EnsureIndexes creates the unique username and email indexes the
// repository relies on for conflict detection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndexName)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndexName)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoUser(user))
	if err != nil {
		if conflict := duplicateField(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// Update applies changes with a single atomic FindOneAndUpdate so concurrent
// writers never overwrite fields they did not touch.
func (r *UserRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := userUpdateDocs(oid, changes)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu)
	switch {
	case err == nil:
		return mu.toDomain(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if !changes.Conditional() {
			return nil, domain.ErrUserNotFound
		}
		found, xerr := r.exists(ctx, bson.M{"_id": oid})
		if xerr != nil {
			return nil, xerr
		}
		if !found {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrConcurrentUpdate
	default:
		if conflict := duplicateField(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
}

// userUpdateDocs builds the filter and update documents for changes.
func userUpdateDocs(oid primitive.ObjectID, changes domain.UserChanges) (bson.M, bson.M) {
	filter := bson.M{"_id": oid}
	if changes.RequireRole != nil {
		filter["role"] = string(*changes.RequireRole)
	}
	if changes.RequireTokenVersion != nil {
		filter["token_version"] = *changes.RequireTokenVersion
	}

	updatedAt := changes.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	set := bson.M{"updated_at": updatedAt.Unix()}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.PasswordHash != nil {
		set["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		set["role"] = string(*changes.Role)
	}
	if changes.EmailNotifications != nil {
		set["email_notifications"] = *changes.EmailNotifications
	}

	update := bson.M{"$set": set}
	if changes.BumpTokenVersion {
		update["$inc"] = bson.M{"token_version": 1}
	}
	return filter, update
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toDomain())
	}
	return users, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// duplicateField maps a unique index violation to the field that collided.
func duplicateField(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "index: "+emailIndexName), strings.Contains(msg, "index: email_1"):
		return domain.UserConflict("email")
	default:
		return domain.UserConflict("username")
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
