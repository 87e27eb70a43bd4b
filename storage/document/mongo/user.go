package mongorepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/semsync/semsync/core/user"
)

type userDoc struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	IsActive     bool       `bson:"is_active"`
	PasswordHash []byte     `bson:"password_hash"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	LastLogin    *time.Time `bson:"last_login,omitempty"`
}

func newUserDoc(usr user.User) userDoc {
	doc := userDoc{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    msUTC(usr.CreatedAt),
		UpdatedAt:    msUTC(usr.UpdatedAt),
	}
	if !usr.LastLogin.IsZero() {
		lastLogin := msUTC(usr.LastLogin)
		doc.LastLogin = &lastLogin
	}
	return doc
}

func (doc userDoc) toUser() user.User {
	usr := user.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Username:     doc.Username,
		Email:        doc.Email,
		IsActive:     doc.IsActive,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
	if doc.LastLogin != nil {
		usr.LastLogin = doc.LastLogin.UTC()
	}
	return usr
}

type userRepository struct {
	users *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store *Store) user.Repository {
	return &userRepository{users: store.db.Collection(usersCollection)}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil
	}
	filter := bson.M{"$or": or}
	if len(excludedUsers) > 0 {
		ids := make(bson.A, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}

	var found userDoc
	if err := repo.users.FindOne(ctx, filter).Decode(&found); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return errors.Wrap(err, "checking uniqueness")
	}
	if username != "" && found.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := newUserDoc(usr)
	doc.ID = uuid.New().String()
	if _, err := repo.users.InsertOne(ctx, doc); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var doc userDoc
	if err := repo.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

// GetUserByUsernameOrEmail prefers a username match over an email match.
func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	if uname == "" {
		return user.User{}, user.ErrNotFound
	}
	usr, err := repo.findOne(ctx, bson.M{"username": uname})
	if err != user.ErrNotFound {
		return usr, err
	}
	return repo.findOne(ctx, bson.M{"email": uname})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := newUserDoc(usr)
	set := bson.M{
		"name":          doc.Name,
		"username":      doc.Username,
		"email":         doc.Email,
		"is_active":     doc.IsActive,
		"password_hash": doc.PasswordHash,
		"updated_at":    doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.LastLogin != nil {
		set["last_login"] = *doc.LastLogin
	} else {
		update["$unset"] = bson.M{"last_login": ""}
	}

	var updated userDoc
	if err := repo.users.FindOneAndUpdate(ctx, bson.M{"_id": usr.ID}, update, returnAfter()).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated.toUser(), nil
}
