package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizmentor/quizmentor-backend/internal/store"
)

// User is the persisted account record. ID is the store-internal identifier
// and is what quizzes reference as their owner.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GoogleID  string             `bson:"googleId"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Picture   string             `bson:"picture"`
	CreatedAt time.Time          `bson:"createdAt"`
	LastLogin time.Time          `bson:"lastLogin"`
}

// Profile is the wire-safe view of a user.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID.Hex(), Email: u.Email, Name: u.Name, Picture: u.Picture}
}

// Users persists accounts keyed by their external identity.
type Users struct {
	col store.Collection
}

func NewUsers(col store.Collection) *Users {
	return &Users{col: col}
}

// ResolveOrCreate looks the verified identity up by its stable subject id,
// creating the account on first login and refreshing name, picture, email and
// last-login on every subsequent one. Last write wins; there is no conflict
// detection.
func (u *Users) ResolveOrCreate(ctx context.Context, ident Identity) (*User, error) {
	now := time.Now().UTC()

	var existing User
	err := u.col.FindOne(ctx, bson.M{"googleId": ident.Subject}, &existing)
	switch {
	case errors.Is(err, store.ErrNoDocuments):
		user := User{
			GoogleID:  ident.Subject,
			Email:     ident.Email,
			Name:      ident.Name,
			Picture:   ident.Picture,
			CreatedAt: now,
			LastLogin: now,
		}
		oid, err := u.col.InsertOne(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
		user.ID = oid
		return &user, nil
	case err != nil:
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	_, err = u.col.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
		"email":     ident.Email,
		"name":      ident.Name,
		"picture":   ident.Picture,
		"lastLogin": now,
	}})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u.ByID(ctx, existing.ID)
}

// ByID resolves a session subject back to its account.
func (u *Users) ByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	if err := u.col.FindOne(ctx, bson.M{"_id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
