package authx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
)

// User represents a persisted profile for an end user, keyed by the stable
// subject id the identity provider issues for them. A profile is created once
// on first login and never overwritten by subsequent logins.
type User struct {
	meta.ObjectMeta `json:"metadata" bson:",inline"`
	Name            string `json:"name,omitempty" bson:"name,omitempty"`
	Email           string `json:"email" bson:"email"`
	Picture         string `json:"picture,omitempty" bson:"picture,omitempty"`
}

// MarshalJSON amends User instances with type metadata.
func (u User) MarshalJSON() ([]byte, error) {
	type Alias User
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "User",
			},
			Alias: (Alias)(u),
		},
	)
}

// UsersService is the specialized interface for managing Users. It's
// decoupled from underlying technology choices (e.g. data store) to keep
// business logic reusable and consistent while the underlying tech stack
// remains free to change.
type UsersService interface {
	// EnsureProfile idempotently creates a profile record for the provided
	// Principal if one does not already exist. An existing record is left
	// untouched. Two concurrent first-logins for the same new user may race;
	// the store's uniqueness constraint guarantees at most one record results,
	// and the lost insert is treated as benign since both writes carried
	// identical data.
	EnsureProfile(ctx context.Context, principal Principal) error
	// Get retrieves a single User specified by their subject id.
	Get(ctx context.Context, id string) (User, error)
}

type usersService struct {
	usersStore UsersStore
}

// NewUsersService returns a specialized interface for managing Users.
func NewUsersService(usersStore UsersStore) UsersService {
	return &usersService{
		usersStore: usersStore,
	}
}

func (u *usersService) EnsureProfile(
	ctx context.Context,
	principal Principal,
) error {
	_, err := u.usersStore.Get(ctx, principal.Subject)
	if err == nil {
		return nil
	}
	if _, ok := errors.Cause(err).(*meta.ErrNotFound); !ok {
		return errors.Wrapf(
			err,
			"error retrieving user %q from store",
			principal.Subject,
		)
	}
	// User wasn't found. That's ok. We'll create one.
	now := time.Now()
	user := User{
		ObjectMeta: meta.ObjectMeta{
			ID:      principal.Subject,
			Created: &now,
		},
		Name:    principal.Name,
		Email:   principal.Email,
		Picture: principal.Picture,
	}
	if err := u.usersStore.Create(ctx, user); err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrConflict); ok {
			// A concurrent first-login won the race. The competing write carried
			// identical data.
			return nil
		}
		return errors.Wrapf(err, "error storing new user %q", user.ID)
	}
	return nil
}

func (u *usersService) Get(ctx context.Context, id string) (User, error) {
	user, err := u.usersStore.Get(ctx, id)
	if err != nil {
		return user, errors.Wrapf(
			err,
			"error retrieving user %q from store",
			id,
		)
	}
	return user, nil
}

// UsersStore is the interface for components that persist Users.
type UsersStore interface {
	// Create stores the provided User. Implementations MUST return a
	// *meta.ErrConflict if a User with the same id already exists.
	Create(context.Context, User) error
	// Get retrieves a single User by subject id. Implementations MUST return a
	// *meta.ErrNotFound when no such User exists.
	Get(context.Context, string) (User, error)
}
