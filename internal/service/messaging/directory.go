package messaging

import (
	"context"
	"errors"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// Directory resolves user ids to display names.
// A missing user is reported with ok == false; err is reserved for lookup failures.
type Directory interface {
	ResolveName(ctx context.Context, userID int64) (name string, ok bool, err error)
}

// StoreDirectory adapts a store.UserStore to Directory.
type StoreDirectory struct {
	users store.UserStore
}

// NewStoreDirectory creates a directory backed by the user store.
func NewStoreDirectory(users store.UserStore) *StoreDirectory {
	return &StoreDirectory{users: users}
}

// ResolveName returns the user's display name, falling back to the username.
func (d *StoreDirectory) ResolveName(ctx context.Context, userID int64) (string, bool, error) {
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if user.Name == "" {
		return user.Username, true, nil
	}
	return user.Name, true, nil
}
