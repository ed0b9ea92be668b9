package auth

import (
	"context"
	"errors"

	"smartmeeting/store"
)

const (
	DemoUsername = "demo_user"
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo123"
)

// EnsureOwner creates the account unless one with the same email exists.
// It reports whether a new owner was created.
func EnsureOwner(ctx context.Context, st store.Store, username, email, password string) (bool, error) {
	if _, err := st.GetOwnerByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	err = st.CreateOwner(ctx, &store.Owner{Username: username, Email: email, PasswordHash: hash})
	if errors.Is(err, store.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
