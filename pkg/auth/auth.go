package auth

import (
	"context"
	"errors"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"

	RoleAdmin  = "admin"
	RoleClient = "client"
)

type ctxKey int

const (
	userNameKey ctxKey = iota + 1
	userRoleKey
)

var ErrNoUser = errors.New("user-name is empty")

// SetAuthContext stores the acting user resolved by the identity provider.
func SetAuthContext(ctx context.Context, userName, role string) context.Context {
	ctx = context.WithValue(ctx, userNameKey, userName)
	return context.WithValue(ctx, userRoleKey, role)
}

func GetUserName(ctx context.Context) (string, error) {
	name, ok := ctx.Value(userNameKey).(string)
	if !ok || name == "" {
		return "", ErrNoUser
	}
	return name, nil
}

func GetRole(ctx context.Context) string {
	role, ok := ctx.Value(userRoleKey).(string)
	if !ok || role == "" {
		return RoleClient
	}
	return role
}

func IsAdmin(ctx context.Context) bool {
	return GetRole(ctx) == RoleAdmin
}
