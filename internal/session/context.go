package session

import (
	"context"

	"github.com/fjod/shopdesk/internal/domain"
)

type userCtxKey struct{}

// NewContext returns a copy of ctx carrying the authenticated user
func NewContext(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(domain.User)
	return u, ok
}

// MustUser panics when ctx carries no user: a handler that needs the session was
// mounted outside the session middleware, which is a wiring bug.
func MustUser(ctx context.Context) domain.User {
	u, ok := UserFromContext(ctx)
	if !ok {
		panic("session: no user in context, route is not behind the session middleware")
	}
	return u
}
