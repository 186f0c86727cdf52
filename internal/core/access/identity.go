// Package access carries the caller identity through a request and resolves
// which grid capabilities a role holds for an entity.
package access

import "context"

// Identity is the opaque user/role pair attached to destructive operations.
// The console never authenticates it; flags and env supply both values.
type Identity struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// IsZero reports whether neither user nor role is set.
func (i Identity) IsZero() bool {
	return i.User == "" && i.Role == ""
}

func (i Identity) String() string {
	if i.Role == "" {
		return i.User
	}
	return i.User + "@" + i.Role
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or the zero Identity.
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
