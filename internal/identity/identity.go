// Package identity resolves caller credentials into verified principal
// emails. Resolution happens once at the HTTP boundary; no other component
// ever sees a raw credential.
package identity

import (
	"context"
	"errors"
)

var ErrUnauthorized = errors.New("no resolvable principal")

type Resolver interface {
	// ResolveEmail turns a bearer credential into a verified email, or
	// fails with ErrUnauthorized.
	ResolveEmail(ctx context.Context, credential string) (string, error)

	// Exists reports whether the email belongs to a known user.
	Exists(ctx context.Context, email string) (bool, error)
}
