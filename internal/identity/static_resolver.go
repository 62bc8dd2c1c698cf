package identity

import (
	"context"
	"sync"
)

// StaticResolver maps fixed credentials to emails. Used for local runs and
// tests; production wiring uses the identity service.
type StaticResolver struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewStaticResolver(tokens map[string]string) *StaticResolver {
	if tokens == nil {
		tokens = make(map[string]string)
	}
	return &StaticResolver{tokens: tokens}
}

func (r *StaticResolver) ResolveEmail(_ context.Context, credential string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.tokens[credential]
	if !ok {
		return "", ErrUnauthorized
	}
	return email, nil
}

func (r *StaticResolver) Exists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, known := range r.tokens {
		if known == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *StaticResolver) AddUser(credential, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[credential] = email
}
