package authenticator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// ErrInvalidCredentials is returned for any failed authentication. Callers
// must not tell an unknown login apart from a wrong secret.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator defines the interface for all authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "authn", "authn-jwt")
	Name() string

	// Authenticate validates credentials and returns the stored user
	Authenticate(ctx context.Context, input AuthenticatorInput) (*model.User, error)

	// Status checks if the authenticator is healthy
	Status(ctx context.Context) error
}

// AuthenticatorInput contains the input for authentication
type AuthenticatorInput struct {
	Login       string
	Credentials []byte
	ClientIP    string
}

// Registry is the fixed set of authenticators the server was built with,
// and which of them the configuration switched on. It is populated before
// the server starts serving and only read afterwards.
type Registry struct {
	entries map[string]*entry
}

type entry struct {
	auth    Authenticator
	enabled bool
}

// NewRegistry installs auths, all disabled.
func NewRegistry(auths ...Authenticator) *Registry {
	r := &Registry{entries: make(map[string]*entry, len(auths))}
	for _, a := range auths {
		r.entries[a.Name()] = &entry{auth: a}
	}
	return r
}

// Enable switches on each named authenticator. Naming one that is not
// installed is a configuration error.
func (r *Registry) Enable(names ...string) error {
	for _, name := range names {
		e, ok := r.entries[name]
		if !ok {
			return fmt.Errorf("authenticator %q not found", name)
		}
		e.enabled = true
	}
	return nil
}

// Lookup returns the named authenticator if it is installed and enabled.
func (r *Registry) Lookup(name string) (Authenticator, bool) {
	e, ok := r.entries[name]
	if !ok || !e.enabled {
		return nil, false
	}
	return e.auth, true
}

// Installed lists every installed authenticator by name.
func (r *Registry) Installed() []string {
	return r.names(func(*entry) bool { return true })
}

// Enabled lists the enabled authenticators by name.
func (r *Registry) Enabled() []string {
	return r.names(func(e *entry) bool { return e.enabled })
}

func (r *Registry) names(keep func(*entry) bool) []string {
	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		if keep(e) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
