// Package authenticator defines the interface for Shovel Heroes authenticators.
//
// # Authenticator Interface
//
// All authenticators implement the Authenticator interface:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, input AuthenticatorInput) (*model.User, error)
//	    Status(ctx context.Context) error
//	}
//
// # Built-in Authenticators
//
// The following authenticators are available in subpackages:
//
//   - authn: email and password login - see [github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn]
//   - authn-jwt: session tokens issued on login - see [github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt]
//
// Both are registered and enabled by the server command. POST /auth/login
// goes through authn; every other request presenting a bearer token goes
// through authn-jwt in the authentication middleware.
package authenticator
