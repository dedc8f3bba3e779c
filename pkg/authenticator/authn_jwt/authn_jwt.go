package authn_jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Name is the registry name of the session token authenticator.
const Name = "authn-jwt"

// DefaultIssuer is the iss claim of issued session tokens.
const DefaultIssuer = "shovel-heroes"

// ErrInvalidToken is returned for a token that is malformed, expired or
// signed with another key.
var ErrInvalidToken = errors.New("invalid session token")

// Config holds session token configuration
type Config struct {
	// Secret is the HMAC key used to sign and verify tokens
	Secret []byte

	// TTL is how long an issued token stays valid
	TTL time.Duration

	// Issuer is the expected iss claim (defaults to DefaultIssuer)
	Issuer string
}

// Claims are the claims carried by a session token. The subject is the
// user id; the role is deliberately absent so that role changes take effect
// on the next request.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Users is the subset of store.UsersStore the authenticator needs.
type Users interface {
	FetchUser(ctx context.Context, id string) (*model.User, error)
}

// Authenticator issues and verifies HS256 session tokens
type Authenticator struct {
	users  Users
	config Config
	now    func() time.Time
}

// Ensure Authenticator implements authenticator.Authenticator
var _ authenticator.Authenticator = (*Authenticator)(nil)

// New creates a session token authenticator.
func New(users Users, config Config) (*Authenticator, error) {
	if len(config.Secret) == 0 {
		return nil, errors.New("session token secret is required")
	}
	if config.TTL <= 0 {
		return nil, errors.New("session token TTL must be positive")
	}
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	return &Authenticator{
		users:  users,
		config: config,
		now:    time.Now,
	}, nil
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Issue signs a session token for user.
func (a *Authenticator) Issue(user *model.User) (string, time.Time, error) {
	now := a.now().Truncate(time.Second)
	expiresAt := now.Add(a.config.TTL)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenString and validates its signature and claims.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Session verifies tokenString and loads the user it was issued to.
// A token for a deleted user is invalid.
func (a *Authenticator) Session(ctx context.Context, tokenString string) (*model.User, *Claims, error) {
	claims, err := a.Verify(tokenString)
	if err != nil {
		return nil, nil, err
	}

	user, err := a.users.FetchUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, nil, fmt.Errorf("load session user: %w", err)
	}
	return user, claims, nil
}

// Authenticate validates the session token in input.Credentials.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (*model.User, error) {
	if len(input.Credentials) == 0 {
		return nil, authenticator.ErrInvalidCredentials
	}
	user, _, err := a.Session(ctx, string(input.Credentials))
	if errors.Is(err, ErrInvalidToken) {
		return nil, fmt.Errorf("%w: %v", authenticator.ErrInvalidCredentials, err)
	}
	return user, err
}

// Status checks if the authenticator is healthy
func (a *Authenticator) Status(ctx context.Context) error {
	if a.users == nil {
		return errors.New("no user store configured")
	}
	return nil
}
