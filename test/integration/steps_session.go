package integration

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt"
)

func (s *StepsContext) registerSessionSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I hold a session token for "([^"]*)" signed with another secret$`, s.forgedToken)
	sc.Step(`^I hold an expired session token for "([^"]*)"$`, s.expiredToken)
	sc.Step(`^I hold a session token for "([^"]*)" signed with "none"$`, s.unsignedToken)
}

func (s *StepsContext) sessionClaims(alias string, issuedAt time.Time, ttl time.Duration) (authn_jwt.Claims, error) {
	user, ok := s.users[alias]
	if !ok {
		return authn_jwt.Claims{}, fmt.Errorf("unknown user %q", alias)
	}
	return authn_jwt.Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    authn_jwt.DefaultIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}, nil
}

func (s *StepsContext) forgedToken(alias string) error {
	claims, err := s.sessionClaims(alias, time.Now(), time.Hour)
	if err != nil {
		return err
	}
	s.token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("not-the-server-secret-0123456789abcdef"))
	return err
}

func (s *StepsContext) expiredToken(alias string) error {
	claims, err := s.sessionClaims(alias, time.Now().Add(-2*time.Hour), time.Hour)
	if err != nil {
		return err
	}
	s.token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	return err
}

func (s *StepsContext) unsignedToken(alias string) error {
	claims, err := s.sessionClaims(alias, time.Now(), time.Hour)
	if err != nil {
		return err
	}
	s.token, err = jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	return err
}
