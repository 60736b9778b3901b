package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Supabase access-token fields the service relies on.
type Claims struct {
	Subject string
	Email   string
}

// Verifier validates Supabase access tokens. HS256 tokens are checked
// against the project JWT secret, RS256 tokens against the JWKS endpoint.
type Verifier struct {
	secret []byte
	jwks   *Provider
}

func NewVerifier(secret string, jwks *Provider) *Verifier {
	v := &Verifier{jwks: jwks}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if v.secret == nil {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return v.secret, nil
		}

		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			if v.jwks == nil {
				return nil, fmt.Errorf("RS256 token received but no JWKS provider is configured")
			}
			return v.jwks.KeyFunc(token)
		}

		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token has no subject")
	}
	email, _ := mapClaims["email"].(string)

	return &Claims{Subject: sub, Email: email}, nil
}
