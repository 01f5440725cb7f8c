package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// Claims carries the authenticated username inside a JWT.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier maps bearer tokens to user identities. It is the only credential
// logic this service carries; issuing accounts lives elsewhere.
type Verifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewVerifier constructs a Verifier with an HS256 secret.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, ttl: defaultTokenTTL}
}

// GenerateToken signs a token for a username.
func (v *Verifier) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateToken checks signature and expiry and returns the username.
func (v *Verifier) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Username, nil
}
