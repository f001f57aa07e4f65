package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scheme is the Authorization header scheme clients present tokens with.
const Scheme = "JWT"

var jwtSigningMethod = jwt.SigningMethodHS256

var (
	ErrMissingToken = errors.New("auth: missing token")
	ErrBadScheme    = errors.New("auth: unsupported authorization scheme")
)

// Identity is the authenticated principal carried by a token.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// Claims is the JWT payload issued on signin.
type Claims struct {
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer validates the signing parameters once at startup.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a token for id that expires ttl after now.
func (i *Issuer) Issue(now time.Time, id Identity) (string, error) {
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and expiry and returns the embedded identity.
func (i *Issuer) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, err
	}
	if claims.UserID == uuid.Nil || claims.Username == "" {
		return Identity{}, fmt.Errorf("token is missing identity claims")
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// HeaderValue renders a token the way clients send it back.
func HeaderValue(token string) string {
	return Scheme + " " + token
}

// TokenFromHeader extracts the token from an "Authorization: JWT <token>" value.
// The scheme is matched case-insensitively.
func TokenFromHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, Scheme) {
		return "", ErrBadScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
