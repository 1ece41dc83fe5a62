package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/fabrica/internal/types"
)

// JWTProvider issues and verifies HMAC-signed bearer tokens carrying the
// caller's id and role.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTProvider returns a provider signing with secret; tokens expire
// after ttl.
func NewJWTProvider(secret string, ttl time.Duration) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token for the identity.
func (p *JWTProvider) IssueToken(ident *Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   ident.ID,
		"role":  ident.Role,
		"email": ident.Email,
		"name":  ident.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(p.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", types.Collaborator(err)
	}
	return signed, nil
}

// Authenticate verifies the token signature and expiry and returns the
// embedded identity.
func (p *JWTProvider) Authenticate(_ context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, types.Unauthenticated("Authentication required")
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, types.Unauthenticated("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, types.Unauthenticated("Invalid or expired token")
	}

	ident := &Identity{}
	ident.ID, _ = claims["sub"].(string)
	ident.Role, _ = claims["role"].(string)
	ident.Email, _ = claims["email"].(string)
	ident.Name, _ = claims["name"].(string)
	if ident.ID == "" {
		return nil, types.Unauthenticated("Invalid or expired token")
	}

	return ident, nil
}
