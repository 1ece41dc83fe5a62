// Package auth supplies the caller-identity capability: credential
// verification behind the Provider interface, plus local account management
// for the JWT mode.
package auth

import "context"

// Identity is the authenticated caller: who they are and the single role
// the authorization engine evaluates.
type Identity struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Provider authenticates a request credential and yields the caller
// identity. Implementations fail with an unauthenticated error for missing,
// malformed, or expired credentials.
type Provider interface {
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}
