package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/localnerve/fabrica/internal/utils"
)

// AuthorizerProvider validates Authorizer session cookies and maps the
// session user onto a fabrica identity. The underlying client is created
// lazily on the first authenticated request, once the request protocol and
// host are known.
type AuthorizerProvider struct {
	URL      string
	ClientID string

	once   sync.Once
	client *authorizer.AuthorizerClient
}

// NewAuthorizerProvider returns a provider for the Authorizer instance at url.
func NewAuthorizerProvider(url, clientID string) *AuthorizerProvider {
	return &AuthorizerProvider{URL: url, ClientID: clientID}
}

// Init creates the Authorizer client. Safe to call more than once.
func (p *AuthorizerProvider) Init(requestProtocol, requestHost string) error {
	var initErr error

	p.once.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingService(p.URL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			p.URL, p.ClientID, redirectURL)

		client, err := authorizer.NewAuthorizerClient(p.ClientID, p.URL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		p.client = client
	})

	return initErr
}

// Authenticate validates the session cookie with the Authorizer service.
func (p *AuthorizerProvider) Authenticate(_ context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, types.Unauthenticated("Authentication required")
	}
	if p.client == nil {
		return nil, types.Collaborator(fmt.Errorf("authorizer client not initialized"))
	}

	res, err := p.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: credential,
	})
	if err != nil {
		return nil, types.Unauthenticated("Invalid session: %v", err)
	}
	if res == nil || !res.IsValid {
		return nil, types.Unauthenticated("Session is not valid")
	}

	roles := make([]string, 0, len(res.User.Roles))
	for _, r := range res.User.Roles {
		if r != nil {
			roles = append(roles, *r)
		}
	}

	ident := &Identity{
		ID:    res.User.ID,
		Email: res.User.Email,
		Role:  roleFromSession(roles),
	}
	if res.User.GivenName != nil {
		ident.Name = *res.User.GivenName
	}
	return ident, nil
}

// roleFromSession picks the session's effective role. The admin role is
// normalized to the engine's super-role spelling; otherwise the first
// assigned role is used as-is.
func roleFromSession(roles []string) string {
	for _, r := range roles {
		if strings.EqualFold(r, schema.AdminRole) {
			return schema.AdminRole
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}
