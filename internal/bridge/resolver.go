package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/traylist/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResolver resolves access tokens from an [oauth2.TokenSource],
// refreshing transparently when the cached token has expired.
type OAuthResolver struct {
	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewOAuthResolver creates a resolver over the given OAuth2 config and the
// token obtained from the sign-in callback.
func NewOAuthResolver(config *oauth2.Config, tok *oauth2.Token) *OAuthResolver {
	return &OAuthResolver{
		source: config.TokenSource(context.Background(), tok),
	}
}

// NewStaticResolver returns a resolver that always yields accessToken.
// Used when the host session exposes a bearer token directly.
func NewStaticResolver(accessToken string) *OAuthResolver {
	return &OAuthResolver{
		source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
	}
}

// Resolve returns a fresh access token for the subject.
func (r *OAuthResolver) Resolve(ctx context.Context, subjectID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source == nil {
		return "", fmt.Errorf("%w: no token source", shared.ErrTokenResolve)
	}

	tok, err := r.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTokenResolve, err)
	}

	return tok.AccessToken, nil
}
