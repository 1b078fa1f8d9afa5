package sessionsvc

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/session"
)

// tokens expiring within refreshWindow are refreshed before use
const refreshWindow = 5 * time.Minute

var nowFunc = time.Now // mockable

type (
	Authenticator interface {
		Login(ctx context.Context, username, password string) (string, error)
		Refresher
	}

	Refresher interface {
		RefreshToken(ctx context.Context, token string) (string, error)
	}

	// claims are read without verifying the signature; the remote service does that.
	claims struct {
		jwt.StandardClaims
		Email string `json:"email,omitempty"`
	}

	// Provider is a session.Provider backed by a JWT issued by the remote service.
	Provider struct {
		refresher Refresher // optional

		mu     sync.Mutex
		token  string
		claims claims
	}
)

var _ session.Provider = (*Provider)(nil)

// NewProvider wraps an existing token. Without a refresher the token is used until it expires.
func NewProvider(token string, refresher Refresher) (*Provider, error) {
	p := &Provider{refresher: refresher}
	if err := p.set(token); err != nil {
		return nil, err
	}
	return p, nil
}

// Login authenticates against the remote service and returns a refreshing Provider.
func Login(ctx context.Context, auth Authenticator, username, password string) (*Provider, error) {
	token, err := auth.Login(ctx, core.CleanString(username, true /* lower */), password)
	if err != nil {
		return nil, core.NewAuthError(err)
	}
	return NewProvider(token, auth)
}

func (p *Provider) Identity(context.Context) (session.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return session.Identity{Email: p.claims.Email}, nil
}

func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.claims.ExpiresAt == 0 {
		return p.token, nil
	}
	now := nowFunc()
	exp := time.Unix(p.claims.ExpiresAt, 0)
	if now.Before(exp.Add(-refreshWindow)) {
		return p.token, nil
	}
	if !now.Before(exp) {
		return "", core.ErrTokenExpired
	}

	if p.refresher == nil {
		return p.token, nil
	}
	token, err := p.refresher.RefreshToken(ctx, p.token)
	if err != nil {
		// still valid; try again on the next call
		return p.token, nil
	}
	if err = p.set(token); err != nil {
		return "", err
	}
	return p.token, nil
}

func (p *Provider) set(token string) error {
	var c claims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &c); err != nil {
		return core.NewAuthError(errors.Wrap(err, "parsing token"))
	}
	if c.Email == "" {
		return core.NewAuthError(errors.Wrap(core.ErrNotAuthenticated, "token has no email"))
	}
	p.token = token
	p.claims = c
	return nil
}
