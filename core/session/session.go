package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
)

type (
	Identity struct {
		Email string
	}

	// Credential is borrowed for the lifetime of a single operation; never keep it around.
	Credential struct {
		Identity
		Token string
	}

	// Provider supplies the current identity & auth token on demand.
	// Errors should wrap core.ErrNotAuthenticated or core.ErrTokenExpired.
	Provider interface {
		Identity(ctx context.Context) (Identity, error)
		Token(ctx context.Context) (string, error)
	}
)

// Acquire fetches a fresh Credential for one operation.
// Any failure is reported as a *core.AuthError.
func Acquire(ctx context.Context, p Provider) (Credential, error) {
	token, err := p.Token(ctx)
	if err != nil {
		return Credential{}, authError(errors.Wrap(err, "getting token"))
	}
	if token == "" {
		return Credential{}, core.NewAuthError(core.ErrNotAuthenticated)
	}

	ident, err := p.Identity(ctx)
	if err != nil {
		return Credential{}, authError(errors.Wrap(err, "getting identity"))
	}
	if ident.Email == "" {
		return Credential{}, core.NewAuthError(errors.Wrap(core.ErrNotAuthenticated, "identity has no email"))
	}
	return Credential{Identity: ident, Token: token}, nil
}

func authError(err error) error {
	if core.IsAuthFailure(err) {
		return err
	}
	return core.NewAuthError(err)
}
