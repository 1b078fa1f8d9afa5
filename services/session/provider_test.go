package sessionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/session"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()

	c := claims{Email: email}
	if !exp.IsZero() {
		c.ExpiresAt = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

type authStub struct {
	token      string
	loginErr   error
	refreshed  string
	refreshErr error
	refreshes  int
}

func (a *authStub) Login(context.Context, string, string) (string, error) { return a.token, a.loginErr }

func (a *authStub) RefreshToken(context.Context, string) (string, error) {
	a.refreshes++
	return a.refreshed, a.refreshErr
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider("not-a-jwt", nil)
	assert.True(t, core.IsAuthFailure(err))

	_, err = NewProvider(newToken(t, "", time.Time{}), nil)
	assert.True(t, core.IsAuthFailure(err))
	assert.True(t, errors.Is(err, core.ErrNotAuthenticated))

	token := newToken(t, "prof@test.cd", time.Time{})
	p, err := NewProvider(token, nil)
	require.NoError(t, err)

	cred, err := session.Acquire(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "prof@test.cd", cred.Email)
	assert.Equal(t, token, cred.Token)
}

func TestProvider_Token(t *testing.T) {
	ctx := context.Background()
	nowFunc = func() time.Time { return testNow }
	defer func() { nowFunc = time.Now }()

	fresh := newToken(t, "prof@test.cd", testNow.Add(time.Hour))
	expiring := newToken(t, "prof@test.cd", testNow.Add(time.Minute))
	expired := newToken(t, "prof@test.cd", testNow.Add(-time.Minute))

	tests := []struct {
		name          string
		token         string
		auth          *authStub
		want          string
		wantErr       error
		wantRefreshes int
	}{
		{name: "fresh", token: fresh, auth: &authStub{refreshed: fresh}, want: fresh},
		{name: "expiring: refreshed", token: expiring, auth: &authStub{refreshed: fresh}, want: fresh, wantRefreshes: 1},
		{
			name: "expiring: refresh failure keeps the token", token: expiring,
			auth: &authStub{refreshErr: errors.New("boom")}, want: expiring, wantRefreshes: 1,
		},
		{name: "expired", token: expired, auth: &authStub{refreshed: fresh}, wantErr: core.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.token, tt.auth)
			require.NoError(t, err)

			got, err := p.Token(ctx)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				_, err = session.Acquire(ctx, p)
				assert.True(t, core.IsAuthFailure(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRefreshes, tt.auth.refreshes)
		})
	}

	t.Run("static token is not refreshed", func(t *testing.T) {
		p, err := NewProvider(expiring, nil)
		require.NoError(t, err)
		got, err := p.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, expiring, got)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	_, err := Login(ctx, &authStub{loginErr: core.NewRemoteError(400, "authentication failed")}, "prof", "pwd")
	assert.True(t, core.IsAuthFailure(err))
	_, isRemote := core.AsRemoteError(err)
	assert.True(t, isRemote)

	token := newToken(t, "prof@test.cd", time.Now().Add(time.Hour))
	p, err := Login(ctx, &authStub{token: token}, "Prof", "pwd")
	require.NoError(t, err)

	ident, err := p.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "prof@test.cd", ident.Email)
}
