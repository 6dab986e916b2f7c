package identity

import (
	"testing"
	"time"

	"github.com/procurehq/intake/internal/clock"
	"github.com/procurehq/intake/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(cfg config.Config) *Service {
	return New(Params{
		Cfg:   cfg,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Now()),
	})
}

func TestEnabled(t *testing.T) {
	assert.False(t, newTestService(config.Config{}).Enabled())
	assert.True(t, newTestService(config.Config{AllowedEmailDomain: "example.com"}).Enabled())
}

func TestSessionRoundTrip(t *testing.T) {
	svc := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		SessionSecret:      "test-secret",
	})

	token, err := svc.IssueSession(Identity{Email: "ada@example.com", Name: "Ada Lovelace"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := svc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada Lovelace", id.Name)
}

func TestVerifySession_WrongSecret(t *testing.T) {
	issuer := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		SessionSecret:      "secret-a",
	})
	verifier := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		SessionSecret:      "secret-b",
	})

	token, err := issuer.IssueSession(Identity{Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = verifier.VerifySession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySession_Garbage(t *testing.T) {
	svc := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		SessionSecret:      "test-secret",
	})

	_, err := svc.VerifySession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySession_DomainRevoked(t *testing.T) {
	issuer := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		SessionSecret:      "test-secret",
	})
	token, err := issuer.IssueSession(Identity{Email: "ada@example.com"})
	require.NoError(t, err)

	verifier := newTestService(config.Config{
		AllowedEmailDomain: "other.org",
		SessionSecret:      "test-secret",
	})
	_, err = verifier.VerifySession(token)
	assert.ErrorIs(t, err, ErrDomainNotAllowed)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestAuthURL(t *testing.T) {
	svc := newTestService(config.Config{
		AllowedEmailDomain: "example.com",
		OAuth2ClientID:     "client-id",
		OAuth2RedirectURL:  "https://intake.example.com/auth/google/callback",
	})

	url := svc.AuthURL("state-123")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-123")
}
