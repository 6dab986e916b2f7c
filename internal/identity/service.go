package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/procurehq/intake/internal/clock"
	"github.com/procurehq/intake/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrDomainNotAllowed = errors.New("email_domain_not_allowed")
	ErrInvalidSession   = errors.New("invalid_session")
)

const sessionLifetime = 12 * time.Hour

// Identity is the verified requester attached to a request after the
// session token checks out.
type Identity struct {
	Email string
	Name  string
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg   config.Config
	log   *zap.Logger
	clock clock.Clock
	oauth *oauth2.Config
}

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

func New(p Params) *Service {
	return &Service{
		cfg:   p.Cfg,
		log:   p.Log.Named("identity.service"),
		clock: p.Clock,
		oauth: &oauth2.Config{
			ClientID:     p.Cfg.OAuth2ClientID,
			ClientSecret: p.Cfg.OAuth2ClientSecret,
			RedirectURL:  p.Cfg.OAuth2RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// Enabled reports whether sign-in is required. Without a restricted
// domain the whole flow is skipped and submissions are anonymous.
func (s *Service) Enabled() bool {
	return s.cfg.AuthRequired()
}

// AuthURL builds the Google consent redirect for one sign-in attempt.
// The state value must round-trip via the callback.
func (s *Service) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// NewState returns an unguessable state value for the consent redirect.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Authenticate exchanges the callback code, fetches the Google profile
// and enforces the allowed domain. Any failure denies access.
func (s *Service) Authenticate(ctx context.Context, code string) (Identity, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(s.oauth.Client(ctx, token)))
	if err != nil {
		return Identity{}, fmt.Errorf("userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}

	id := Identity{Email: strings.ToLower(info.Email), Name: info.Name}
	if !s.emailAllowed(id.Email) {
		s.log.Warn("sign-in rejected", zap.String("email", id.Email))
		return Identity{}, ErrDomainNotAllowed
	}
	return id, nil
}

func (s *Service) emailAllowed(email string) bool {
	if email == "" {
		return false
	}
	return strings.HasSuffix(email, "@"+strings.ToLower(s.cfg.AllowedEmailDomain))
}

// IssueSession signs a session token for a verified identity.
func (s *Service) IssueSession(id Identity) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
		},
	})
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

// VerifySession parses a session token back into the identity it was
// issued for.
func (s *Service) VerifySession(token string) (Identity, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidSession
	}
	if !s.emailAllowed(claims.Email) {
		// The allowed domain can change while sessions are out.
		return Identity{}, ErrDomainNotAllowed
	}
	return Identity{Email: claims.Email, Name: claims.Name}, nil
}
