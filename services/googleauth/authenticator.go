package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrAuthRequired means no usable token exists and none can be obtained
// without a human completing the consent flow again.
var ErrAuthRequired = errors.New("googleauth: authorization required")

const refreshTimeout = 10 * time.Second

// Authenticator hands out valid access tokens for one Google API scope set,
// refreshing transparently and persisting refreshed tokens to its store.
// It satisfies oauth2.TokenSource.
type Authenticator struct {
	name   string
	cfg    *oauth2.Config
	store  TokenStore
	logger *zap.Logger

	mu  sync.Mutex
	tok *oauth2.Token
}

// LoadConfig reads an installed/web client secret JSON file.
func LoadConfig(path, redirectURL string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

func NewAuthenticator(name string, cfg *oauth2.Config, store TokenStore, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{name: name, cfg: cfg, store: store, logger: logger}
}

// Name identifies the scope set, e.g. "calendar" or "sheets".
func (a *Authenticator) Name() string {
	return a.name
}

// Token returns a currently valid access token.
func (a *Authenticator) Token() (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if a.tok == nil {
		tok, err := a.store.Load(ctx)
		if errors.Is(err, ErrTokenNotFound) {
			return nil, fmt.Errorf("%w: no %s token stored", ErrAuthRequired, a.name)
		}
		if err != nil {
			// The store being unreachable says nothing about the credential.
			return nil, fmt.Errorf("googleauth: load %s token: %w", a.name, err)
		}
		a.tok = tok
	}
	if a.tok.Valid() {
		return a.tok, nil
	}
	if a.tok.RefreshToken == "" || a.cfg == nil {
		return nil, fmt.Errorf("%w: %s token expired without refresh token", ErrAuthRequired, a.name)
	}

	fresh, err := a.cfg.TokenSource(ctx, a.tok).Token()
	if err != nil {
		a.logger.Warn("Token refresh failed", zap.String("scope", a.name), zap.Error(err))
		if refreshRejected(err) {
			return nil, fmt.Errorf("%w: refresh %s token: %v", ErrAuthRequired, a.name, err)
		}
		return nil, fmt.Errorf("googleauth: refresh %s token: %w", a.name, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = a.tok.RefreshToken
	}
	a.tok = fresh
	if err := a.store.Save(ctx, fresh); err != nil {
		a.logger.Error("Failed to persist refreshed token", zap.String("scope", a.name), zap.Error(err))
	}
	return fresh, nil
}

// refreshRejected reports whether the token endpoint refused the refresh
// token itself, as opposed to being unreachable or failing server-side.
func refreshRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	return re.Response == nil || re.Response.StatusCode < http.StatusInternalServerError
}

// AuthCodeURL is the consent page an operator visits to grant offline access.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the consent callback code for a token and stores it.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange %s code: %w", a.name, err)
	}
	if err := a.store.Save(ctx, tok); err != nil {
		return fmt.Errorf("store %s token: %w", a.name, err)
	}
	a.mu.Lock()
	a.tok = tok
	a.mu.Unlock()
	a.logger.Info("Stored new OAuth token", zap.String("scope", a.name))
	return nil
}
