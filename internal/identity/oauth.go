package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
	"golang.org/x/oauth2"
)

// OAuth2Config holds the settings for the department single sign-on endpoint.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	TokenFile    string // where the obtained token is cached
	Secret       string // shared HMAC secret the access tokens are signed with
}

// Validate ensures all required fields are present.
func (c *OAuth2Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("oauth client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("oauth client secret is required")
	}
	if c.TokenURL == "" {
		return fmt.Errorf("oauth token URL is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("identity secret is required")
	}
	return nil
}

// OAuthProvider resolves sessions from the SSO access token, refreshing it
// through the oauth2 token source when it expires. Refreshes count as
// identity changes and fire the registered callbacks.
type OAuthProvider struct {
	source    oauth2.TokenSource
	config    OAuth2Config
	logger    *slog.Logger
	secret    []byte
	callbacks []func()
	lastToken string
}

// NewOAuthProvider creates a provider from a cached token file. The cached
// token must exist; obtaining the initial token is the sign-in flow's job.
func NewOAuthProvider(ctx context.Context, config OAuth2Config) (*OAuthProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid oauth config: %w", err)
	}

	token, err := LoadToken(config.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached token, sign in through the department SSO first: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  config.AuthURL,
			TokenURL: config.TokenURL,
		},
	}

	return &OAuthProvider{
		config: config,
		secret: []byte(config.Secret),
		source: oauthConfig.TokenSource(ctx, token),
		logger: slog.Default().With("component", "identity"),
	}, nil
}

// Current implements service.IdentityProvider. The SSO access token is a JWT
// carrying the portal role claim; it is re-verified on every call so a stale
// session is never served after expiry.
func (p *OAuthProvider) Current(_ context.Context) (*model.Session, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain identity token: %w", err)
	}

	if token.AccessToken != p.lastToken {
		if p.lastToken != "" {
			p.logger.Debug("identity token refreshed")
			p.notify()
		}
		p.lastToken = token.AccessToken
		if p.config.TokenFile != "" {
			if saveErr := saveToken(p.config.TokenFile, token); saveErr != nil {
				p.logger.Warn("failed to cache refreshed token", "error", saveErr)
			}
		}
	}

	return ParseSession(token.AccessToken, p.secret)
}

// OnChange implements service.IdentityProvider.
func (p *OAuthProvider) OnChange(fn func()) {
	p.callbacks = append(p.callbacks, fn)
}

func (p *OAuthProvider) notify() {
	for _, fn := range p.callbacks {
		fn()
	}
}

// LoadToken loads a cached oauth2 token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken saves a token to file.
func saveToken(path string, token *oauth2.Token) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// Ensure OAuthProvider implements the IdentityProvider interface.
var _ service.IdentityProvider = (*OAuthProvider)(nil)
