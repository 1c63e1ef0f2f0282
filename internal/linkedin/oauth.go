package linkedin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// Endpoint is LinkedIn's OAuth 2.0 endpoint
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
	TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
}

// defaultTokenLifetime applies when the configured expiry can't be parsed
const defaultTokenLifetime = 60 * 24 * time.Hour

// OAuthManager holds the LinkedIn token and refreshes it when it expires
type OAuthManager struct {
	config *oauth2.Config
	log    *logger.Logger

	mu           sync.RWMutex
	currentToken *models.OAuthToken
}

// NewOAuthManager creates an OAuth manager seeded from the configured token
func NewOAuthManager(cfg config.LinkedInConfig, log *logger.Logger) *OAuthManager {
	m := &OAuthManager{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     Endpoint,
		},
		log: log.WithComponent("oauth"),
	}

	if cfg.AccessToken != "" {
		expiry, err := time.Parse(time.RFC3339, cfg.TokenExpiresAt)
		if err != nil {
			expiry = time.Now().Add(defaultTokenLifetime)
		}

		m.currentToken = &models.OAuthToken{
			Provider:     "linkedin",
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
			ExpiresAt:    expiry,
		}
		m.log.Debug().
			Time("expires_at", expiry).
			Msg("OAuth token initialized from configuration")
	}

	return m
}

// GenerateState creates a random state for OAuth CSRF protection
func GenerateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GetAuthURL returns the OAuth authorization URL
func (m *OAuthManager) GetAuthURL(state string) string {
	return m.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges the authorization code for tokens
func (m *OAuthManager) ExchangeCode(ctx context.Context, code string) (*models.OAuthToken, error) {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	oauthToken := &models.OAuthToken{Provider: "linkedin"}
	oauthToken.FromOAuth2Token(token)

	m.mu.Lock()
	m.currentToken = oauthToken
	m.mu.Unlock()

	m.log.Info().
		Time("expires_at", token.Expiry).
		Msg("Authorization code exchanged")

	return oauthToken, nil
}

// GetValidToken returns a valid access token, refreshing if necessary
func (m *OAuthManager) GetValidToken(ctx context.Context) (*models.OAuthToken, error) {
	m.mu.RLock()
	token := m.currentToken
	m.mu.RUnlock()

	if token == nil {
		return nil, fmt.Errorf("no LinkedIn token found: set LINKEDIN_ACCESS_TOKEN or run 'oauth login'")
	}

	if token.NeedsRefresh() {
		m.log.Info().Msg("Token expiring soon, refreshing")
		return m.refreshToken(ctx, token)
	}

	return token, nil
}

func (m *OAuthManager) refreshToken(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error) {
	if token.RefreshToken == "" {
		if !token.IsExpired() {
			return token, nil
		}
		return nil, fmt.Errorf("token expired and no refresh token available, please re-authenticate")
	}

	newToken, err := m.config.TokenSource(ctx, token.ToOAuth2Token()).Token()
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to refresh token")
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshed := *token
	refreshed.FromOAuth2Token(newToken)

	m.mu.Lock()
	m.currentToken = &refreshed
	m.mu.Unlock()

	m.log.Info().
		Time("expires_at", newToken.Expiry).
		Msg("Token refreshed successfully")

	return &refreshed, nil
}

// GetTokenStatus reports whether the token is still valid and when it expires
func (m *OAuthManager) GetTokenStatus() (bool, time.Time, error) {
	m.mu.RLock()
	token := m.currentToken
	m.mu.RUnlock()

	if token == nil {
		return false, time.Time{}, fmt.Errorf("no token found")
	}

	return !token.IsExpired(), token.ExpiresAt, nil
}

// StartOAuthServer runs a temporary callback server on addr, waits for
// the authorization redirect and exchanges the code. onURL receives the
// URL the user must open.
func (m *OAuthManager) StartOAuthServer(ctx context.Context, addr string, onURL func(string)) (*models.OAuthToken, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}
		if errMsg := query.Get("error"); errMsg != "" {
			errChan <- fmt.Errorf("oauth error: %s - %s", errMsg, query.Get("error_description"))
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "No code", http.StatusBadRequest)
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>Authorization Successful</h1><p>You can close this window and return to the terminal.</p>
</body></html>`)
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := m.GetAuthURL(state)
	m.log.Info().Str("addr", addr).Msg("OAuth server started, waiting for callback")
	if onURL != nil {
		onURL(authURL)
	}

	select {
	case code := <-codeChan:
		return m.ExchangeCode(ctx, code)
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
