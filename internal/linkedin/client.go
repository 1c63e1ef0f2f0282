package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devops-autopost/pkg/logger"
	"github.com/devops-autopost/pkg/ratelimit"
)

const (
	DefaultBaseURL  = "https://api.linkedin.com"
	restliVersion   = "2.0.0"
	linkedinVersion = "202401" // LinkedIn API version
)

// Client handles LinkedIn API requests
type Client struct {
	baseURL      string
	httpClient   *http.Client
	oauthManager *OAuthManager
	rateLimiter  *ratelimit.MultiLimiter
	log          *logger.Logger
}

// NewClient creates a new LinkedIn API client. An empty baseURL uses the
// public API host.
func NewClient(baseURL string, oauth *OAuthManager, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/v2",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		oauthManager: oauth,
		rateLimiter:  limiter,
		log:          log.WithComponent("linkedin"),
	}
}

// do performs an HTTP request with proper authentication and headers
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterLinkedIn); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	token, err := c.oauthManager.GetValidToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication error: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		c.log.Debug().
			Int("body_length", len(data)).
			Msg("LinkedIn API request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", restliVersion)
	req.Header.Set("LinkedIn-Version", linkedinVersion)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Msg("Making LinkedIn API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Msg("LinkedIn API response")

	return resp, nil
}

// GetProfile retrieves the authenticated member's profile
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/userinfo", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get profile: %s - %s", resp.Status, string(body))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.Sub == "" {
		return nil, fmt.Errorf("profile response has no member id")
	}

	return &profile, nil
}

// Profile represents a LinkedIn member profile from the userinfo endpoint
type Profile struct {
	Sub        string `json:"sub"` // LinkedIn member ID
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}
