package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Southwavecodes/Southwaveapp/pkg/circuitbreaker"
)

const (
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultBaseURL  = "https://api.spotify.com/v1"

	// Tokens are treated as expired this long before the reported lifetime
	// so an in-flight request never carries a token that dies mid-call.
	tokenExpiryMargin = time.Minute

	defaultAlbumLimit  = 20
	defaultSearchLimit = 10
	defaultMarket      = "US"
)

var ErrMissingCredentials = errors.New("spotify credentials not configured")

// AuthError reports a rejected client-credentials exchange.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify token exchange rejected with status %d", e.Status)
}

// RequestError reports a non-success response from a resource endpoint.
type RequestError struct {
	Status int
	Path   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("spotify request %s failed with status %d", e.Path, e.Status)
}

type Config struct {
	ClientID     string
	ClientSecret string

	// Overridable for tests; zero values select the public endpoints.
	TokenURL   string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the music-catalog API with client-credential auth. The bearer
// token is cached with its expiry and refreshed lazily; singleflight
// collapses concurrent refreshes into one exchange per expiry window.
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	baseURL      string

	httpClient *http.Client
	breaker    *circuitbreaker.Breaker

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	sfg         singleflight.Group

	now func() time.Time
}

func NewClient(cfg Config) *Client {
	c := &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		baseURL:      cfg.BaseURL,
		httpClient:   cfg.HTTPClient,
		breaker:      circuitbreaker.New("spotify"),
		now:          time.Now,
	}
	if c.tokenURL == "" {
		c.tokenURL = defaultTokenURL
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, true
	}
	return "", false
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if tok, ok := c.cachedToken(); ok {
		return tok, nil
	}

	v, err, _ := c.sfg.Do("token", func() (interface{}, error) {
		// Another caller may have refreshed while we queued
		if tok, ok := c.cachedToken(); ok {
			return tok, nil
		}
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Status: resp.StatusCode}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode}
	}

	// Only a complete token reaches the cache
	c.mu.Lock()
	c.token = body.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenExpiryMargin)
	c.mu.Unlock()

	return body.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.breaker.Do(c.httpClient, req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Status: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.get(ctx, "/artists/"+artistID, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

func (c *Client) GetArtistAlbums(ctx context.Context, artistID string, limit int) (*Paging[Album], error) {
	if limit <= 0 {
		limit = defaultAlbumLimit
	}
	var page Paging[Album]
	path := fmt.Sprintf("/artists/%s/albums?limit=%d&include_groups=album,single", artistID, limit)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetArtistTopTracks(ctx context.Context, artistID, market string) ([]Track, error) {
	if market == "" {
		market = defaultMarket
	}
	var body struct {
		Tracks []Track `json:"tracks"`
	}
	path := fmt.Sprintf("/artists/%s/top-tracks?market=%s", artistID, url.QueryEscape(market))
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Tracks, nil
}

func (c *Client) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	var album Album
	if err := c.get(ctx, "/albums/"+albumID, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

func (c *Client) SearchTracks(ctx context.Context, query string, limit int) (*Paging[Track], error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	var body struct {
		Tracks Paging[Track] `json:"tracks"`
	}
	path := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return &body.Tracks, nil
}
