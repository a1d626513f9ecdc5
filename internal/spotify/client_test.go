package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	tokenCalls    atomic.Int64
	resourceCalls atomic.Int64

	tokenStatus    int
	expiresIn      int
	resourceStatus int
	lastPath       string
	lastAuth       string
	payload        any
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tokenStatus:    http.StatusOK,
		expiresIn:      3600,
		resourceStatus: http.StatusOK,
		payload:        map[string]any{},
	}
}

func (f *fakeAPI) start(t *testing.T) (*httptest.Server, *Client) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if user, pass, ok := r.BasicAuth(); !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			return
		}
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":%d}`, f.tokenCalls.Load(), f.expiresIn)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.resourceCalls.Add(1)
		f.lastPath = r.URL.RequestURI()
		f.lastAuth = r.Header.Get("Authorization")
		if f.resourceStatus != http.StatusOK {
			w.WriteHeader(f.resourceStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.payload)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL + "/token",
		BaseURL:      srv.URL,
		HTTPClient:   srv.Client(),
	})
	return srv, client
}

func TestAccessToken_CachedAcrossCalls(t *testing.T) {
	api := newFakeAPI()
	_, client := api.start(t)
	ctx := context.Background()

	_, err := client.GetArtist(ctx, "artist-1")
	require.NoError(t, err)
	_, err = client.GetArtist(ctx, "artist-1")
	require.NoError(t, err)
	_, err = client.GetAlbum(ctx, "album-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), api.tokenCalls.Load(), "one token exchange serves every call before expiry")
	assert.Equal(t, int64(3), api.resourceCalls.Load())
	assert.Equal(t, "Bearer token-1", api.lastAuth)
}

func TestAccessToken_RefetchedAfterExpiryMargin(t *testing.T) {
	api := newFakeAPI()
	api.expiresIn = 3600
	_, client := api.start(t)
	ctx := context.Background()

	base := time.Now()
	client.now = func() time.Time { return base }

	_, err := client.GetArtist(ctx, "artist-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), api.tokenCalls.Load())

	// Just inside the lifetime minus the safety margin: still cached
	client.now = func() time.Time { return base.Add(3600*time.Second - tokenExpiryMargin - time.Second) }
	_, err = client.GetArtist(ctx, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), api.tokenCalls.Load())

	// Past the margin: exactly one new exchange
	client.now = func() time.Time { return base.Add(3600 * time.Second) }
	_, err = client.GetArtist(ctx, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), api.tokenCalls.Load())
	assert.Equal(t, "Bearer token-2", api.lastAuth)
}

func TestAccessToken_MissingCredentials(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.GetArtist(context.Background(), "artist-1")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAccessToken_ExchangeRejected(t *testing.T) {
	api := newFakeAPI()
	api.tokenStatus = http.StatusBadRequest
	_, client := api.start(t)

	_, err := client.GetArtist(context.Background(), "artist-1")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Zero(t, api.resourceCalls.Load(), "no resource call without a token")
}

func TestGet_NonSuccessStatus(t *testing.T) {
	api := newFakeAPI()
	api.resourceStatus = http.StatusNotFound
	_, client := api.start(t)

	_, err := client.GetArtist(context.Background(), "ghost")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Equal(t, "/artists/ghost", reqErr.Path)
}

func TestGetArtist_DecodesProfile(t *testing.T) {
	api := newFakeAPI()
	api.payload = map[string]any{
		"id":            "artist-1",
		"name":          "Southwave",
		"genres":        []string{"electronic", "deep house"},
		"popularity":    71,
		"followers":     map[string]int{"total": 120034},
		"external_urls": map[string]string{"spotify": "https://open.spotify.com/artist/artist-1"},
	}
	_, client := api.start(t)

	artist, err := client.GetArtist(context.Background(), "artist-1")
	require.NoError(t, err)

	assert.Equal(t, "Southwave", artist.Name)
	assert.Equal(t, 120034, artist.Followers.Total)
	assert.Equal(t, []string{"electronic", "deep house"}, artist.Genres)
}

func TestGetArtistAlbums_PathAndPaging(t *testing.T) {
	api := newFakeAPI()
	api.payload = map[string]any{
		"items": []map[string]any{{"id": "album-1", "name": "Deep Currents", "total_tracks": 12}},
		"total": 1, "limit": 5, "offset": 0,
	}
	_, client := api.start(t)

	page, err := client.GetArtistAlbums(context.Background(), "artist-1", 5)
	require.NoError(t, err)

	assert.Equal(t, "/artists/artist-1/albums?limit=5&include_groups=album,single", api.lastPath)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Deep Currents", page.Items[0].Name)
	assert.Nil(t, page.Next)
}

func TestGetArtistAlbums_DefaultLimit(t *testing.T) {
	api := newFakeAPI()
	_, client := api.start(t)

	_, err := client.GetArtistAlbums(context.Background(), "artist-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "/artists/artist-1/albums?limit=20&include_groups=album,single", api.lastPath)
}

func TestGetArtistTopTracks_MarketScoped(t *testing.T) {
	api := newFakeAPI()
	preview := "https://p.scdn.co/mp3-preview/abc"
	api.payload = map[string]any{
		"tracks": []map[string]any{
			{"id": "t1", "name": "Midnight Tide", "preview_url": preview, "duration_ms": 214000},
			{"id": "t2", "name": "Neon Waves", "preview_url": nil, "duration_ms": 198000},
		},
	}
	_, client := api.start(t)

	tracks, err := client.GetArtistTopTracks(context.Background(), "artist-1", "DE")
	require.NoError(t, err)

	assert.Equal(t, "/artists/artist-1/top-tracks?market=DE", api.lastPath)
	require.Len(t, tracks, 2)
	require.NotNil(t, tracks[0].PreviewURL)
	assert.Equal(t, preview, *tracks[0].PreviewURL)
	assert.Nil(t, tracks[1].PreviewURL, "absent preview decodes as nil")
}

func TestGetArtistTopTracks_DefaultMarket(t *testing.T) {
	api := newFakeAPI()
	api.payload = map[string]any{"tracks": []map[string]any{}}
	_, client := api.start(t)

	_, err := client.GetArtistTopTracks(context.Background(), "artist-1", "")
	require.NoError(t, err)
	assert.Equal(t, "/artists/artist-1/top-tracks?market=US", api.lastPath)
}

func TestSearchTracks_QueryEscapedAndUnwrapped(t *testing.T) {
	api := newFakeAPI()
	api.payload = map[string]any{
		"tracks": map[string]any{
			"items": []map[string]any{{"id": "t1", "name": "Deep Currents"}},
			"total": 1, "limit": 10, "offset": 0,
		},
	}
	_, client := api.start(t)

	page, err := client.SearchTracks(context.Background(), "deep currents", 0)
	require.NoError(t, err)

	assert.Equal(t, "/search?q=deep+currents&type=track&limit=10", api.lastPath)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Deep Currents", page.Items[0].Name)
}
