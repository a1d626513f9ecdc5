// Package music serves the site's artist metadata through a read-through
// cache over the catalog API client, so page loads do not fan out to the
// upstream API on every request.
package music

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Southwavecodes/Southwaveapp/internal/spotify"
)

// CatalogClient is the slice of the spotify client the service consumes.
type CatalogClient interface {
	GetArtist(ctx context.Context, artistID string) (*spotify.Artist, error)
	GetArtistAlbums(ctx context.Context, artistID string, limit int) (*spotify.Paging[spotify.Album], error)
	GetArtistTopTracks(ctx context.Context, artistID, market string) ([]spotify.Track, error)
	GetAlbum(ctx context.Context, albumID string) (*spotify.Album, error)
	SearchTracks(ctx context.Context, query string, limit int) (*spotify.Paging[spotify.Track], error)
}

type Service struct {
	client   CatalogClient
	cache    Cache
	log      *slog.Logger
	sfg      singleflight.Group
	artistID string
	market   string
}

func NewService(client CatalogClient, cache Cache, log *slog.Logger, artistID, market string) *Service {
	return &Service{
		client:   client,
		cache:    cache,
		log:      log,
		artistID: artistID,
		market:   market,
	}
}

// fetch runs the cache-aside read: singleflight collapses concurrent misses
// for the same key, cache errors other than a miss are logged and the
// upstream fetch proceeds, and a fresh document is written back with a
// bounded timeout so a slow cache cannot stall the response.
func fetch[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		if s.cache != nil {
			var cached T
			cacheErr := s.cache.Get(ctx, key, &cached)
			if cacheErr == nil {
				return cached, nil
			}
			if !errors.Is(cacheErr, ErrCacheMiss) {
				s.log.Warn("music cache get failed", "key", key, "error", cacheErr)
			}
		}

		doc, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}

		if s.cache != nil {
			setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if setErr := s.cache.Set(setCtx, key, doc); setErr != nil {
				s.log.Warn("music cache set failed", "key", key, "error", setErr)
			}
		}

		return doc, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *Service) Artist(ctx context.Context) (*spotify.Artist, error) {
	key := cacheKey("artist", s.artistID)
	return fetch(ctx, s, key, func(ctx context.Context) (*spotify.Artist, error) {
		return s.client.GetArtist(ctx, s.artistID)
	})
}

func (s *Service) Albums(ctx context.Context, limit int) (*spotify.Paging[spotify.Album], error) {
	key := cacheKey("albums", s.artistID, strconv.Itoa(limit))
	return fetch(ctx, s, key, func(ctx context.Context) (*spotify.Paging[spotify.Album], error) {
		return s.client.GetArtistAlbums(ctx, s.artistID, limit)
	})
}

func (s *Service) TopTracks(ctx context.Context) ([]spotify.Track, error) {
	key := cacheKey("top-tracks", s.artistID, s.market)
	return fetch(ctx, s, key, func(ctx context.Context) ([]spotify.Track, error) {
		return s.client.GetArtistTopTracks(ctx, s.artistID, s.market)
	})
}

func (s *Service) Album(ctx context.Context, albumID string) (*spotify.Album, error) {
	key := cacheKey("album", albumID)
	return fetch(ctx, s, key, func(ctx context.Context) (*spotify.Album, error) {
		return s.client.GetAlbum(ctx, albumID)
	})
}

// SearchTracks is not cached: queries are user-supplied and rarely repeat.
func (s *Service) SearchTracks(ctx context.Context, query string, limit int) (*spotify.Paging[spotify.Track], error) {
	page, err := s.client.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("track search failed: %w", err)
	}
	return page, nil
}
