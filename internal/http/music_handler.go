package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Southwavecodes/Southwaveapp/internal/spotify"
)

// MusicService is the slice of the music metadata layer the HTTP layer reads.
type MusicService interface {
	Artist(ctx context.Context) (*spotify.Artist, error)
	Albums(ctx context.Context, limit int) (*spotify.Paging[spotify.Album], error)
	TopTracks(ctx context.Context) ([]spotify.Track, error)
	Album(ctx context.Context, albumID string) (*spotify.Album, error)
	SearchTracks(ctx context.Context, query string, limit int) (*spotify.Paging[spotify.Track], error)
}

type MusicHandler struct {
	music   MusicService
	timeout time.Duration
}

func NewMusicHandler(music MusicService, timeout time.Duration) *MusicHandler {
	return &MusicHandler{
		music:   music,
		timeout: timeout,
	}
}

// GET /api/v1/music/artist
func (h *MusicHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	artist, err := h.music.Artist(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, artist)
}

// GET /api/v1/music/artist/albums?limit=
func (h *MusicHandler) GetAlbums(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := parseLimit(r, 20)
	page, err := h.music.Albums(ctx, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GET /api/v1/music/artist/top-tracks
func (h *MusicHandler) GetTopTracks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tracks, err := h.music.TopTracks(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string][]spotify.Track{"tracks": tracks})
}

// GET /api/v1/music/albums/{id}
func (h *MusicHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	album, err := h.music.Album(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, album)
}

// GET /api/v1/music/search?q=&limit=
func (h *MusicHandler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing_query", "q is required")
		return
	}

	page, err := h.music.SearchTracks(ctx, query, parseLimit(r, 10))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func parseLimit(r *http.Request, def int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 50 {
		return 50
	}
	return limit
}
