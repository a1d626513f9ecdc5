package spotify

// Wire types follow the Web API response schemas; only the fields the site
// renders are declared.

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

type Followers struct {
	Total int `json:"total"`
}

type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    Followers    `json:"followers"`
	Genres       []string     `json:"genres"`
	Popularity   int          `json:"popularity"`
}

type ArtistRef struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

type AlbumRef struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Images      []Image `json:"images"`
	ReleaseDate string  `json:"release_date"`
}

type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	PreviewURL   *string      `json:"preview_url"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Album        AlbumRef     `json:"album"`
	Artists      []ArtistRef  `json:"artists"`
	DurationMS   int          `json:"duration_ms"`
	Popularity   int          `json:"popularity"`
}

type Album struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Images       []Image      `json:"images"`
	ReleaseDate  string       `json:"release_date"`
	TotalTracks  int          `json:"total_tracks"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Artists      []ArtistRef  `json:"artists"`
	Tracks       struct {
		Items []Track `json:"items"`
	} `json:"tracks"`
}

// Paging is the API's offset-paged envelope.
type Paging[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}
