package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/darthvader58/tansen/internal/models"
)

const musicBrainzSearchURL = "https://musicbrainz.org/ws/2/recording"

// MusicBrainzClient queries the MusicBrainz recording catalog. MusicBrainz
// requires a descriptive User-Agent and rate-limits anonymous clients to
// roughly one request per second, so callers should treat it as a fallback
// catalog rather than the primary search path.
type MusicBrainzClient struct {
	userAgent  string
	httpClient *http.Client
}

func NewMusicBrainzClient(userAgent string) *MusicBrainzClient {
	return &MusicBrainzClient{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type musicBrainzSearchResponse struct {
	Recordings []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Length int    `json:"length"` // milliseconds
		Score  int    `json:"score"`

		ArtistCredit []struct {
			Name string `json:"name"`
		} `json:"artist-credit"`

		Releases []struct {
			Title string `json:"title"`
		} `json:"releases"`
	} `json:"recordings"`
}

// SearchRecordings runs a Lucene query against the recording index and
// maps hits into the unified search result shape.
func (c *MusicBrainzClient) SearchRecordings(ctx context.Context, query string, limit int) ([]models.SongSearchResult, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	params := url.Values{
		"query": {query},
		"fmt":   {"json"},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, musicBrainzSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musicbrainz search returned %d", resp.StatusCode)
	}

	var body musicBrainzSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}

	results := make([]models.SongSearchResult, 0, len(body.Recordings))
	for _, rec := range body.Recordings {
		artist := ""
		if len(rec.ArtistCredit) > 0 {
			artist = rec.ArtistCredit[0].Name
		}
		album := ""
		if len(rec.Releases) > 0 {
			album = rec.Releases[0].Title
		}
		results = append(results, models.SongSearchResult{
			SongID:   "musicbrainz:" + rec.ID,
			Title:    rec.Title,
			Artist:   artist,
			Album:    album,
			Duration: rec.Length / 1000,
			Source:   models.SourceMusicBrainz,
		})
	}
	return results, nil
}
