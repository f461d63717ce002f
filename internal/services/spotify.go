package services

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

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/models"
)

const (
	spotifyTokenURL    = "https://accounts.spotify.com/api/token"
	spotifySearchURL   = "https://api.spotify.com/v1/search"
	spotifyFeaturesURL = "https://api.spotify.com/v1/audio-features"

	// Refresh the cached token slightly before Spotify expires it.
	spotifyTokenSlack = 60 * time.Second
)

// ErrSpotifyDisabled is returned when no client credentials are configured.
var ErrSpotifyDisabled = errors.New("spotify integration not configured")

// SpotifyClient talks to the Spotify Web API using the client-credentials
// flow. The token cache is scoped to the client instance, not a package
// global, so tests and multi-tenant setups can hold independent clients.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials were configured.
func (c *SpotifyClient) Enabled() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// token returns a valid access token, refreshing through the
// client-credentials grant when the cached one is missing or stale.
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode spotify token response: %w", err)
	}

	c.accessToken = body.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - spotifyTokenSlack)

	logger.Debug("Refreshed Spotify access token", logger.Fields{
		"expires_in": body.ExpiresIn,
	})
	return c.accessToken, nil
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			DurationMS int    `json:"duration_ms"`
			PreviewURL string `json:"preview_url"`
			Artists    []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name   string `json:"name"`
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// SearchTracks queries the Spotify track catalog and maps hits into the
// unified search result shape.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.SongSearchResult, error) {
	if !c.Enabled() {
		return nil, ErrSpotifyDisabled
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spotifySearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify search returned %d", resp.StatusCode)
	}

	var body spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode spotify search response: %w", err)
	}

	trackIDs := make([]string, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		trackIDs = append(trackIDs, item.ID)
	}
	// Key lookup is best effort; a hit without a key is still a hit.
	trackKeys, err := c.audioFeatures(ctx, accessToken, trackIDs)
	if err != nil {
		logger.Warn("Spotify audio-features lookup failed", logger.Fields{"error": err.Error()})
		trackKeys = nil
	}

	results := make([]models.SongSearchResult, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		artist := ""
		if len(item.Artists) > 0 {
			artist = item.Artists[0].Name
		}
		albumArt := ""
		if len(item.Album.Images) > 0 {
			albumArt = item.Album.Images[0].URL
		}
		key := ""
		if pitchClass, ok := trackKeys[item.ID]; ok {
			if note, ok := SpotifyKeyToNote(pitchClass); ok {
				key = note
			}
		}
		results = append(results, models.SongSearchResult{
			SongID:     "spotify:" + item.ID,
			Title:      item.Name,
			Artist:     artist,
			Album:      item.Album.Name,
			AlbumArt:   albumArt,
			Duration:   item.DurationMS / 1000,
			Key:        key,
			Source:     models.SourceSpotify,
			PreviewURL: item.PreviewURL,
		})
	}
	return results, nil
}

// audioFeatures fetches the pitch-class key for each track ID in one
// batch request. Tracks Spotify has not analyzed come back as nulls and
// are left out of the map.
func (c *SpotifyClient) audioFeatures(ctx context.Context, accessToken string, trackIDs []string) (map[string]int, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	params := url.Values{"ids": {strings.Join(trackIDs, ",")}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spotifyFeaturesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify audio-features request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify audio-features returned %d", resp.StatusCode)
	}

	var body struct {
		AudioFeatures []*struct {
			ID  string `json:"id"`
			Key int    `json:"key"`
		} `json:"audio_features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode spotify audio-features response: %w", err)
	}

	keys := make(map[string]int, len(body.AudioFeatures))
	for _, feature := range body.AudioFeatures {
		if feature != nil {
			keys[feature.ID] = feature.Key
		}
	}
	return keys, nil
}

// SpotifyKeyToNote maps Spotify's audio-features pitch-class integer
// (0 = C ... 11 = B, -1 = unknown) to a note name.
func SpotifyKeyToNote(key int) (string, bool) {
	if key < 0 || key > 11 {
		return "", false
	}
	return noteNames[key], true
}
