package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/metrics"
	"github.com/darthvader58/tansen/internal/models"
	"github.com/darthvader58/tansen/internal/services"
)

type SongsHandler struct {
	library     *services.SongLibraryService
	spotify     *services.SpotifyClient
	musicbrainz *services.MusicBrainzClient
	cloudwatch  *metrics.Client
}

func NewSongsHandler(
	library *services.SongLibraryService,
	spotify *services.SpotifyClient,
	musicbrainz *services.MusicBrainzClient,
	cloudwatch *metrics.Client,
) *SongsHandler {
	return &SongsHandler{
		library:     library,
		spotify:     spotify,
		musicbrainz: musicbrainz,
		cloudwatch:  cloudwatch,
	}
}

// ListSongs browses the public catalog with optional filters.
// GET /api/v1/songs?q=&genre=&difficulty=&instrument=&page=&page_size=
func (h *SongsHandler) ListSongs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	songs, total, err := h.library.ListSongs(services.SongFilter{
		Query:      c.Query("q"),
		Genre:      c.Query("genre"),
		Difficulty: c.Query("difficulty"),
		Instrument: c.Query("instrument"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to list songs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"songs": songs,
		"total": total,
		"page":  page,
	})
}

// GetSong retrieves one song by public ID.
// GET /api/v1/songs/:songId
func (h *SongsHandler) GetSong(c *gin.Context) {
	song, err := h.library.GetSong(c.Param("songId"))
	if err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}
	c.JSON(http.StatusOK, song)
}

// SearchSongs runs a unified search across the library and, when the
// library comes up short, the external catalogs.
// GET /api/v1/songs/search?q=&limit=&source=
func (h *SongsHandler) SearchSongs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "Query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	source := c.Query("source")

	var results []models.SongSearchResult

	if source == "" || source == models.SourceLibrary {
		songs, _, err := h.library.ListSongs(services.SongFilter{Query: query, PageSize: limit})
		if err != nil {
			respondError(c, http.StatusInternalServerError, codeInternalError, "Library search failed")
			return
		}
		for _, song := range songs {
			results = append(results, models.SongSearchResult{
				SongID:   song.SongID,
				Title:    song.Title,
				Artist:   song.Artist,
				Album:    song.Album,
				AlbumArt: song.AlbumArt,
				Duration: song.Duration,
				Source:   models.SourceLibrary,
			})
		}
	}

	if (source == models.SourceSpotify || (source == "" && len(results) < limit)) && h.spotify.Enabled() {
		external, err := h.spotify.SearchTracks(c.Request.Context(), query, limit-len(results))
		h.cloudwatch.RecordExternalLookup("spotify", err == nil)
		if err != nil {
			logger.Warn("Spotify search failed", logger.Fields{"error": err.Error(), "query": query})
			if source == models.SourceSpotify {
				respondError(c, http.StatusBadGateway, codeExternalCatalog, "Spotify search failed")
				return
			}
		} else {
			results = append(results, external...)
		}
	}

	if source == models.SourceMusicBrainz || (source == "" && len(results) < limit) {
		external, err := h.musicbrainz.SearchRecordings(c.Request.Context(), query, limit-len(results))
		h.cloudwatch.RecordExternalLookup("musicbrainz", err == nil)
		if err != nil {
			logger.Warn("MusicBrainz search failed", logger.Fields{"error": err.Error(), "query": query})
			if source == models.SourceMusicBrainz {
				respondError(c, http.StatusBadGateway, codeExternalCatalog, "MusicBrainz search failed")
				return
			}
		} else {
			results = append(results, external...)
		}
	}

	if len(results) > limit && limit > 0 {
		results = results[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

type CreateSongRequest struct {
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Album         string   `json:"album"`
	Duration      int      `json:"duration"`
	Genre         string   `json:"genre"`
	Difficulty    string   `json:"difficulty"`
	OriginalKey   string   `json:"original_key"`
	Tempo         int      `json:"tempo"`
	TimeSignature string   `json:"time_signature"`
	Instruments   []string `json:"instruments"`
	IsPublic      *bool    `json:"is_public"`
}

func (r CreateSongRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Artist, validation.Length(0, 300)),
		validation.Field(&r.Duration, validation.Min(0)),
		validation.Field(&r.Tempo, validation.Min(0), validation.Max(400)),
		validation.Field(&r.Difficulty, validation.In(
			"", models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced,
		)),
	)
}

// CreateSong adds a song to the catalog. Admin only.
// POST /api/v1/songs
func (h *SongsHandler) CreateSong(c *gin.Context) {
	var req CreateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}

	song := models.Song{
		Title:         req.Title,
		Artist:        req.Artist,
		Album:         req.Album,
		Duration:      req.Duration,
		Genre:         req.Genre,
		Difficulty:    difficulty,
		OriginalKey:   req.OriginalKey,
		Tempo:         req.Tempo,
		TimeSignature: req.TimeSignature,
		Instruments:   models.StringList(req.Instruments),
		IsPublic:      isPublic,
	}
	if err := h.library.CreateSong(&song); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to create song")
		return
	}

	c.JSON(http.StatusCreated, song)
}

type UpdateSongRequest struct {
	Title         *string  `json:"title"`
	Artist        *string  `json:"artist"`
	Album         *string  `json:"album"`
	Duration      *int     `json:"duration"`
	Genre         *string  `json:"genre"`
	Difficulty    *string  `json:"difficulty"`
	OriginalKey   *string  `json:"original_key"`
	Tempo         *int     `json:"tempo"`
	TimeSignature *string  `json:"time_signature"`
	Instruments   []string `json:"instruments"`
	IsPublic      *bool    `json:"is_public"`
}

func (r UpdateSongRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 300)),
		validation.Field(&r.Duration, validation.Min(0)),
		validation.Field(&r.Tempo, validation.Min(0), validation.Max(400)),
		validation.Field(&r.Difficulty, validation.In(
			models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced,
		)),
	)
}

// UpdateSong patches mutable fields of a catalog song. Admin only.
// PATCH /api/v1/songs/:songId
func (h *SongsHandler) UpdateSong(c *gin.Context) {
	song, err := h.library.GetSong(c.Param("songId"))
	if err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}

	var req UpdateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	if req.Title != nil {
		song.Title = *req.Title
	}
	if req.Artist != nil {
		song.Artist = *req.Artist
	}
	if req.Album != nil {
		song.Album = *req.Album
	}
	if req.Duration != nil {
		song.Duration = *req.Duration
	}
	if req.Genre != nil {
		song.Genre = *req.Genre
	}
	if req.Difficulty != nil {
		song.Difficulty = *req.Difficulty
	}
	if req.OriginalKey != nil {
		song.OriginalKey = *req.OriginalKey
	}
	if req.Tempo != nil {
		song.Tempo = *req.Tempo
	}
	if req.TimeSignature != nil {
		song.TimeSignature = *req.TimeSignature
	}
	if req.Instruments != nil {
		song.Instruments = models.StringList(req.Instruments)
	}
	if req.IsPublic != nil {
		song.IsPublic = *req.IsPublic
	}

	if err := h.library.UpdateSong(song); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to update song")
		return
	}
	c.JSON(http.StatusOK, song)
}

// DeleteSong removes a catalog song. Admin only.
// DELETE /api/v1/songs/:songId
func (h *SongsHandler) DeleteSong(c *gin.Context) {
	if err := h.library.DeleteSong(c.Param("songId")); err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to delete song")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song deleted"})
}
