package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/middleware"
	"github.com/darthvader58/tansen/internal/models"
	"github.com/darthvader58/tansen/internal/services"
)

type UsersHandler struct {
	db      *gorm.DB
	library *services.SongLibraryService
}

func NewUsersHandler(db *gorm.DB, library *services.SongLibraryService) *UsersHandler {
	return &UsersHandler{db: db, library: library}
}

// GetProfile returns the authenticated user's profile.
// GET /api/v1/users/me
func (h *UsersHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name"`
	SkillLevel        *string `json:"skill_level"`
	PrimaryInstrument *string `json:"primary_instrument"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SkillLevel, validation.In(
			models.SkillBeginner, models.SkillIntermediate, models.SkillAdvanced,
		)),
		validation.Field(&r.DisplayName, validation.Length(0, 100)),
	)
}

// UpdateProfile patches mutable profile fields.
// PATCH /api/v1/users/me
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.SkillLevel != nil {
		user.SkillLevel = *req.SkillLevel
	}
	if req.PrimaryInstrument != nil {
		user.PrimaryInstrument = *req.PrimaryInstrument
	}

	if err := h.db.Save(user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListFavorites returns the user's favorited songs.
// GET /api/v1/users/me/favorites
func (h *UsersHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	var favorites []models.Favorite
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to list favorites")
		return
	}

	songIDs := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		songIDs = append(songIDs, fav.SongID)
	}

	var songs []models.Song
	if len(songIDs) > 0 {
		if err := h.db.Where("song_id IN ?", songIDs).Find(&songs).Error; err != nil {
			respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load favorite songs")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": songs,
		"total":     len(songs),
	})
}

// AddFavorite marks a song as a favorite.
// POST /api/v1/users/me/favorites/:songId
func (h *UsersHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}
	songID := c.Param("songId")

	if _, err := h.library.GetSong(songID); err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}

	var existing models.Favorite
	if err := h.db.Where("user_id = ? AND song_id = ?", userID, songID).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, codeConflict, "Song is already a favorite")
		return
	}

	favorite := models.Favorite{UserID: userID, SongID: songID}
	if err := h.db.Create(&favorite).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to add favorite")
		return
	}
	if err := h.library.AdjustFavoriteCount(songID, 1); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to update song")
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// RemoveFavorite unmarks a favorite.
// DELETE /api/v1/users/me/favorites/:songId
func (h *UsersHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}
	songID := c.Param("songId")

	result := h.db.Where("user_id = ? AND song_id = ?", userID, songID).Delete(&models.Favorite{})
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to remove favorite")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, codeNotFound, "Favorite not found")
		return
	}
	if err := h.library.AdjustFavoriteCount(songID, -1); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to update song")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

type PracticeSessionRequest struct {
	SongID          string `json:"song_id"`
	Instrument      string `json:"instrument"`
	DurationSeconds int    `json:"duration_seconds"`
	Completed       bool   `json:"completed"`
}

func (r PracticeSessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SongID, validation.Required),
		validation.Field(&r.DurationSeconds, validation.Required, validation.Min(1)),
	)
}

// RecordPractice logs one practice session.
// POST /api/v1/users/me/history
func (h *UsersHandler) RecordPractice(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	var req PracticeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	session := models.PracticeSession{
		UserID:          userID,
		SongID:          req.SongID,
		Instrument:      req.Instrument,
		DurationSeconds: req.DurationSeconds,
		Completed:       req.Completed,
	}
	if err := h.db.Create(&session).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to record practice session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetPracticeHistory lists recent practice sessions.
// GET /api/v1/users/me/history?limit=
func (h *UsersHandler) GetPracticeHistory(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var sessions []models.PracticeSession
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load practice history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}
