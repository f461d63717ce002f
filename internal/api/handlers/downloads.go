package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/models"
	"github.com/darthvader58/tansen/internal/services"
)

// downloadLinkTTL bounds how long a packaged download stays fetchable.
const downloadLinkTTL = time.Hour

type DownloadsHandler struct {
	db      *gorm.DB
	library *services.SongLibraryService
}

func NewDownloadsHandler(db *gorm.DB, library *services.SongLibraryService) *DownloadsHandler {
	return &DownloadsHandler{db: db, library: library}
}

// ListDownloads returns the user's offline library.
// GET /api/v1/downloads
func (h *DownloadsHandler) ListDownloads(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var downloads []models.Download
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&downloads).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to list downloads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloads": downloads,
		"total":     len(downloads),
		"limit":     maxDownloadedSongs,
	})
}

// CreateDownload packages a song for offline use, honoring the per-user cap.
// POST /api/v1/downloads/:songId?format=
func (h *DownloadsHandler) CreateDownload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	songID := c.Param("songId")

	format := c.DefaultQuery("format", string(services.FormatWestern))
	switch services.NotationFormat(format) {
	case services.FormatSargam, services.FormatWestern, services.FormatAlphabetical:
	default:
		respondError(c, http.StatusBadRequest, codeUnsupportedFormat,
			fmt.Sprintf("Unsupported notation format %q", format))
		return
	}

	if _, err := h.library.GetSong(songID); err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}

	var count int64
	if err := h.db.Model(&models.Download{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to check download quota")
		return
	}
	if count >= maxDownloadedSongs {
		respondError(c, http.StatusForbidden, codeDownloadLimit,
			fmt.Sprintf("Offline library is limited to %d songs; remove one first", maxDownloadedSongs))
		return
	}

	var existing models.Download
	if err := h.db.Where("user_id = ? AND song_id = ?", userID, songID).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, codeConflict, "Song is already downloaded")
		return
	}

	download := models.Download{
		UserID:    userID,
		SongID:    songID,
		Format:    format,
		ExpiresAt: time.Now().Add(downloadLinkTTL),
	}
	if err := h.db.Create(&download).Error; err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to create download")
		return
	}
	if err := h.library.IncrementDownloadCount(songID); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to update song")
		return
	}

	c.JSON(http.StatusCreated, download)
}

// DeleteDownload removes a song from the offline library.
// DELETE /api/v1/downloads/:songId
func (h *DownloadsHandler) DeleteDownload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result := h.db.Where("user_id = ? AND song_id = ?", userID, c.Param("songId")).Delete(&models.Download{})
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to delete download")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, codeNotFound, "Download not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Download removed"})
}
