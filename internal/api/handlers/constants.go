package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darthvader58/tansen/internal/middleware"
)

// Machine-readable error codes returned in the error envelope.
const (
	codeInvalidRequest     = "INVALID_REQUEST"
	codeInvalidScale       = "INVALID_SCALE"
	codeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	codeNotFound           = "NOT_FOUND"
	codeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	codeMaxConcurrentJobs  = "MAX_CONCURRENT_JOBS"
	codeUnauthorized       = "UNAUTHORIZED"
	codeConflict           = "CONFLICT"
	codeInternalError      = "INTERNAL_ERROR"
	codeExternalCatalog    = "EXTERNAL_CATALOG_ERROR"
	codeDownloadLimit      = "DOWNLOAD_LIMIT_EXCEEDED"
	codeFileTooLarge       = "FILE_TOO_LARGE"
	codeUnsupportedAudio   = "UNSUPPORTED_AUDIO_FORMAT"
)

const (
	maxDownloadedSongs = 50
	defaultSearchLimit = 10
)

// respondError writes the uniform error envelope.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

// currentUserID pulls the authenticated user ID from the context,
// responding 401 itself when it is missing.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
	}
	return userID, ok
}
