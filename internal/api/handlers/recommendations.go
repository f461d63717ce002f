package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/darthvader58/tansen/internal/services"
)

type RecommendationsHandler struct {
	recommendations *services.RecommendationService
}

func NewRecommendationsHandler(recommendations *services.RecommendationService) *RecommendationsHandler {
	return &RecommendationsHandler{recommendations: recommendations}
}

// GetRecommendations returns songs scored against the user's profile.
// GET /api/v1/recommendations?limit=
func (h *RecommendationsHandler) GetRecommendations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	scored, err := h.recommendations.Recommend(userID, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to compute recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": scored,
		"total":           len(scored),
	})
}
