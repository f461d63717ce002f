package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/models"
)

// RecommendationService scores the public catalog against a user's
// profile and listening history.
type RecommendationService struct {
	db *gorm.DB
}

func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{db: db}
}

// ScoredSong pairs a catalog song with its recommendation score.
type ScoredSong struct {
	Song  models.Song `json:"song"`
	Score float64     `json:"score"`
}

// skillRank orders skill levels so adjacency can be computed.
var skillRank = map[string]int{
	models.SkillBeginner:     0,
	models.SkillIntermediate: 1,
	models.SkillAdvanced:     2,
}

// scoreSong computes the recommendation score for one song:
//   - difficulty match with the user's skill level: 0.4 exact, 0.2 for an
//     adjacent level
//   - instrument availability: 0.3 when the user's primary instrument is
//     transcribed, 0.1 when any transcription exists
//   - genre: 0.2 when the genre appears in the user's favorited genres
//   - popularity: 0.1 above ten favorites, 0.05 above five
func scoreSong(song models.Song, user models.User, favoriteGenres map[string]bool) float64 {
	score := 0.0

	userRank, userKnown := skillRank[user.SkillLevel]
	songRank, songKnown := skillRank[song.Difficulty]
	if userKnown && songKnown {
		switch diff := songRank - userRank; {
		case diff == 0:
			score += 0.4
		case diff == 1 || diff == -1:
			score += 0.2
		}
	}

	if len(song.Instruments) > 0 {
		hasPrimary := false
		for _, inst := range song.Instruments {
			if strings.EqualFold(inst, user.PrimaryInstrument) {
				hasPrimary = true
				break
			}
		}
		if hasPrimary {
			score += 0.3
		} else {
			score += 0.1
		}
	}

	if song.Genre != "" && favoriteGenres[strings.ToLower(song.Genre)] {
		score += 0.2
	}

	switch {
	case song.FavoriteCount > 10:
		score += 0.1
	case song.FavoriteCount > 5:
		score += 0.05
	}

	return score
}

// Recommend returns the top-scoring public songs for the user, excluding
// songs they have already favorited.
func (s *RecommendationService) Recommend(userID uint, limit int) ([]ScoredSong, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	var favorites []models.Favorite
	if err := s.db.Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		return nil, err
	}

	favoritedIDs := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		favoritedIDs[fav.SongID] = true
	}

	favoriteGenres, err := s.favoriteGenres(favorites)
	if err != nil {
		return nil, err
	}

	var songs []models.Song
	if err := s.db.Where("is_public = ?", true).Find(&songs).Error; err != nil {
		return nil, err
	}

	scored := make([]ScoredSong, 0, len(songs))
	for _, song := range songs {
		if favoritedIDs[song.SongID] {
			continue
		}
		scored = append(scored, ScoredSong{
			Song:  song,
			Score: scoreSong(song, user, favoriteGenres),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// favoriteGenres collects the lowercased genres of the user's favorited
// songs.
func (s *RecommendationService) favoriteGenres(favorites []models.Favorite) (map[string]bool, error) {
	genres := make(map[string]bool)
	if len(favorites) == 0 {
		return genres, nil
	}

	songIDs := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		songIDs = append(songIDs, fav.SongID)
	}

	var favSongs []models.Song
	if err := s.db.Where("song_id IN ?", songIDs).Find(&favSongs).Error; err != nil {
		return nil, err
	}
	for _, song := range favSongs {
		if song.Genre != "" {
			genres[strings.ToLower(song.Genre)] = true
		}
	}
	return genres, nil
}
