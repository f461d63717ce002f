package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/models"
)

// ErrSongNotFound is returned when a song lookup by public ID misses.
var ErrSongNotFound = errors.New("song not found")

// SongFilter narrows catalog browsing. Zero values mean "no filter".
type SongFilter struct {
	Query      string
	Genre      string
	Difficulty string
	Instrument string
	Page       int
	PageSize   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPagination normalizes user-supplied paging values: page floors at 1,
// pageSize falls back to the default and caps at the maximum.
func clampPagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

type SongLibraryService struct {
	db *gorm.DB
}

func NewSongLibraryService(db *gorm.DB) *SongLibraryService {
	return &SongLibraryService{db: db}
}

// GetSong retrieves a single public song by its public ID.
func (s *SongLibraryService) GetSong(songID string) (*models.Song, error) {
	var song models.Song
	if err := s.db.Where("song_id = ?", songID).First(&song).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &song, nil
}

// ListSongs returns a filtered, paginated slice of the public catalog
// together with the total match count.
func (s *SongLibraryService) ListSongs(filter SongFilter) ([]models.Song, int64, error) {
	page, pageSize := clampPagination(filter.Page, filter.PageSize)

	query := s.db.Model(&models.Song{}).Where("is_public = ?", true)

	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(artist) LIKE ?", like, like)
	}
	if filter.Genre != "" {
		query = query.Where("LOWER(genre) = ?", strings.ToLower(filter.Genre))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Instrument != "" {
		// Instruments are stored comma-joined; match the whole token.
		query = query.Where(
			"',' || LOWER(instruments) || ',' LIKE ?",
			"%,"+strings.ToLower(filter.Instrument)+",%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var songs []models.Song
	if err := query.
		Order("favorite_count DESC, title ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&songs).Error; err != nil {
		return nil, 0, err
	}

	return songs, total, nil
}

// CreateSong inserts a catalog song. The public ID is assigned here so
// callers never pick their own.
func (s *SongLibraryService) CreateSong(song *models.Song) error {
	if song.Title == "" {
		return fmt.Errorf("song title is required")
	}
	song.SongID = uuid.New().String()
	if song.Source == "" {
		song.Source = models.SourceLibrary
	}
	return s.db.Create(song).Error
}

// UpdateSong persists mutable catalog fields for an existing song.
func (s *SongLibraryService) UpdateSong(song *models.Song) error {
	return s.db.Save(song).Error
}

// DeleteSong soft-deletes a song by its public ID.
func (s *SongLibraryService) DeleteSong(songID string) error {
	result := s.db.Where("song_id = ?", songID).Delete(&models.Song{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSongNotFound
	}
	return nil
}

// IncrementDownloadCount bumps the song's download counter atomically.
func (s *SongLibraryService) IncrementDownloadCount(songID string) error {
	return s.db.Model(&models.Song{}).
		Where("song_id = ?", songID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// AdjustFavoriteCount shifts the song's favorite counter by delta,
// clamping at zero.
func (s *SongLibraryService) AdjustFavoriteCount(songID string, delta int) error {
	return s.db.Model(&models.Song{}).
		Where("song_id = ?", songID).
		UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count + ?, 0)", delta)).Error
}
