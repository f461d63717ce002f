package database

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/models"
)

// Connect opens the Postgres connection pool used by the whole service.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies schema migrations for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Song{},
		&models.Transcription{},
		&models.TranscriptionJob{},
		&models.Favorite{},
		&models.Download{},
		&models.PracticeSession{},
	)
}

// seedFile is the on-disk shape of the song catalog seed.
type seedFile struct {
	Songs []seedSong `yaml:"songs"`
}

type seedSong struct {
	Title         string   `yaml:"title"`
	Artist        string   `yaml:"artist"`
	Album         string   `yaml:"album"`
	Duration      int      `yaml:"duration"`
	Genre         string   `yaml:"genre"`
	Difficulty    string   `yaml:"difficulty"`
	OriginalKey   string   `yaml:"original_key"`
	Tempo         int      `yaml:"tempo"`
	TimeSignature string   `yaml:"time_signature"`
	SpotifyID     string   `yaml:"spotify_id"`
	YouTubeID     string   `yaml:"youtube_id"`
	MusicBrainzID string   `yaml:"musicbrainz_id"`
	AlbumArt      string   `yaml:"album_art"`
	Instruments   []string `yaml:"instruments"`
}

// SeedSongs loads the catalog seed file and inserts any songs that are not
// already present, keyed by title and artist. A missing path is a no-op so
// deployments without a seed file start with an empty catalog.
func SeedSongs(db *gorm.DB, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	inserted := 0
	for _, s := range seed.Songs {
		var count int64
		if err := db.Model(&models.Song{}).
			Where("title = ? AND artist = ?", s.Title, s.Artist).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing song %q: %w", s.Title, err)
		}
		if count > 0 {
			continue
		}

		song := models.Song{
			SongID:        uuid.New().String(),
			Title:         s.Title,
			Artist:        s.Artist,
			Album:         s.Album,
			Duration:      s.Duration,
			Genre:         s.Genre,
			Difficulty:    s.Difficulty,
			OriginalKey:   s.OriginalKey,
			Tempo:         s.Tempo,
			TimeSignature: s.TimeSignature,
			Source:        models.SourceLibrary,
			SpotifyID:     s.SpotifyID,
			YouTubeID:     s.YouTubeID,
			MusicBrainzID: s.MusicBrainzID,
			AlbumArt:      s.AlbumArt,
			Instruments:   models.StringList(s.Instruments),
			IsPublic:      true,
		}
		if err := db.Create(&song).Error; err != nil {
			return fmt.Errorf("failed to seed song %q: %w", s.Title, err)
		}
		inserted++
	}

	logger.Info("Seeded song catalog", logger.Fields{
		"path":     path,
		"total":    len(seed.Songs),
		"inserted": inserted,
	})
	return nil
}
