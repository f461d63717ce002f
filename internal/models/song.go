package models

import (
	"time"

	"gorm.io/gorm"
)

// Song difficulty levels
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Song sources
const (
	SourceLibrary     = "library"
	SourceUserUpload  = "user_upload"
	SourceYouTube     = "youtube"
	SourceSpotify     = "spotify"
	SourceMusicBrainz = "musicbrainz"
)

type Song struct {
	ID            uint           `gorm:"primarykey" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	SongID        string         `gorm:"uniqueIndex;not null" json:"song_id"`
	Title         string         `gorm:"not null;index" json:"title"`
	Artist        string         `gorm:"index" json:"artist"`
	Album         string         `json:"album,omitempty"`
	Duration      int            `json:"duration"` // seconds
	Genre         string         `gorm:"index" json:"genre,omitempty"`
	Difficulty    string         `gorm:"default:'beginner';index" json:"difficulty"`
	OriginalKey   string         `json:"original_key,omitempty"`
	Tempo         int            `json:"tempo,omitempty"` // BPM
	TimeSignature string         `json:"time_signature,omitempty"`
	Source        string         `gorm:"default:'library'" json:"source"`
	SpotifyID     string         `json:"spotify_id,omitempty"`
	YouTubeID     string         `json:"youtube_id,omitempty"`
	MusicBrainzID string         `json:"musicbrainz_id,omitempty"`
	AlbumArt      string         `json:"album_art,omitempty"`
	AudioPath     string         `json:"-"` // storage path, resolved by the storage collaborator
	Instruments   StringList     `gorm:"type:text" json:"available_instruments"`
	CreatedBy     uint           `gorm:"index" json:"-"`
	IsPublic      bool           `gorm:"default:true;index" json:"is_public"`
	DownloadCount int            `gorm:"default:0" json:"download_count"`
	FavoriteCount int            `gorm:"default:0" json:"favorite_count"`
}

// SongSearchResult is a unified search hit across the library and
// external catalogs (Spotify, MusicBrainz)
type SongSearchResult struct {
	SongID     string `json:"songId"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	AlbumArt   string `json:"albumArt,omitempty"`
	Duration   int    `json:"duration"`
	Key        string `json:"key,omitempty"`
	Source     string `json:"source"`
	PreviewURL string `json:"previewUrl,omitempty"`
}
