package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Skill levels used for recommendation matching
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

type User struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"`
	DisplayName       string         `json:"display_name"`
	Role              string         `gorm:"default:'user';index" json:"role"` // "admin", "user"
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	SkillLevel        string         `gorm:"default:'beginner'" json:"skill_level"`
	PrimaryInstrument string         `json:"primary_instrument"`
}

// HashPassword hashes the user's password using bcrypt
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Favorite marks a song as favorited by a user
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_song_fav" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	SongID    string    `gorm:"not null;uniqueIndex:idx_user_song_fav;index" json:"song_id"`
}

// Download records a song packaged for offline use
type Download struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_song_dl" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	SongID    string    `gorm:"not null;uniqueIndex:idx_user_song_dl;index" json:"song_id"`
	Format    string    `gorm:"default:'western'" json:"format"`
	SizeBytes int64     `json:"size_bytes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PracticeSession records one practice run of a song
type PracticeSession struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
	SongID          string    `gorm:"not null;index" json:"song_id"`
	Instrument      string    `json:"instrument"`
	DurationSeconds int       `json:"duration_seconds"`
	Completed       bool      `gorm:"default:false" json:"completed"`
}
