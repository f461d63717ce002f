package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Transcription job statuses
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Note is a single transcribed note event. Pitch is the canonical string
// form (letter, optional '#', single digit octave, e.g. "C4", "A#5").
// PitchMIDI is the auxiliary integer pitch index; zero means absent.
type Note struct {
	Pitch     string  `json:"pitch"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Velocity  int     `json:"velocity"`
	PitchMIDI int     `json:"pitchMidi,omitempty"`
}

// UnmarshalJSON applies the default velocity of 64 when the field is
// absent from the payload.
func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	aux := alias{Velocity: 64}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Note(aux)
	return nil
}

// Chord is a labeled harmonic event. It is carried alongside notes in
// notation output but never transformed.
type Chord struct {
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
}

// NotationData is the transcribed content of a song for one instrument,
// stored as a JSON column.
type NotationData struct {
	Notes  []Note  `json:"notes"`
	Chords []Chord `json:"chords,omitempty"`
}

func (d NotationData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *NotationData) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = NotationData{}
		return nil
	default:
		return fmt.Errorf("unsupported type for NotationData: %T", value)
	}
}

// StringList is a comma-joined text column (instrument lists). The plain
// format lets SQL match a single token with a LIKE over the delimited
// column; entries must not contain commas.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

func (l *StringList) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

type Transcription struct {
	ID              uint           `gorm:"primarykey" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	TranscriptionID string         `gorm:"uniqueIndex;not null" json:"transcription_id"`
	SongID          string         `gorm:"not null;index" json:"song_id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Instrument      string         `gorm:"not null" json:"instrument"`
	Notation        NotationData   `gorm:"type:jsonb" json:"notation_data"`
	ProcessingTime  float64        `json:"processing_time,omitempty"` // seconds
}

type TranscriptionJob struct {
	ID          uint           `gorm:"primarykey" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	JobID       string         `gorm:"uniqueIndex;not null" json:"job_id"`
	SongID      string         `gorm:"index" json:"song_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Status      string         `gorm:"default:'queued';index" json:"status"`
	Progress    int            `gorm:"default:0" json:"progress"` // 0-100
	Instruments StringList     `gorm:"type:text" json:"instruments"`
	Error       string         `json:"error,omitempty"`
}
