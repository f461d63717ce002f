package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/models"
)

// ErrTranscriptionNotFound is returned when no transcription exists for
// the requested song and instrument.
var ErrTranscriptionNotFound = errors.New("transcription not found")

// ErrJobNotFound is returned when a job lookup by public ID misses.
var ErrJobNotFound = errors.New("transcription job not found")

// TranscriptionService owns transcription storage and job bookkeeping.
// The audio analysis itself runs out of process; this service tracks job
// state and persists finished notation.
type TranscriptionService struct {
	db *gorm.DB
}

func NewTranscriptionService(db *gorm.DB) *TranscriptionService {
	return &TranscriptionService{db: db}
}

// GetTranscription retrieves the stored notation for a song and
// instrument. An empty instrument matches any transcription of the song.
func (s *TranscriptionService) GetTranscription(songID, instrument string) (*models.Transcription, error) {
	query := s.db.Where("song_id = ?", songID)
	if instrument != "" {
		query = query.Where("instrument = ?", instrument)
	}

	var transcription models.Transcription
	if err := query.First(&transcription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTranscriptionNotFound
		}
		return nil, err
	}
	return &transcription, nil
}

// SaveTranscription stores finished notation, replacing any previous
// transcription of the same song and instrument.
func (s *TranscriptionService) SaveTranscription(t *models.Transcription) error {
	if t.TranscriptionID == "" {
		t.TranscriptionID = uuid.New().String()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("song_id = ? AND instrument = ?", t.SongID, t.Instrument).
			Delete(&models.Transcription{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

// CreateJob enqueues a transcription job for the given instruments.
func (s *TranscriptionService) CreateJob(userID uint, songID string, instruments []string) (*models.TranscriptionJob, error) {
	if len(instruments) == 0 {
		return nil, fmt.Errorf("at least one instrument is required")
	}

	job := models.TranscriptionJob{
		JobID:       uuid.New().String(),
		SongID:      songID,
		UserID:      userID,
		Status:      models.JobQueued,
		Instruments: models.StringList(instruments),
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, err
	}

	logger.Info("Transcription job queued", logger.Fields{
		"job_id":      job.JobID,
		"song_id":     songID,
		"user_id":     userID,
		"instruments": instruments,
	})
	return &job, nil
}

// GetJob retrieves a job by its public ID, scoped to its owner.
func (s *TranscriptionService) GetJob(jobID string, userID uint) (*models.TranscriptionJob, error) {
	var job models.TranscriptionJob
	if err := s.db.Where("job_id = ? AND user_id = ?", jobID, userID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateJobProgress moves a job into the processing state at the given
// completion percentage.
func (s *TranscriptionService) UpdateJobProgress(jobID string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return s.db.Model(&models.TranscriptionJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":   models.JobProcessing,
			"progress": progress,
		}).Error
}

// CompleteJob marks a job finished.
func (s *TranscriptionService) CompleteJob(jobID string) error {
	return s.db.Model(&models.TranscriptionJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":   models.JobCompleted,
			"progress": 100,
		}).Error
}

// FailJob marks a job failed with a user-visible reason.
func (s *TranscriptionService) FailJob(jobID string, reason string) error {
	return s.db.Model(&models.TranscriptionJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status": models.JobFailed,
			"error":  reason,
		}).Error
}

// ListUserJobs returns the user's jobs, newest first.
func (s *TranscriptionService) ListUserJobs(userID uint, limit int) ([]models.TranscriptionJob, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var jobs []models.TranscriptionJob
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
