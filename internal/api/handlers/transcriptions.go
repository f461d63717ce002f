package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/darthvader58/tansen/internal/config"
	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/metrics"
	"github.com/darthvader58/tansen/internal/middleware"
	"github.com/darthvader58/tansen/internal/models"
	"github.com/darthvader58/tansen/internal/services"
)

type TranscriptionsHandler struct {
	cfg            *config.Config
	library        *services.SongLibraryService
	transcriptions *services.TranscriptionService
	transposition  *services.TranspositionService
	notation       *services.NotationService
	exporter       *services.MIDIExporter
	transcriber    services.Transcriber
	limiter        *middleware.RateLimiter
	cloudwatch     *metrics.Client
}

func NewTranscriptionsHandler(
	cfg *config.Config,
	library *services.SongLibraryService,
	transcriptions *services.TranscriptionService,
	transposition *services.TranspositionService,
	notation *services.NotationService,
	exporter *services.MIDIExporter,
	transcriber services.Transcriber,
	limiter *middleware.RateLimiter,
	cloudwatch *metrics.Client,
) *TranscriptionsHandler {
	return &TranscriptionsHandler{
		cfg:            cfg,
		library:        library,
		transcriptions: transcriptions,
		transposition:  transposition,
		notation:       notation,
		exporter:       exporter,
		transcriber:    transcriber,
		limiter:        limiter,
		cloudwatch:     cloudwatch,
	}
}

type uploadForm struct {
	Title       string
	Artist      string
	Instruments []string
}

func (f uploadForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&f.Instruments, validation.Required, validation.Length(1, 5)),
	)
}

// Upload accepts an audio file and queues transcription jobs for the
// requested instruments.
// POST /api/v1/transcriptions/upload
func (h *TranscriptionsHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	if !h.transcriber.Enabled() {
		respondError(c, http.StatusServiceUnavailable, codeInternalError, "Transcription backend is not configured")
		return
	}

	form := uploadForm{
		Title:  c.PostForm("title"),
		Artist: c.PostForm("artist"),
	}
	for _, inst := range strings.Split(c.PostForm("instruments"), ",") {
		if inst = strings.TrimSpace(inst); inst != "" {
			form.Instruments = append(form.Instruments, inst)
		}
	}
	if err := form.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "Audio file is required")
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	supported := false
	for _, format := range h.cfg.SupportedAudioFormats {
		if ext == format {
			supported = true
			break
		}
	}
	if !supported {
		respondError(c, http.StatusBadRequest, codeUnsupportedAudio,
			fmt.Sprintf("Unsupported audio format %q; supported: %s", ext, strings.Join(h.cfg.SupportedAudioFormats, ", ")))
		return
	}

	if file.Size > h.cfg.MaxAudioFileSizeMB*1024*1024 {
		respondError(c, http.StatusRequestEntityTooLarge, codeFileTooLarge,
			fmt.Sprintf("Audio file exceeds the %d MB limit", h.cfg.MaxAudioFileSizeMB))
		return
	}

	// Reserve quota up front; failed submissions give it back below.
	if !h.limiter.TryReserveSubmission(userID) {
		remaining, resetAt := h.limiter.Info(userID)
		c.Header("Retry-After", resetAt.UTC().Format(time.RFC1123))
		respondError(c, http.StatusTooManyRequests, codeRateLimitExceeded,
			fmt.Sprintf("Daily transcription limit reached (%d remaining)", remaining))
		return
	}
	if !h.limiter.TryAcquireJob(userID) {
		h.limiter.ReleaseSubmission(userID)
		respondError(c, http.StatusTooManyRequests, codeMaxConcurrentJobs,
			"Too many transcription jobs in progress; wait for one to finish")
		return
	}

	// Persist the upload before any job row references it.
	audioPath := filepath.Join(h.cfg.UploadDir, uuid.New().String()+"."+ext)
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.releaseUpload(userID)
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to store audio file")
		return
	}
	if err := c.SaveUploadedFile(file, audioPath); err != nil {
		h.releaseUpload(userID)
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to store audio file")
		return
	}

	song := models.Song{
		Title:       form.Title,
		Artist:      form.Artist,
		Source:      models.SourceUserUpload,
		AudioPath:   audioPath,
		Instruments: models.StringList(form.Instruments),
		CreatedBy:   userID,
		IsPublic:    false,
	}
	if err := h.library.CreateSong(&song); err != nil {
		h.releaseUpload(userID)
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to register song")
		return
	}

	job, err := h.transcriptions.CreateJob(userID, song.SongID, form.Instruments)
	if err != nil {
		h.releaseUpload(userID)
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to create transcription job")
		return
	}

	go h.runJob(job, &song)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.JobID,
		"song_id": song.SongID,
		"status":  job.Status,
	})
}

// releaseUpload gives back both limiter reservations when a submission
// fails after they were taken.
func (h *TranscriptionsHandler) releaseUpload(userID uint) {
	h.limiter.ReleaseJob(userID)
	h.limiter.ReleaseSubmission(userID)
}

// runJob drives one queued job through the external transcriber. It owns
// the user's concurrency slot and releases it on every exit path.
func (h *TranscriptionsHandler) runJob(job *models.TranscriptionJob, song *models.Song) {
	defer h.limiter.ReleaseJob(job.UserID)

	ctx := context.Background()
	start := time.Now()

	for i, instrument := range job.Instruments {
		progress := i * 100 / len(job.Instruments)
		if err := h.transcriptions.UpdateJobProgress(job.JobID, progress); err != nil {
			logger.Error("Failed to update job progress", err, logger.Fields{"job_id": job.JobID})
		}

		notation, err := h.transcriber.Transcribe(ctx, song.AudioPath, instrument)
		if err != nil {
			logger.Error("Transcription failed", err, logger.Fields{
				"job_id":     job.JobID,
				"song_id":    song.SongID,
				"instrument": instrument,
			})
			if failErr := h.transcriptions.FailJob(job.JobID, fmt.Sprintf("transcription failed for %s", instrument)); failErr != nil {
				logger.Error("Failed to mark job failed", failErr, logger.Fields{"job_id": job.JobID})
			}
			h.cloudwatch.RecordTranscriptionJob(instrument, time.Since(start), false)
			return
		}

		// Fill in MIDI numbers the analysis service left out.
		for n := range notation.Notes {
			if notation.Notes[n].PitchMIDI == 0 {
				if midiKey, err := services.NoteNameToMIDI(notation.Notes[n].Pitch); err == nil {
					notation.Notes[n].PitchMIDI = midiKey
				}
			}
		}

		if err := h.transcriptions.SaveTranscription(&models.Transcription{
			SongID:         song.SongID,
			UserID:         job.UserID,
			Instrument:     instrument,
			Notation:       notation,
			ProcessingTime: time.Since(start).Seconds(),
		}); err != nil {
			logger.Error("Failed to save transcription", err, logger.Fields{"job_id": job.JobID})
			if failErr := h.transcriptions.FailJob(job.JobID, "failed to store notation"); failErr != nil {
				logger.Error("Failed to mark job failed", failErr, logger.Fields{"job_id": job.JobID})
			}
			h.cloudwatch.RecordTranscriptionJob(instrument, time.Since(start), false)
			return
		}
		h.cloudwatch.RecordTranscriptionJob(instrument, time.Since(start), true)
	}

	if err := h.transcriptions.CompleteJob(job.JobID); err != nil {
		logger.Error("Failed to mark job completed", err, logger.Fields{"job_id": job.JobID})
	}
}

// ListJobs returns the caller's transcription jobs, newest first.
// GET /api/v1/transcriptions?limit=
func (h *TranscriptionsHandler) ListJobs(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.transcriptions.ListUserJobs(userID, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetStatus reports a job's progress.
// GET /api/v1/transcriptions/:id/status
func (h *TranscriptionsHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required")
		return
	}

	job, err := h.transcriptions.GetJob(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Job not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetTranscription returns a song's notation, optionally transposed to a
// target key and rendered in the requested notation system.
// GET /api/v1/transcriptions/:id?instrument=&format=&scale=&mode=&sargam_style=
func (h *TranscriptionsHandler) GetTranscription(c *gin.Context) {
	songID := c.Param("id")
	instrument := c.Query("instrument")

	song, err := h.library.GetSong(songID)
	if err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}

	transcription, err := h.transcriptions.GetTranscription(songID, instrument)
	if err != nil {
		if errors.Is(err, services.ErrTranscriptionNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "No transcription for this song and instrument")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load transcription")
		return
	}

	notes := transcription.Notation.Notes
	effectiveKey := song.OriginalKey
	if effectiveKey == "" {
		effectiveKey = "C"
	}

	// Optional transposition from the song's key to the requested scale.
	if scale := c.Query("scale"); scale != "" {
		mode := c.DefaultQuery("mode", services.ModeMajor)
		transposed, err := h.transposition.TransposeNotes(notes, effectiveKey, scale, mode)
		if err != nil {
			if errors.Is(err, services.ErrInvalidKey) {
				respondError(c, http.StatusBadRequest, codeInvalidScale,
					fmt.Sprintf("Invalid scale %q", scale))
				return
			}
			respondError(c, http.StatusInternalServerError, codeInternalError, "Transposition failed")
			return
		}
		if semitones, err := h.transposition.SemitoneDifference(effectiveKey, scale); err == nil {
			h.cloudwatch.RecordTransposition(semitones, len(transposed))
		}
		notes = transposed
		effectiveKey = scale
	}

	format := services.NotationFormat(c.DefaultQuery("format", string(services.FormatAlphabetical)))
	style := services.SargamStyle(c.DefaultQuery("sargam_style", string(services.StyleHindustani)))

	result, err := h.notation.ConvertNotes(notes, format, style)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			respondError(c, http.StatusBadRequest, codeUnsupportedFormat,
				fmt.Sprintf("Unsupported notation format %q", format))
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Notation conversion failed")
		return
	}

	response := gin.H{
		"transcription_id": transcription.TranscriptionID,
		"song_id":          song.SongID,
		"instrument":       transcription.Instrument,
		"key":              effectiveKey,
		"notation":         result,
		"chords":           transcription.Notation.Chords,
	}
	if len(result.Skipped) > 0 {
		response["warning"] = fmt.Sprintf("%d notes could not be converted and were skipped", len(result.Skipped))
		response["skipped_notes"] = result.Skipped
	}
	c.JSON(http.StatusOK, response)
}

// GetMIDI streams the transcription as a Standard MIDI File, optionally
// transposed first.
// GET /api/v1/transcriptions/:id/midi?instrument=&scale=
func (h *TranscriptionsHandler) GetMIDI(c *gin.Context) {
	songID := c.Param("id")

	song, err := h.library.GetSong(songID)
	if err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Song not found")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load song")
		return
	}

	transcription, err := h.transcriptions.GetTranscription(songID, c.Query("instrument"))
	if err != nil {
		if errors.Is(err, services.ErrTranscriptionNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "No transcription for this song and instrument")
			return
		}
		respondError(c, http.StatusInternalServerError, codeInternalError, "Failed to load transcription")
		return
	}

	notes := transcription.Notation.Notes
	if scale := c.Query("scale"); scale != "" {
		fromKey := song.OriginalKey
		if fromKey == "" {
			fromKey = "C"
		}
		notes, err = h.transposition.TransposeNotes(notes, fromKey, scale, services.ModeMajor)
		if err != nil {
			if errors.Is(err, services.ErrInvalidKey) {
				respondError(c, http.StatusBadRequest, codeInvalidScale, fmt.Sprintf("Invalid scale %q", scale))
				return
			}
			respondError(c, http.StatusInternalServerError, codeInternalError, "Transposition failed")
			return
		}
	}

	data, skipped, err := h.exporter.Export(notes, song.Title, song.Tempo)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "MIDI export failed")
		return
	}
	if len(skipped) > 0 {
		c.Header("X-Skipped-Notes", fmt.Sprintf("%d", len(skipped)))
	}

	filename := fmt.Sprintf("%s.mid", strings.ReplaceAll(song.Title, " ", "_"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "audio/midi", data)
}
