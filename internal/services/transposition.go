package services

import (
	"errors"
	"fmt"

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/models"
)

// Scale modes accepted by TransposeNotes
const (
	ModeMajor = "major"
	ModeMinor = "minor"
)

// ErrInvalidKey is returned when a key string matches none of the 12
// chromatic names or their flat aliases.
var ErrInvalidKey = errors.New("invalid key")

// TranspositionService shifts note sequences between musical keys.
// It is stateless and safe for concurrent use.
type TranspositionService struct{}

func NewTranspositionService() *TranspositionService {
	return &TranspositionService{}
}

// SemitoneDifference computes the raw interval between two keys as
// to-index minus from-index on the chromatic scale. The difference is not
// octave-minimized: G -> C yields -7, not +5. Flat spellings are accepted
// as aliases of their sharp equivalents.
func (s *TranspositionService) SemitoneDifference(fromKey, toKey string) (int, error) {
	fromPos, ok := chromaticIndex(fromKey)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, fromKey)
	}
	toPos, ok := chromaticIndex(toKey)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, toKey)
	}

	diff := toPos - fromPos
	logger.Debug("Computed transposition interval", logger.Fields{
		"from_key":  fromKey,
		"to_key":    toKey,
		"semitones": diff,
	})
	return diff, nil
}

// TransposePitch shifts a single pitch by the given number of semitones,
// wrapping the chromatic index into [0,11] and carrying whole octaves for
// arbitrarily large shifts. The output is always sharp-spelled.
//
// Malformed pitch strings are returned unchanged so that one bad note
// never fails a whole batch; callers needing strict validation must
// pre-validate.
func (s *TranspositionService) TransposePitch(pitch string, semitones int) string {
	noteName, octave, ok := parsePitch(pitch)
	if !ok {
		return pitch
	}

	notePos, ok := chromaticIndex(noteName)
	if !ok {
		return pitch
	}

	newPos := notePos + semitones
	octaveChange := 0
	for newPos < 0 {
		newPos += 12
		octaveChange--
	}
	for newPos >= 12 {
		newPos -= 12
		octaveChange++
	}

	return fmt.Sprintf("%s%d", noteNames[newPos], octave+octaveChange)
}

// TransposeNotes transposes every note from one key to another. Event
// order, start time, duration and velocity are untouched. The auxiliary
// PitchMIDI index, when present, is shifted by the same raw delta rather
// than re-derived from the wrapped pitch string.
//
// mode is accepted for API compatibility; minor-mode harmonic respelling
// is a documented pass-through.
func (s *TranspositionService) TransposeNotes(notes []models.Note, fromKey, toKey, mode string) ([]models.Note, error) {
	semitones, err := s.SemitoneDifference(fromKey, toKey)
	if err != nil {
		return nil, err
	}

	logger.Info("Transposing notes", logger.Fields{
		"count":     len(notes),
		"from_key":  fromKey,
		"to_key":    toKey,
		"mode":      mode,
		"semitones": semitones,
	})

	transposed := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		out := note
		if note.Pitch != "" {
			out.Pitch = s.TransposePitch(note.Pitch, semitones)
		}
		if note.PitchMIDI != 0 {
			out.PitchMIDI = note.PitchMIDI + semitones
		}
		transposed = append(transposed, out)
	}

	if mode == ModeMinor {
		transposed = applyMinorScaleAdjustments(transposed, toKey)
	}

	return transposed, nil
}

// applyMinorScaleAdjustments would respell notes against the target minor
// scale. Harmonic analysis is not implemented; notes pass through
// unchanged.
func applyMinorScaleAdjustments(notes []models.Note, _ string) []models.Note {
	return notes
}

// ValidateTransposition checks the round-trip property at the data level:
// reversing each transposed pitch by -semitones must reproduce the
// original pitch exactly. Returns false on any mismatch or on a length
// mismatch; it never returns an error. Diagnostic utility, not a runtime
// guard.
func (s *TranspositionService) ValidateTransposition(original, transposed []models.Note, semitones int) bool {
	if len(original) != len(transposed) {
		return false
	}

	for i := range original {
		origPitch := original[i].Pitch
		transPitch := transposed[i].Pitch
		if origPitch == "" || transPitch == "" {
			continue
		}

		backPitch := s.TransposePitch(transPitch, -semitones)
		if backPitch != origPitch {
			logger.Warn("Transposition validation failed", logger.Fields{
				"original":   origPitch,
				"transposed": transPitch,
				"round_trip": backPitch,
				"note_index": i,
				"semitones":  semitones,
			})
			return false
		}
	}

	return true
}
