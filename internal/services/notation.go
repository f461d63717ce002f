package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/darthvader58/tansen/internal/logger"
	"github.com/darthvader58/tansen/internal/models"
)

// NotationFormat selects the target presentation format.
type NotationFormat string

const (
	FormatSargam       NotationFormat = "sargam"
	FormatWestern      NotationFormat = "western"
	FormatAlphabetical NotationFormat = "alphabetical"
)

// SargamStyle selects the solfege symbol table for Sargam output.
type SargamStyle string

const (
	StyleHindustani SargamStyle = "hindustani"
	StyleCarnatic   SargamStyle = "carnatic"
)

// ErrUnsupportedFormat is returned by ConvertNotes for an unrecognized
// format value.
var ErrUnsupportedFormat = errors.New("unsupported notation format")

// hindustaniSargam maps chromatic note classes to Hindustani solfege
// symbols, komal/tivra swaras marked with flat/sharp signs.
var hindustaniSargam = map[string]string{
	"C": "Sa", "C#": "Re♭", "D": "Re", "D#": "Ga♭",
	"E": "Ga", "F": "Ma", "F#": "Ma♯",
	"G": "Pa", "G#": "Dha♭", "A": "Dha", "A#": "Ni♭", "B": "Ni",
}

// carnaticSargam maps chromatic note classes to numbered Carnatic swaras.
var carnaticSargam = map[string]string{
	"C": "S", "C#": "R1", "D": "R2", "D#": "G1",
	"E": "G2", "F": "M1", "F#": "M2",
	"G": "P", "G#": "D1", "A": "D2", "A#": "N1", "B": "N2",
}

// NotationNote is a single rendered symbol with the original timing
// preserved. Used by the Sargam and Alphabetical converters.
type NotationNote struct {
	Note      string  `json:"note"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Velocity  int     `json:"velocity"`
}

// WesternNote carries both the composite pitch string and its decomposed
// letter/octave fields.
type WesternNote struct {
	Pitch     string  `json:"pitch"`
	NoteName  string  `json:"noteName"`
	Octave    int     `json:"octave"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Velocity  int     `json:"velocity"`
}

// WesternNotation is the full Western-format output. TimeSignature and
// KeySignature are fixed placeholders, not derived from the notes.
type WesternNotation struct {
	Format        string        `json:"format"`
	Notes         []WesternNote `json:"notes"`
	TimeSignature string        `json:"timeSignature"`
	KeySignature  string        `json:"keySignature"`
}

// ConversionResult is the format-tagged output of ConvertNotes. Skipped
// holds the input indices of notes dropped by lossy converters so callers
// can surface a partial-conversion warning.
type ConversionResult struct {
	Format        NotationFormat `json:"format"`
	Style         SargamStyle    `json:"style,omitempty"`
	Notes         any            `json:"notes"`
	TimeSignature string         `json:"timeSignature,omitempty"`
	KeySignature  string         `json:"keySignature,omitempty"`
	Skipped       []int          `json:"-"`
}

// NotationService renders pitched notes into human-facing notation
// formats. It is stateless and safe for concurrent use.
type NotationService struct{}

func NewNotationService() *NotationService {
	return &NotationService{}
}

// ConvertToSargam renders notes as solfege symbols in the requested
// style. Notes whose pitch cannot be parsed are dropped from the output;
// their input indices are returned so the loss is observable.
//
// Octave markers are relative to the middle (Madhya) octave 4: lower
// octaves lowercase the symbol, upper octaves append an apostrophe. The
// marker does not scale with distance from the middle octave.
//
// baseKey is accepted for API compatibility but Sargam is always computed
// against fixed C = Sa; movable-Do rendering is not implemented.
func (s *NotationService) ConvertToSargam(notes []models.Note, style SargamStyle, baseKey string) ([]NotationNote, []int) {
	_ = baseKey

	sargamMap := hindustaniSargam
	if style == StyleCarnatic {
		sargamMap = carnaticSargam
	}

	converted := make([]NotationNote, 0, len(notes))
	var skipped []int

	for i, note := range notes {
		noteName, octave, ok := parsePitch(note.Pitch)
		if !ok {
			skipped = append(skipped, i)
			continue
		}

		symbol, ok := sargamMap[noteName]
		if !ok {
			// Unknown class falls back to the tonic, matching the
			// chromatic table being keyed by sharp spellings only.
			symbol = sargamMap["C"]
		}

		if octave < 4 {
			symbol = strings.ToLower(symbol)
		} else if octave > 4 {
			symbol += "'"
		}

		converted = append(converted, NotationNote{
			Note:      symbol,
			StartTime: note.StartTime,
			Duration:  note.Duration,
			Velocity:  note.Velocity,
		})
	}

	logger.Debug("Converted notes to sargam", logger.Fields{
		"style":   string(style),
		"in":      len(notes),
		"out":     len(converted),
		"skipped": len(skipped),
	})
	return converted, skipped
}

// ConvertToWestern renders notes with decomposed letter/octave fields.
// The same parse-or-skip policy as Sargam applies. The returned time and
// key signatures are constants, not inferred from the input.
func (s *NotationService) ConvertToWestern(notes []models.Note) (WesternNotation, []int) {
	converted := make([]WesternNote, 0, len(notes))
	var skipped []int

	for i, note := range notes {
		noteName, octave, ok := parsePitch(note.Pitch)
		if !ok {
			skipped = append(skipped, i)
			continue
		}

		converted = append(converted, WesternNote{
			Pitch:     note.Pitch,
			NoteName:  noteName,
			Octave:    octave,
			StartTime: note.StartTime,
			Duration:  note.Duration,
			Velocity:  note.Velocity,
		})
	}

	return WesternNotation{
		Format:        string(FormatWestern),
		Notes:         converted,
		TimeSignature: "4/4",
		KeySignature:  "C",
	}, skipped
}

// ConvertToAlphabetical passes every pitch string through verbatim. This
// is the only converter that never parses and never drops a note.
func (s *NotationService) ConvertToAlphabetical(notes []models.Note) []NotationNote {
	converted := make([]NotationNote, 0, len(notes))
	for _, note := range notes {
		converted = append(converted, NotationNote{
			Note:      note.Pitch,
			StartTime: note.StartTime,
			Duration:  note.Duration,
			Velocity:  note.Velocity,
		})
	}
	return converted
}

// ConvertNotes dispatches to the converter for the requested format and
// wraps the result with its format discriminator.
func (s *NotationService) ConvertNotes(notes []models.Note, format NotationFormat, sargamStyle SargamStyle) (ConversionResult, error) {
	switch format {
	case FormatSargam:
		converted, skipped := s.ConvertToSargam(notes, sargamStyle, "C")
		return ConversionResult{
			Format:  FormatSargam,
			Style:   sargamStyle,
			Notes:   converted,
			Skipped: skipped,
		}, nil
	case FormatWestern:
		western, skipped := s.ConvertToWestern(notes)
		return ConversionResult{
			Format:        FormatWestern,
			Notes:         western.Notes,
			TimeSignature: western.TimeSignature,
			KeySignature:  western.KeySignature,
			Skipped:       skipped,
		}, nil
	case FormatAlphabetical:
		return ConversionResult{
			Format: FormatAlphabetical,
			Notes:  s.ConvertToAlphabetical(notes),
		}, nil
	default:
		return ConversionResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
