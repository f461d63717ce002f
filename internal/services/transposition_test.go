package services

import (
	"errors"
	"testing"

	"github.com/darthvader58/tansen/internal/models"
)

func TestSemitoneDifference(t *testing.T) {
	svc := NewTranspositionService()

	tests := []struct {
		name     string
		fromKey  string
		toKey    string
		expected int
	}{
		{"C to D", "C", "D", 2},
		{"C to G", "C", "G", 7},
		{"G to C is raw difference", "G", "C", -7},
		{"C to C", "C", "C", 0},
		{"C to B", "C", "B", 11},
		{"B to C", "B", "C", -11},
		{"flat alias Bb equals A#", "Bb", "A#", 0},
		{"Db to Eb", "Db", "Eb", 2},
		{"C to F#", "C", "F#", 6},
		{"Ab to C", "Ab", "C", -8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := svc.SemitoneDifference(tt.fromKey, tt.toKey)
			if err != nil {
				t.Fatalf("SemitoneDifference(%q, %q) failed: %v", tt.fromKey, tt.toKey, err)
			}
			if diff != tt.expected {
				t.Errorf("SemitoneDifference(%q, %q) = %d, want %d", tt.fromKey, tt.toKey, diff, tt.expected)
			}
		})
	}
}

func TestSemitoneDifference_InvalidKey(t *testing.T) {
	svc := NewTranspositionService()

	for _, key := range []string{"H", "", "c", "X#", "C##"} {
		if _, err := svc.SemitoneDifference(key, "C"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("SemitoneDifference(%q, C): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := svc.SemitoneDifference("C", key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("SemitoneDifference(C, %q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestTransposePitch(t *testing.T) {
	svc := NewTranspositionService()

	tests := []struct {
		name      string
		pitch     string
		semitones int
		expected  string
	}{
		{"up within octave", "C4", 2, "D4"},
		{"up across octave boundary", "B4", 1, "C5"},
		{"down across octave boundary", "C4", -1, "B3"},
		{"full octave up", "C4", 12, "C5"},
		{"full octave down", "C4", -12, "C3"},
		{"two octaves up", "C4", 24, "C6"},
		{"two octaves down", "G5", -24, "G3"},
		{"large wrap up", "A#3", 15, "C#5"},
		{"large wrap down", "D4", -16, "A#2"},
		{"zero is identity", "F#3", 0, "F#3"},
		{"sharp pitch up", "A#5", 1, "B5"},
		{"flat spelling normalized to sharp", "Bb4", 0, "A#4"},
		{"flat spelling transposed", "Eb4", 1, "E4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.TransposePitch(tt.pitch, tt.semitones)
			if got != tt.expected {
				t.Errorf("TransposePitch(%q, %d) = %q, want %q", tt.pitch, tt.semitones, got, tt.expected)
			}
		})
	}
}

func TestTransposePitch_MalformedPassThrough(t *testing.T) {
	svc := NewTranspositionService()

	// Malformed pitches must pass through unchanged rather than erroring,
	// so one bad note cannot fail a whole batch.
	for _, pitch := range []string{"", "C", "X4", "Cx", "##", "Hb2", "C#x"} {
		if got := svc.TransposePitch(pitch, 5); got != pitch {
			t.Errorf("TransposePitch(%q, 5) = %q, want input unchanged", pitch, got)
		}
	}
}

func TestTransposePitch_RoundTrip(t *testing.T) {
	svc := NewTranspositionService()

	// Sharp-spelled pitches across the playable range; flats are excluded
	// because normalization makes the round trip land on the sharp
	// spelling by design.
	pitches := []string{"C2", "C#3", "D4", "D#4", "E4", "F5", "F#5", "G3", "G#6", "A4", "A#5", "B4"}

	for _, p := range pitches {
		for n := -24; n <= 24; n++ {
			back := svc.TransposePitch(svc.TransposePitch(p, n), -n)
			if back != p {
				t.Fatalf("round trip failed: pitch %q semitones %d gave %q", p, n, back)
			}
		}
	}
}

func TestTransposeNotes(t *testing.T) {
	svc := NewTranspositionService()

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0.0, Duration: 0.5, Velocity: 80, PitchMIDI: 60},
		{Pitch: "E4", StartTime: 0.5, Duration: 0.5, Velocity: 90},
		{Pitch: "G4", StartTime: 1.0, Duration: 1.0, Velocity: 70},
	}

	transposed, err := svc.TransposeNotes(notes, "C", "D", ModeMajor)
	if err != nil {
		t.Fatalf("TransposeNotes failed: %v", err)
	}

	if len(transposed) != len(notes) {
		t.Fatalf("expected %d notes, got %d", len(notes), len(transposed))
	}

	expected := []string{"D4", "F#4", "A4"}
	for i, want := range expected {
		if transposed[i].Pitch != want {
			t.Errorf("note %d: pitch = %q, want %q", i, transposed[i].Pitch, want)
		}
	}

	// Timing and velocity must be untouched
	for i := range notes {
		if transposed[i].StartTime != notes[i].StartTime {
			t.Errorf("note %d: start time changed", i)
		}
		if transposed[i].Duration != notes[i].Duration {
			t.Errorf("note %d: duration changed", i)
		}
		if transposed[i].Velocity != notes[i].Velocity {
			t.Errorf("note %d: velocity changed", i)
		}
	}

	// The auxiliary MIDI index is shifted by the raw delta, not re-derived
	if transposed[0].PitchMIDI != 62 {
		t.Errorf("pitchMidi = %d, want 62", transposed[0].PitchMIDI)
	}
	if transposed[1].PitchMIDI != 0 {
		t.Errorf("absent pitchMidi should stay absent, got %d", transposed[1].PitchMIDI)
	}
}

func TestTransposeNotes_EmptyAndMalformed(t *testing.T) {
	svc := NewTranspositionService()

	empty, err := svc.TransposeNotes(nil, "C", "G", ModeMajor)
	if err != nil {
		t.Fatalf("TransposeNotes on empty list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty output, got %d notes", len(empty))
	}

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0.5, Velocity: 64},
		{Pitch: "bogus", StartTime: 0.5, Duration: 0.5, Velocity: 64},
		{Pitch: "", StartTime: 1.0, Duration: 0.5, Velocity: 64},
	}

	transposed, err := svc.TransposeNotes(notes, "C", "D", ModeMajor)
	if err != nil {
		t.Fatalf("TransposeNotes failed: %v", err)
	}

	// Malformed entries pass through unchanged; nothing is dropped or
	// reordered.
	if len(transposed) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(transposed))
	}
	if transposed[0].Pitch != "D4" {
		t.Errorf("note 0: pitch = %q, want D4", transposed[0].Pitch)
	}
	if transposed[1].Pitch != "bogus" {
		t.Errorf("note 1: pitch = %q, want unchanged", transposed[1].Pitch)
	}
	if transposed[2].Pitch != "" {
		t.Errorf("note 2: pitch = %q, want unchanged empty", transposed[2].Pitch)
	}
}

func TestTransposeNotes_MinorModePassThrough(t *testing.T) {
	svc := NewTranspositionService()

	notes := []models.Note{
		{Pitch: "A4", StartTime: 0, Duration: 1, Velocity: 64},
		{Pitch: "C5", StartTime: 1, Duration: 1, Velocity: 64},
	}

	major, err := svc.TransposeNotes(notes, "A", "E", ModeMajor)
	if err != nil {
		t.Fatalf("major transpose failed: %v", err)
	}
	minor, err := svc.TransposeNotes(notes, "A", "E", ModeMinor)
	if err != nil {
		t.Fatalf("minor transpose failed: %v", err)
	}

	// Minor-mode respelling is unimplemented; both modes must agree.
	for i := range major {
		if major[i] != minor[i] {
			t.Errorf("note %d: minor mode diverged from major: %+v vs %+v", i, minor[i], major[i])
		}
	}
}

func TestValidateTransposition(t *testing.T) {
	svc := NewTranspositionService()

	original := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0.5, Velocity: 64},
		{Pitch: "E4", StartTime: 0.5, Duration: 0.5, Velocity: 64},
		{Pitch: "G4", StartTime: 1.0, Duration: 0.5, Velocity: 64},
	}

	transposed, err := svc.TransposeNotes(original, "C", "G", ModeMajor)
	if err != nil {
		t.Fatalf("TransposeNotes failed: %v", err)
	}

	if !svc.ValidateTransposition(original, transposed, 7) {
		t.Error("validation should pass for a correct transposition")
	}

	// Wrong interval fails
	if svc.ValidateTransposition(original, transposed, 5) {
		t.Error("validation should fail for the wrong interval")
	}

	// Length mismatch fails without erroring
	if svc.ValidateTransposition(original, transposed[:2], 7) {
		t.Error("validation should fail on length mismatch")
	}

	// Empty pitches are skipped, not failed
	withEmpty := append([]models.Note{}, original...)
	withEmpty[1].Pitch = ""
	transEmpty := append([]models.Note{}, transposed...)
	transEmpty[1].Pitch = ""
	if !svc.ValidateTransposition(withEmpty, transEmpty, 7) {
		t.Error("validation should skip empty pitches")
	}
}
