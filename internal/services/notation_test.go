package services

import (
	"errors"
	"testing"

	"github.com/darthvader58/tansen/internal/models"
)

func sampleScale() []models.Note {
	return []models.Note{
		{Pitch: "C4", StartTime: 0.0, Duration: 0.5, Velocity: 80},
		{Pitch: "D4", StartTime: 0.5, Duration: 0.5, Velocity: 80},
		{Pitch: "E4", StartTime: 1.0, Duration: 0.5, Velocity: 80},
		{Pitch: "F4", StartTime: 1.5, Duration: 0.5, Velocity: 80},
		{Pitch: "G4", StartTime: 2.0, Duration: 0.5, Velocity: 80},
	}
}

func TestConvertToSargam_Hindustani(t *testing.T) {
	svc := NewNotationService()

	converted, skipped := svc.ConvertToSargam(sampleScale(), StyleHindustani, "C")
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped notes: %v", skipped)
	}

	expected := []string{"Sa", "Re", "Ga", "Ma", "Pa"}
	if len(converted) != len(expected) {
		t.Fatalf("expected %d notes, got %d", len(expected), len(converted))
	}
	for i, want := range expected {
		if converted[i].Note != want {
			t.Errorf("note %d: %q, want %q", i, converted[i].Note, want)
		}
	}
}

func TestConvertToSargam_Carnatic(t *testing.T) {
	svc := NewNotationService()

	converted, skipped := svc.ConvertToSargam(sampleScale(), StyleCarnatic, "C")
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped notes: %v", skipped)
	}

	expected := []string{"S", "R2", "G2", "M1", "P"}
	for i, want := range expected {
		if converted[i].Note != want {
			t.Errorf("note %d: %q, want %q", i, converted[i].Note, want)
		}
	}
}

func TestConvertToSargam_ChromaticTables(t *testing.T) {
	svc := NewNotationService()

	chromatic := make([]models.Note, 12)
	for i, name := range noteNames {
		chromatic[i] = models.Note{Pitch: name + "4", StartTime: float64(i), Duration: 0.25, Velocity: 64}
	}

	hindustani := []string{"Sa", "Re♭", "Re", "Ga♭", "Ga", "Ma", "Ma♯", "Pa", "Dha♭", "Dha", "Ni♭", "Ni"}
	carnatic := []string{"S", "R1", "R2", "G1", "G2", "M1", "M2", "P", "D1", "D2", "N1", "N2"}

	hOut, _ := svc.ConvertToSargam(chromatic, StyleHindustani, "C")
	cOut, _ := svc.ConvertToSargam(chromatic, StyleCarnatic, "C")

	for i := 0; i < 12; i++ {
		if hOut[i].Note != hindustani[i] {
			t.Errorf("hindustani %s: %q, want %q", noteNames[i], hOut[i].Note, hindustani[i])
		}
		if cOut[i].Note != carnatic[i] {
			t.Errorf("carnatic %s: %q, want %q", noteNames[i], cOut[i].Note, carnatic[i])
		}
	}
}

func TestConvertToSargam_OctaveMarkers(t *testing.T) {
	svc := NewNotationService()

	notes := []models.Note{
		{Pitch: "C3", StartTime: 0.0, Duration: 0.5, Velocity: 80},
		{Pitch: "C4", StartTime: 0.5, Duration: 0.5, Velocity: 80},
		{Pitch: "C5", StartTime: 1.0, Duration: 0.5, Velocity: 80},
		// The marker does not scale with distance from the middle octave
		{Pitch: "C1", StartTime: 1.5, Duration: 0.5, Velocity: 80},
		{Pitch: "C7", StartTime: 2.0, Duration: 0.5, Velocity: 80},
	}

	converted, _ := svc.ConvertToSargam(notes, StyleHindustani, "C")

	expected := []string{"sa", "Sa", "Sa'", "sa", "Sa'"}
	for i, want := range expected {
		if converted[i].Note != want {
			t.Errorf("note %d (%s): %q, want %q", i, notes[i].Pitch, converted[i].Note, want)
		}
	}
}

func TestConvertToSargam_SkipsMalformed(t *testing.T) {
	svc := NewNotationService()

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0.5, Velocity: 64},
		{Pitch: "x", StartTime: 0.5, Duration: 0.5, Velocity: 64},
		{Pitch: "D4", StartTime: 1.0, Duration: 0.5, Velocity: 64},
		{Pitch: "", StartTime: 1.5, Duration: 0.5, Velocity: 64},
		{Pitch: "E#", StartTime: 2.0, Duration: 0.5, Velocity: 64},
	}

	converted, skipped := svc.ConvertToSargam(notes, StyleHindustani, "C")

	if len(converted) != 2 {
		t.Fatalf("expected 2 converted notes, got %d", len(converted))
	}
	if converted[0].Note != "Sa" || converted[1].Note != "Re" {
		t.Errorf("converted = [%q, %q], want [Sa, Re]", converted[0].Note, converted[1].Note)
	}

	wantSkipped := []int{1, 3, 4}
	if len(skipped) != len(wantSkipped) {
		t.Fatalf("skipped = %v, want %v", skipped, wantSkipped)
	}
	for i, idx := range wantSkipped {
		if skipped[i] != idx {
			t.Errorf("skipped[%d] = %d, want %d", i, skipped[i], idx)
		}
	}
}

func TestConvertToWestern(t *testing.T) {
	svc := NewNotationService()

	result, skipped := svc.ConvertToWestern(sampleScale())
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped notes: %v", skipped)
	}

	if result.Format != "western" {
		t.Errorf("format = %q, want western", result.Format)
	}
	if len(result.Notes) != 5 {
		t.Fatalf("expected 5 notes, got %d", len(result.Notes))
	}
	if result.Notes[0].Pitch != "C4" || result.Notes[0].NoteName != "C" || result.Notes[0].Octave != 4 {
		t.Errorf("first note = %+v, want pitch C4, noteName C, octave 4", result.Notes[0])
	}

	sharp, _ := svc.ConvertToWestern([]models.Note{{Pitch: "F#3", StartTime: 0, Duration: 1, Velocity: 64}})
	if sharp.Notes[0].NoteName != "F#" || sharp.Notes[0].Octave != 3 {
		t.Errorf("sharp note = %+v, want noteName F#, octave 3", sharp.Notes[0])
	}

	// Fixed placeholders, never derived from the notes
	if result.TimeSignature != "4/4" {
		t.Errorf("timeSignature = %q, want 4/4", result.TimeSignature)
	}
	if result.KeySignature != "C" {
		t.Errorf("keySignature = %q, want C", result.KeySignature)
	}
}

func TestConvertToAlphabetical_Lossless(t *testing.T) {
	svc := NewNotationService()

	// Includes entries the other converters would drop; alphabetical is
	// total and loss-free.
	notes := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0.5, Velocity: 64},
		{Pitch: "A#5", StartTime: 0.5, Duration: 0.5, Velocity: 64},
		{Pitch: "junk", StartTime: 1.0, Duration: 0.5, Velocity: 64},
		{Pitch: "", StartTime: 1.5, Duration: 0.5, Velocity: 64},
	}

	converted := svc.ConvertToAlphabetical(notes)
	if len(converted) != len(notes) {
		t.Fatalf("expected %d notes, got %d", len(notes), len(converted))
	}
	for i, note := range notes {
		if converted[i].Note != note.Pitch {
			t.Errorf("note %d: %q, want %q", i, converted[i].Note, note.Pitch)
		}
	}
}

func TestWesternToAlphabetical_PreservesPitchIdentity(t *testing.T) {
	svc := NewNotationService()

	notes := sampleScale()
	western, _ := svc.ConvertToWestern(notes)

	// Feed the western output back through the alphabetical converter
	roundTrip := make([]models.Note, len(western.Notes))
	for i, w := range western.Notes {
		roundTrip[i] = models.Note{
			Pitch:     w.Pitch,
			StartTime: w.StartTime,
			Duration:  w.Duration,
			Velocity:  w.Velocity,
		}
	}

	alphabetical := svc.ConvertToAlphabetical(roundTrip)
	for i, note := range notes {
		if alphabetical[i].Note != note.Pitch {
			t.Errorf("note %d: %q, want original pitch %q", i, alphabetical[i].Note, note.Pitch)
		}
	}
}

func TestConvertNotes_Dispatch(t *testing.T) {
	svc := NewNotationService()
	notes := sampleScale()

	sargam, err := svc.ConvertNotes(notes, FormatSargam, StyleHindustani)
	if err != nil {
		t.Fatalf("sargam dispatch failed: %v", err)
	}
	if sargam.Format != FormatSargam {
		t.Errorf("format = %q, want sargam", sargam.Format)
	}
	if sargam.Style != StyleHindustani {
		t.Errorf("style = %q, want hindustani", sargam.Style)
	}
	if sargamNotes, ok := sargam.Notes.([]NotationNote); !ok || len(sargamNotes) != 5 {
		t.Errorf("sargam notes = %T with unexpected shape", sargam.Notes)
	}

	western, err := svc.ConvertNotes(notes, FormatWestern, StyleHindustani)
	if err != nil {
		t.Fatalf("western dispatch failed: %v", err)
	}
	if western.Format != FormatWestern {
		t.Errorf("format = %q, want western", western.Format)
	}
	if western.TimeSignature != "4/4" || western.KeySignature != "C" {
		t.Errorf("western signatures = %q/%q, want 4/4 and C", western.TimeSignature, western.KeySignature)
	}

	alphabetical, err := svc.ConvertNotes(notes, FormatAlphabetical, StyleHindustani)
	if err != nil {
		t.Fatalf("alphabetical dispatch failed: %v", err)
	}
	if alphabetical.Format != FormatAlphabetical {
		t.Errorf("format = %q, want alphabetical", alphabetical.Format)
	}
}

func TestConvertNotes_UnsupportedFormat(t *testing.T) {
	svc := NewNotationService()

	_, err := svc.ConvertNotes(sampleScale(), NotationFormat("braille"), StyleHindustani)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
