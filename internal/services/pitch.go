package services

import (
	"fmt"
	"strconv"
	"strings"
)

// noteNames is the canonical sharp-spelled chromatic scale. All semitone
// arithmetic happens against indices into this table (C=0 ... B=11).
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteNamesFlat holds the flat spellings at the same chromatic indices.
var noteNamesFlat = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// flatToSharp collapses flat spellings to their enharmonic sharp
// equivalents. Spelling fidelity (Db vs C#) is intentionally lost.
var flatToSharp = map[string]string{
	"Db": "C#", "Eb": "D#", "Gb": "F#", "Ab": "G#", "Bb": "A#",
}

// normalizeKey maps a flat-spelled key to its sharp equivalent; sharp and
// natural names pass through unchanged.
func normalizeKey(key string) string {
	if sharp, ok := flatToSharp[key]; ok {
		return sharp
	}
	return key
}

// chromaticIndex returns the 12-tone index of a key name, accepting both
// sharp and flat spellings. ok is false for unrecognized names.
func chromaticIndex(key string) (int, bool) {
	key = normalizeKey(key)
	for i, name := range noteNames {
		if name == key {
			return i, true
		}
	}
	for i, name := range noteNamesFlat {
		if name == key {
			return i, true
		}
	}
	return 0, false
}

// parsePitch splits a pitch string like "C4" or "A#5" into its note-letter
// class and single-digit octave. ok is false when the string is too short
// or carries no recognizable digit octave.
func parsePitch(pitch string) (noteName string, octave int, ok bool) {
	if len(pitch) < 2 {
		return "", 0, false
	}
	if pitch[1] >= '0' && pitch[1] <= '9' {
		return pitch[:1], int(pitch[1] - '0'), true
	}
	if len(pitch) >= 3 && pitch[2] >= '0' && pitch[2] <= '9' {
		return pitch[:2], int(pitch[2] - '0'), true
	}
	return "", 0, false
}

// NoteNameToMIDI converts a pitch string like "C4", "F#3" or "Bb2" to its
// MIDI note number: (octave+1)*12 + chromatic offset, so C4 = 60.
func NoteNameToMIDI(pitch string) (int, error) {
	if len(pitch) < 2 {
		return 0, fmt.Errorf("pitch too short: %q", pitch)
	}

	letter := strings.ToUpper(pitch[:1])
	if letter < "A" || letter > "G" {
		return 0, fmt.Errorf("invalid note letter in %q", pitch)
	}

	semitone := map[string]int{
		"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
	}[letter]

	idx := 1
	if pitch[idx] == '#' {
		semitone++
		idx++
	} else if pitch[idx] == 'b' {
		semitone--
		idx++
	}

	if idx >= len(pitch) {
		return 0, fmt.Errorf("missing octave in pitch %q", pitch)
	}

	octave, err := strconv.Atoi(pitch[idx:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch %q: %w", pitch, err)
	}

	midi := (octave+1)*12 + semitone
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("pitch %q outside MIDI range", pitch)
	}
	return midi, nil
}

// MIDIToNoteName converts a MIDI note number back to the canonical
// sharp-spelled pitch string. Inverse of NoteNameToMIDI for sharp-spelled
// input.
func MIDIToNoteName(midi int) (string, error) {
	if midi < 0 || midi > 127 {
		return "", fmt.Errorf("MIDI note %d out of range", midi)
	}
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", noteNames[midi%12], octave), nil
}
