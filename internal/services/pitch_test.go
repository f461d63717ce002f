package services

import "testing"

func TestNoteNameToMIDI(t *testing.T) {
	tests := []struct {
		pitch string
		want  int
	}{
		{"C4", 60},
		{"A4", 69},
		{"C0", 12},
		{"G9", 127},
		{"C#4", 61},
		{"B3", 59},
		{"Bb3", 58}, // flat accidentals lower the letter offset
	}

	for _, tt := range tests {
		got, err := NoteNameToMIDI(tt.pitch)
		if err != nil {
			t.Errorf("NoteNameToMIDI(%q) error: %v", tt.pitch, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NoteNameToMIDI(%q) = %d, want %d", tt.pitch, got, tt.want)
		}
	}
}

func TestNoteNameToMIDI_Invalid(t *testing.T) {
	for _, pitch := range []string{"", "H4", "C", "C#", "Cb#4", "G#9"} {
		if _, err := NoteNameToMIDI(pitch); err == nil {
			t.Errorf("NoteNameToMIDI(%q) expected error", pitch)
		}
	}
}

func TestMIDIToNoteName(t *testing.T) {
	tests := []struct {
		midi int
		want string
	}{
		{60, "C4"},
		{61, "C#4"},
		{69, "A4"},
		{0, "C-1"},
		{127, "G9"},
	}

	for _, tt := range tests {
		got, err := MIDIToNoteName(tt.midi)
		if err != nil {
			t.Errorf("MIDIToNoteName(%d) error: %v", tt.midi, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MIDIToNoteName(%d) = %q, want %q", tt.midi, got, tt.want)
		}
	}

	for _, midi := range []int{-1, 128} {
		if _, err := MIDIToNoteName(midi); err == nil {
			t.Errorf("MIDIToNoteName(%d) expected error", midi)
		}
	}
}

func TestPitchMIDIRoundTrip(t *testing.T) {
	for midi := 0; midi <= 127; midi++ {
		name, err := MIDIToNoteName(midi)
		if err != nil {
			t.Fatalf("MIDIToNoteName(%d) error: %v", midi, err)
		}
		back, err := NoteNameToMIDI(name)
		if err != nil {
			t.Fatalf("NoteNameToMIDI(%q) error: %v", name, err)
		}
		if back != midi {
			t.Errorf("round trip %d -> %q -> %d", midi, name, back)
		}
	}
}
