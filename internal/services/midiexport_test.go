package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/darthvader58/tansen/internal/models"
)

func TestMIDIExporter_Export(t *testing.T) {
	exporter := NewMIDIExporter()

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0.0, Duration: 0.5, Velocity: 80, PitchMIDI: 60},
		{Pitch: "E4", StartTime: 0.5, Duration: 0.5, Velocity: 80, PitchMIDI: 64},
		{Pitch: "G4", StartTime: 1.0, Duration: 1.0, Velocity: 80, PitchMIDI: 67},
	}

	data, skipped, err := exporter.Export(notes, "test track", 120)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.True(t, bytes.HasPrefix(data, []byte("MThd")), "output should be a standard MIDI file")

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, 1)

	noteOns := 0
	noteOffs := 0
	var firstKey uint8
	for _, ev := range parsed.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			if noteOns == 0 {
				firstKey = key
			}
			noteOns++
		} else if ev.Message.GetNoteEnd(&ch, &key) {
			noteOffs++
		}
	}
	assert.Equal(t, 3, noteOns)
	assert.Equal(t, 3, noteOffs)
	assert.Equal(t, uint8(60), firstKey)
}

func TestMIDIExporter_FallsBackToPitchString(t *testing.T) {
	exporter := NewMIDIExporter()

	// No PitchMIDI set; the key comes from parsing the pitch string.
	notes := []models.Note{
		{Pitch: "A4", StartTime: 0, Duration: 0.25, Velocity: 90},
	}

	data, skipped, err := exporter.Export(notes, "", 0)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	found := false
	for _, ev := range parsed.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			assert.Equal(t, uint8(69), key)
			found = true
		}
	}
	assert.True(t, found, "expected a note-on for A4")
}

func TestMIDIExporter_SkipsUnusableNotes(t *testing.T) {
	exporter := NewMIDIExporter()

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0.5, Velocity: 64, PitchMIDI: 60},
		{Pitch: "garbage", StartTime: 0.5, Duration: 0.5, Velocity: 64},
		{Pitch: "", StartTime: 1.0, Duration: 0.5, Velocity: 64},
	}

	data, skipped, err := exporter.Export(notes, "", 90)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, skipped)
	assert.NotEmpty(t, data)
}

func TestMIDIExporter_ZeroDurationGetsMinimalLength(t *testing.T) {
	exporter := NewMIDIExporter()

	notes := []models.Note{
		{Pitch: "C4", StartTime: 0, Duration: 0, Velocity: 64, PitchMIDI: 60},
	}

	data, skipped, err := exporter.Export(notes, "", 120)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	var offDelta uint32
	sawOn := false
	for _, ev := range parsed.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			sawOn = true
		} else if sawOn && ev.Message.GetNoteEnd(&ch, &key) {
			offDelta = ev.Delta
			break
		}
	}
	assert.Equal(t, uint32(1), offDelta, "note-off should land one tick after note-on")
}
