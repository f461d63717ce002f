package services

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/darthvader58/tansen/internal/models"
)

const (
	midiTicksPerQuarter = 960
	defaultTempoBPM     = 120
	defaultChannel      = 0
)

// MIDIExporter renders transcription notes into a single-track Standard
// MIDI File for offline practice tools and DAW import.
type MIDIExporter struct{}

func NewMIDIExporter() *MIDIExporter {
	return &MIDIExporter{}
}

type midiEvent struct {
	tick    uint32
	noteOff bool
	msg     midi.Message
}

// Export serializes notes to SMF bytes. Notes without a usable pitch are
// skipped; their indices are returned alongside the file. tempo of zero
// falls back to 120 BPM.
func (e *MIDIExporter) Export(notes []models.Note, trackName string, tempo int) ([]byte, []int, error) {
	if tempo <= 0 {
		tempo = defaultTempoBPM
	}
	ticksPerSecond := float64(midiTicksPerQuarter) * float64(tempo) / 60.0

	var events []midiEvent
	var skipped []int
	for i, note := range notes {
		key := note.PitchMIDI
		if key == 0 {
			parsed, err := NoteNameToMIDI(note.Pitch)
			if err != nil {
				skipped = append(skipped, i)
				continue
			}
			key = parsed
		}
		if key < 0 || key > 127 {
			skipped = append(skipped, i)
			continue
		}

		velocity := note.Velocity
		if velocity < 1 || velocity > 127 {
			velocity = 64
		}

		onTick := uint32(note.StartTime * ticksPerSecond)
		offTick := uint32((note.StartTime + note.Duration) * ticksPerSecond)
		if offTick <= onTick {
			offTick = onTick + 1
		}

		events = append(events,
			midiEvent{tick: onTick, msg: midi.NoteOn(defaultChannel, uint8(key), uint8(velocity))},
			midiEvent{tick: offTick, noteOff: true, msg: midi.NoteOff(defaultChannel, uint8(key))},
		)
	}

	// Offs sort before ons at the same tick so re-struck notes are not
	// cut short.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].noteOff && !events[j].noteOff
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiTicksPerQuarter)

	var track smf.Track
	if trackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(trackName))
	}
	track.Add(0, smf.MetaTempo(float64(tempo)))

	var prevTick uint32
	for _, ev := range events {
		track.Add(ev.tick-prevTick, ev.msg)
		prevTick = ev.tick
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, skipped, fmt.Errorf("failed to add MIDI track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, skipped, fmt.Errorf("failed to serialize MIDI file: %w", err)
	}
	return buf.Bytes(), skipped, nil
}
