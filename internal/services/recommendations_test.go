package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darthvader58/tansen/internal/models"
)

func TestScoreSong(t *testing.T) {
	user := models.User{
		SkillLevel:        models.SkillIntermediate,
		PrimaryInstrument: "guitar",
	}
	genres := map[string]bool{"rock": true}

	tests := []struct {
		name string
		song models.Song
		want float64
	}{
		{
			name: "full match",
			song: models.Song{
				Difficulty:    models.DifficultyIntermediate,
				Instruments:   models.StringList{"guitar", "piano"},
				Genre:         "Rock",
				FavoriteCount: 25,
			},
			want: 0.4 + 0.3 + 0.2 + 0.1,
		},
		{
			name: "adjacent skill, any instrument",
			song: models.Song{
				Difficulty:  models.DifficultyAdvanced,
				Instruments: models.StringList{"piano"},
			},
			want: 0.2 + 0.1,
		},
		{
			name: "adjacent beginner difficulty",
			song: models.Song{
				Difficulty: models.DifficultyBeginner,
			},
			want: 0.2,
		},
		{
			name: "moderate popularity",
			song: models.Song{
				Difficulty:    models.DifficultyIntermediate,
				FavoriteCount: 7,
			},
			want: 0.4 + 0.05,
		},
		{
			name: "genre mismatch and no transcriptions",
			song: models.Song{
				Difficulty: models.DifficultyIntermediate,
				Genre:      "jazz",
			},
			want: 0.4,
		},
		{
			name: "nothing matches",
			song: models.Song{
				Difficulty: "unknown",
				Genre:      "jazz",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreSong(tt.song, user, genres)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreSong_BeginnerUser(t *testing.T) {
	user := models.User{SkillLevel: models.SkillBeginner, PrimaryInstrument: "sitar"}

	advanced := models.Song{Difficulty: models.DifficultyAdvanced}
	assert.InDelta(t, 0.0, scoreSong(advanced, user, nil), 1e-9,
		"advanced is two levels from beginner")

	intermediate := models.Song{Difficulty: models.DifficultyIntermediate}
	assert.InDelta(t, 0.2, scoreSong(intermediate, user, nil), 1e-9)
}

func TestScoreSong_InstrumentCaseInsensitive(t *testing.T) {
	user := models.User{SkillLevel: models.SkillBeginner, PrimaryInstrument: "Guitar"}
	song := models.Song{
		Difficulty:  models.DifficultyBeginner,
		Instruments: models.StringList{"guitar"},
	}
	assert.InDelta(t, 0.4+0.3, scoreSong(song, user, nil), 1e-9)
}
