package services

import "testing"

func TestSpotifyKeyToNote(t *testing.T) {
	tests := []struct {
		key    int
		want   string
		wantOK bool
	}{
		{0, "C", true},
		{1, "C#", true},
		{5, "F", true},
		{11, "B", true},
		{-1, "", false}, // Spotify's "no key detected"
		{12, "", false},
	}
	for _, tt := range tests {
		got, ok := SpotifyKeyToNote(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SpotifyKeyToNote(%d) = (%q, %v), want (%q, %v)",
				tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
