package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListStoresCommaJoined(t *testing.T) {
	tests := []struct {
		name string
		list StringList
		want string
	}{
		{"multiple entries", StringList{"guitar", "piano"}, "guitar,piano"},
		{"single entry", StringList{"vocals"}, "vocals"},
		{"nil list", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.list.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestStringListRoundTrip(t *testing.T) {
	original := StringList{"guitar", "piano", "drums"}
	v, err := original.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)

	var empty StringList
	require.NoError(t, empty.Scan(""))
	assert.Nil(t, empty)

	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}

// The instrument filter wraps the stored column in delimiters and matches
// a whole token: ','||instruments||',' LIKE '%,guitar,%'. The stored form
// must keep that predicate true for present instruments only.
func TestStringListTokenMatchesStoredForm(t *testing.T) {
	v, err := StringList{"Guitar", "Piano"}.Value()
	require.NoError(t, err)
	stored, ok := v.(string)
	require.True(t, ok)

	wrapped := "," + strings.ToLower(stored) + ","
	assert.True(t, strings.Contains(wrapped, ",guitar,"), "present instrument must match")
	assert.True(t, strings.Contains(wrapped, ",piano,"))
	assert.False(t, strings.Contains(wrapped, ",uitar,"), "partial token must not match")
	assert.False(t, strings.Contains(wrapped, ",violin,"), "absent instrument must not match")
}
