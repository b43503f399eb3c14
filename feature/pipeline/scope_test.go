package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeAll, false},
		{"all", ScopeAll, false},
		{"books", ScopeBooks, false},
		{"notes", ScopeNotes, false},
		{"readtime", ScopeReadTime, false},
		{"bookmarks", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_Includes(t *testing.T) {
	assert.True(t, ScopeAll.Includes(ScopeNotes))
	assert.True(t, ScopeBooks.Includes(ScopeBooks))
	assert.False(t, ScopeBooks.Includes(ScopeReadTime))
}
