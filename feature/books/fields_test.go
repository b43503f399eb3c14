package books

import (
	"testing"

	"weread-sync/core/weread"
	"weread-sync/core/workspace"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readInfo(t *testing.T, raw string) *weread.ReadInfo {
	t.Helper()
	var r weread.ReadInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return &r
}

func TestDerivedFields(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		status   string
		progress float64
		rating   string
		time     int64
	}{
		{
			name:   "Finished Without Rating",
			raw:    `{"markedStatus": 4, "readingProgress": 87, "readingTime": 30, "finishedDate": 300, "lastReadingDate": 200}`,
			status: StatusFinished, progress: 1, rating: Unrated, time: 300,
		},
		{
			name:   "Finished With Rating",
			raw:    `{"markedStatus": 4, "newRatingDetail": {"myRating": "fair"}}`,
			status: StatusFinished, progress: 1, rating: "⭐️⭐️⭐️",
		},
		{
			name:   "Reading",
			raw:    `{"markedStatus": 2, "readingProgress": 40, "readingTime": 60, "lastReadingDate": 200, "readingBookDate": 100}`,
			status: StatusReading, progress: 0.4, time: 200,
		},
		{
			name:   "Barely Opened",
			raw:    `{"readingProgress": 1, "readingTime": 59, "readingBookDate": 100}`,
			status: StatusWant, progress: 0.01, time: 100,
		},
		{
			name:   "Rated While Reading",
			raw:    `{"readingTime": 600, "newRatingDetail": {"myRating": "good"}}`,
			status: StatusReading, rating: "⭐️⭐️⭐️⭐️⭐️",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := readInfo(t, tt.raw)
			assert.Equal(t, tt.status, Status(r))
			assert.InDelta(t, tt.progress, Progress(r), 1e-9)
			assert.Equal(t, tt.rating, Rating(r))
			assert.Equal(t, tt.time, ReadTime(r))
		})
	}
}

func TestCoverURL(t *testing.T) {
	assert.Equal(t, "https://cdn.weread.qq.com/weread/cover/12/t7_abc.jpg",
		CoverURL("https://cdn.weread.qq.com/weread/cover/12/s_abc.jpg"))
	assert.Equal(t, workspace.IconBook, CoverURL(""))
	assert.Equal(t, workspace.IconBook, CoverURL("/cover/s_abc.jpg"))
}

func TestAuthors(t *testing.T) {
	assert.Equal(t, []string{"刘慈欣", "Ken", "Liu"}, Authors(" 刘慈欣  Ken Liu "))
	assert.Empty(t, Authors(""))
}
