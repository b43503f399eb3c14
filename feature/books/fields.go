package books

import (
	"strings"
	"time"

	"weread-sync/core/weread"
	"weread-sync/core/workspace"
)

// Reading statuses.
const (
	StatusWant     = "想读"
	StatusReading  = "在读"
	StatusFinished = "已读"
)

// Unrated marks a finished book the user never rated.
const Unrated = "未评分"

// markedFinished is the markedStatus of a finished book.
const markedFinished = 4

// ratings maps the platform's rating tokens to stars.
var ratings = map[string]string{
	"poor": "⭐️",
	"fair": "⭐️⭐️⭐️",
	"good": "⭐️⭐️⭐️⭐️⭐️",
}

// Status derives the reading status: finished, reading after a minute of
// reading time, want-to-read otherwise.
func Status(r *weread.ReadInfo) string {
	switch {
	case r.MarkedStatus.Int() == markedFinished:
		return StatusFinished
	case r.ReadingTime.Int() >= 60:
		return StatusReading
	default:
		return StatusWant
	}
}

// Progress returns the reading progress as a fraction; finished books are complete.
func Progress(r *weread.ReadInfo) float64 {
	if r.MarkedStatus.Int() == markedFinished {
		return 1
	}
	return float64(r.ReadingProgress.Int()) / 100
}

// Rating returns the star rating of the book, Unrated for a finished book
// without one, and "" otherwise.
func Rating(r *weread.ReadInfo) string {
	if token := r.MyRating(); token != "" {
		return ratings[token]
	}
	if Status(r) == StatusFinished {
		return Unrated
	}
	return ""
}

// ReadTime is the date a book is filed under: finished, else last read, else
// added to the reading list. Zero when none is known.
func ReadTime(r *weread.ReadInfo) int64 {
	for _, ts := range []int64{r.FinishedDate.Int(), r.LastReadingDate.Int(), r.ReadingBookDate.Int()} {
		if ts != 0 {
			return ts
		}
	}
	return 0
}

// CoverURL upgrades a cover to the large variant and falls back to the book
// icon when the platform has no usable cover.
func CoverURL(cover string) string {
	cover = strings.Replace(cover, "/s_", "/t7_", 1)
	if !strings.HasPrefix(cover, "http") {
		return workspace.IconBook
	}
	return cover
}

// Authors splits the author field on spaces.
func Authors(author string) []string {
	return strings.Fields(author)
}

func dateProp(ts int64, loc *time.Location) workspace.Property {
	return workspace.Date(time.Unix(ts, 0).In(loc).Format(workspace.DateTimeLayout), "", loc.String())
}

// readingProperties are the fields refreshed on every upsert.
func readingProperties(r *weread.ReadInfo, meta *weread.BookInfo, category string, loc *time.Location) workspace.Properties {
	props := workspace.Properties{
		"阅读进度": workspace.Number(Progress(r)),
		"阅读状态": workspace.Status(Status(r)),
		"阅读时长": workspace.Number(r.ReadingTime.Int()),
		"阅读天数": workspace.Number(r.TotalReadDay.Int()),
	}
	if meta != nil {
		props["评分"] = workspace.Number(meta.NewRating.Int())
	}
	if category != "" {
		props["书架分类"] = workspace.Select(category)
	}
	if rating := Rating(r); rating != "" {
		props["我的评分"] = workspace.Select(rating)
	}
	if ts := ReadTime(r); ts != 0 {
		props["时间"] = dateProp(ts, loc)
	}
	if ts := r.BeginReadingDate.Int(); ts != 0 {
		props["开始阅读时间"] = dateProp(ts, loc)
	}
	if ts := r.LastReadingDate.Int(); ts != 0 {
		props["最后阅读时间"] = dateProp(ts, loc)
	}
	return props
}
