package weread

import (
	"weread-sync/core/utils"

	"github.com/segmentio/encoding/json"
)

// Flex is an integer field that the platform sends either as a number or as a string.
type Flex int64

func (f *Flex) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Flex(utils.ToInt64(v))
	return nil
}

// Int returns the value as int64.
func (f Flex) Int() int64 { return int64(f) }

// Book is the book summary embedded in shelf and notebook entries.
type Book struct {
	BookID string `json:"bookId"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Cover  string `json:"cover"`
}

// BookProgress is the reading progress entry of a shelf book.
type BookProgress struct {
	BookID      string `json:"bookId"`
	Progress    Flex   `json:"progress"`
	ReadingTime Flex   `json:"readingTime"`
	UpdateTime  Flex   `json:"updateTime"`
}

// Archive is a user-defined shelf folder.
type Archive struct {
	Name    string   `json:"name"`
	BookIDs []string `json:"bookIds"`
}

// Shelf is the user's bookshelf.
type Shelf struct {
	Books        []Book         `json:"books"`
	BookProgress []BookProgress `json:"bookProgress"`
	Archive      []Archive      `json:"archive"`
}

// Categories maps book ids to the name of the shelf folder holding them.
func (s *Shelf) Categories() map[string]string {
	out := map[string]string{}
	for _, a := range s.Archive {
		for _, id := range a.BookIDs {
			out[id] = a.Name
		}
	}
	return out
}

// Progress indexes the progress entries by book id.
func (s *Shelf) Progress() map[string]BookProgress {
	out := make(map[string]BookProgress, len(s.BookProgress))
	for _, p := range s.BookProgress {
		out[p.BookID] = p
	}
	return out
}

// Notebook is a book that has highlights or notes.
type Notebook struct {
	BookID        string `json:"bookId"`
	Book          Book   `json:"book"`
	Sort          Flex   `json:"sort"`
	NoteCount     Flex   `json:"noteCount"`
	ReviewCount   Flex   `json:"reviewCount"`
	BookmarkCount Flex   `json:"bookmarkCount"`
}

// Category is a platform book category.
type Category struct {
	CategoryID Flex   `json:"categoryId"`
	Title      string `json:"title"`
}

// BookInfo is the catalogue metadata of a book.
type BookInfo struct {
	BookID     string     `json:"bookId"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Cover      string     `json:"cover"`
	ISBN       string     `json:"isbn"`
	Intro      string     `json:"intro"`
	Categories []Category `json:"categories"`
	NewRating  Flex       `json:"newRating"`
}

// ReadDay is the reading time of one day.
type ReadDay struct {
	ReadDate Flex `json:"readDate"`
	ReadTime Flex `json:"readTime"`
}

// ReadDetail holds the per-day reading times of a book.
type ReadDetail struct {
	Data []ReadDay `json:"data"`
}

// ReadInfo is the reading state of one book.
type ReadInfo struct {
	MarkedStatus     Flex        `json:"markedStatus"`
	ReadingTime      Flex        `json:"readingTime"`
	ReadingProgress  Flex        `json:"readingProgress"`
	TotalReadDay     Flex        `json:"totalReadDay"`
	FinishedDate     Flex        `json:"finishedDate"`
	LastReadingDate  Flex        `json:"lastReadingDate"`
	ReadingBookDate  Flex        `json:"readingBookDate"`
	BeginReadingDate Flex        `json:"beginReadingDate"`
	ReadDetail       *ReadDetail `json:"readDetail"`
	NewRatingDetail  *struct {
		MyRating string `json:"myRating"`
	} `json:"newRatingDetail"`
	BookInfo *BookInfo `json:"bookInfo"`
}

// MyRating returns the user's own rating token (poor, fair, good) or "".
func (r *ReadInfo) MyRating() string {
	if r.NewRatingDetail == nil {
		return ""
	}
	return r.NewRatingDetail.MyRating
}

// DailyTimes returns the per-day reading seconds keyed by day start.
func (r *ReadInfo) DailyTimes() map[int64]int64 {
	out := map[int64]int64{}
	if r.ReadDetail == nil {
		return out
	}
	for _, d := range r.ReadDetail.Data {
		out[d.ReadDate.Int()] = d.ReadTime.Int()
	}
	return out
}

// Bookmark is a highlight.
type Bookmark struct {
	BookmarkID  string `json:"bookmarkId"`
	BookID      string `json:"bookId"`
	ChapterUID  *Flex  `json:"chapterUid"`
	Range       string `json:"range"`
	MarkText    string `json:"markText"`
	BookVersion Flex   `json:"bookVersion"`
	ColorStyle  Flex   `json:"colorStyle"`
	Type        Flex   `json:"type"`
	Style       Flex   `json:"style"`
	CreateTime  Flex   `json:"createTime"`
}

// Review is a note, either attached to a passage or on the whole book (type 4).
type Review struct {
	ReviewID    string  `json:"reviewId"`
	BookID      string  `json:"bookId"`
	ChapterUID  *Flex   `json:"chapterUid"`
	Range       *string `json:"range"`
	Content     string  `json:"content"`
	Abstract    *string `json:"abstract"`
	Star        *Flex   `json:"star"`
	BookVersion Flex    `json:"bookVersion"`
	Type        Flex    `json:"type"`
	ColorStyle  Flex    `json:"colorStyle"`
	Style       Flex    `json:"style"`
	CreateTime  Flex    `json:"createTime"`
}

// Chapter is one entry of a book's table of contents.
type Chapter struct {
	ChapterUID Flex   `json:"chapterUid"`
	ChapterIdx Flex   `json:"chapterIdx"`
	UpdateTime Flex   `json:"updateTime"`
	ReadAhead  Flex   `json:"readAhead"`
	Title      string `json:"title"`
	Level      Flex   `json:"level"`
}

const (
	// BookReviewChapterUID is the synthetic chapter holding whole-book reviews.
	BookReviewChapterUID = 1000000
	// BookReviewType is the review type of a whole-book review.
	BookReviewType = 4
)

// bookReviewChapter is appended to every chapter table.
var bookReviewChapter = Chapter{
	ChapterUID: BookReviewChapterUID,
	ChapterIdx: BookReviewChapterUID,
	UpdateTime: 1683825006,
	Title:      "点评",
	Level:      1,
}
