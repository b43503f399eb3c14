package weread

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"weread-sync/core/utils"

	"github.com/segmentio/encoding/json"
)

// Client defines the read operations the sync needs from the reading platform.
type Client interface {
	// GetBookshelf returns the shelf with progress entries and folders.
	GetBookshelf(ctx context.Context) (*Shelf, error)
	// GetNotebooks returns the books with notes, sorted by their sort token ascending.
	GetNotebooks(ctx context.Context) ([]Notebook, error)
	// GetBookInfo returns catalogue metadata, or nil when the platform has none.
	GetBookInfo(ctx context.Context, bookID string) (*BookInfo, error)
	// GetReadInfo returns the reading state of a book.
	GetReadInfo(ctx context.Context, bookID string) (*ReadInfo, error)
	// GetBookmarks returns the highlights of a book.
	GetBookmarks(ctx context.Context, bookID string) ([]Bookmark, error)
	// GetReviews returns the notes of a book. Whole-book reviews without a chapter
	// are placed in the synthetic review chapter.
	GetReviews(ctx context.Context, bookID string) ([]Review, error)
	// GetChapters returns the chapter table followed by the synthetic review chapter.
	GetChapters(ctx context.Context, bookID string) ([]Chapter, error)
	// GetReadingHistory returns reading seconds keyed by day-start unix time.
	GetReadingHistory(ctx context.Context) (map[int64]int64, error)
}

// readInfoHeaders are required by the read info endpoint, which only answers the mobile app.
var readInfoHeaders = map[string]string{
	"baseapi":    "32",
	"appver":     "8.2.5.10163885",
	"basever":    "8.2.5.10163885",
	"osver":      "12",
	"User-Agent": "WeRead/8.2.5 WRBrand/xiaomi Dalvik/2.1.0 (Linux; U; Android 12; Redmi Note 7 Pro Build/SQ3A.220705.004)",
}

// HTTPClient is the net/http implementation of Client.
type HTTPClient struct {
	webURL string
	apiURL string
	http   *http.Client
}

// NewClient creates an HTTP client holding the session cookie from cfg.
func NewClient(cfg Config) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.Cookie) == "" {
		return nil, errors.New("weread cookie is not configured")
	}

	webURL := cfg.WebURL
	if webURL == "" {
		webURL = "https://weread.qq.com/"
	}
	if !strings.HasSuffix(webURL, "/") {
		webURL += "/"
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://i.weread.qq.com"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	cookies := ParseCookies(cfg.Cookie)
	for _, raw := range []string{webURL, apiURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", raw, err)
		}
		jar.SetCookies(u, cookies)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &HTTPClient{
		webURL: webURL,
		apiURL: apiURL,
		http:   &http.Client{Jar: jar, Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

// touch loads the web front end, which refreshes the session cookies.
func (c *HTTPClient) touch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.webURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

type errorBody struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (c *HTTPClient) call(ctx context.Context, method, rawURL string, query url.Values, headers map[string]string, body, out any) error {
	if err := c.touch(ctx); err != nil {
		return fmt.Errorf("failed to load homepage: %w", err)
	}

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	if resp.StatusCode >= 300 || eb.ErrCode != 0 {
		msg := eb.ErrMsg
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Code: eb.ErrCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *HTTPClient) GetBookshelf(ctx context.Context) (*Shelf, error) {
	q := url.Values{"synckey": {"0"}, "teenmode": {"0"}, "album": {"1"}, "onlyBookid": {"0"}}
	var shelf Shelf
	if err := c.call(ctx, http.MethodGet, c.webURL+"web/shelf/sync", q, nil, nil, &shelf); err != nil {
		return nil, fmt.Errorf("failed to get bookshelf: %w", err)
	}
	return &shelf, nil
}

func (c *HTTPClient) GetNotebooks(ctx context.Context) ([]Notebook, error) {
	var resp struct {
		Books []Notebook `json:"books"`
	}
	if err := c.call(ctx, http.MethodGet, c.apiURL+"/user/notebooks", nil, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get notebooks: %w", err)
	}
	sort.SliceStable(resp.Books, func(i, j int) bool {
		return resp.Books[i].Sort < resp.Books[j].Sort
	})
	return resp.Books, nil
}

func (c *HTTPClient) GetBookInfo(ctx context.Context, bookID string) (*BookInfo, error) {
	var info BookInfo
	err := c.call(ctx, http.MethodGet, c.apiURL+"/book/info", url.Values{"bookId": {bookID}}, nil, nil, &info)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && !errors.Is(err, ErrAuthExpired) && apiErr.Status < 500 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book info %s: %w", bookID, err)
	}
	if info.BookID == "" && info.Title == "" {
		return nil, nil
	}
	return &info, nil
}

func (c *HTTPClient) GetReadInfo(ctx context.Context, bookID string) (*ReadInfo, error) {
	q := url.Values{
		"noteCount":         {"1"},
		"readingDetail":     {"1"},
		"finishedBookIndex": {"1"},
		"readingBookCount":  {"1"},
		"readingBookIndex":  {"1"},
		"finishedBookCount": {"1"},
		"bookId":            {bookID},
		"finishedDate":      {"1"},
	}
	var info ReadInfo
	if err := c.call(ctx, http.MethodGet, c.apiURL+"/book/readinfo", q, readInfoHeaders, nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get read info %s: %w", bookID, err)
	}
	return &info, nil
}

func (c *HTTPClient) GetBookmarks(ctx context.Context, bookID string) ([]Bookmark, error) {
	var resp struct {
		Updated []Bookmark `json:"updated"`
	}
	if err := c.call(ctx, http.MethodGet, c.apiURL+"/book/bookmarklist", url.Values{"bookId": {bookID}}, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get bookmarks %s: %w", bookID, err)
	}
	return resp.Updated, nil
}

func (c *HTTPClient) GetReviews(ctx context.Context, bookID string) ([]Review, error) {
	q := url.Values{"bookId": {bookID}, "listType": {"11"}, "mine": {"1"}, "syncKey": {"0"}}
	var resp struct {
		Reviews []struct {
			Review Review `json:"review"`
		} `json:"reviews"`
	}
	if err := c.call(ctx, http.MethodGet, c.apiURL+"/review/list", q, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get reviews %s: %w", bookID, err)
	}

	out := make([]Review, 0, len(resp.Reviews))
	for _, r := range resp.Reviews {
		rv := r.Review
		if rv.Type.Int() == BookReviewType && rv.ChapterUID == nil {
			uid := Flex(BookReviewChapterUID)
			rv.ChapterUID = &uid
		}
		out = append(out, rv)
	}
	return out, nil
}

func (c *HTTPClient) GetChapters(ctx context.Context, bookID string) ([]Chapter, error) {
	body := map[string]any{"bookIds": []string{bookID}, "synckeys": []int{0}, "teenmode": 0}
	var resp struct {
		Data []struct {
			Updated []Chapter `json:"updated"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodPost, c.apiURL+"/book/chapterInfos", nil, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to get chapters %s: %w", bookID, err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Updated == nil {
		return nil, fmt.Errorf("failed to get chapters %s: unexpected payload", bookID)
	}
	return append(resp.Data[0].Updated, bookReviewChapter), nil
}

func (c *HTTPClient) GetReadingHistory(ctx context.Context) (map[int64]int64, error) {
	var resp struct {
		ReadTimes map[string]Flex `json:"readTimes"`
	}
	if err := c.call(ctx, http.MethodGet, c.apiURL+"/readdata/summary", url.Values{"synckey": {"0"}}, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get reading history: %w", err)
	}
	out := make(map[int64]int64, len(resp.ReadTimes))
	for day, secs := range resp.ReadTimes {
		out[utils.ToInt64(day)] = secs.Int()
	}
	return out, nil
}
