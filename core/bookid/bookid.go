// Package bookid derives the public reader id that WeRead uses in its web links
// from the internal numeric (or string) book id.
//
// The encoding has to match the platform byte for byte: a wrong id still produces a
// well-formed URL, it just opens the wrong page (or none).
package bookid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ReaderURLPrefix is the base of every permanent reader link.
const ReaderURLPrefix = "https://weread.qq.com/web/reader/"

const (
	chunkSize = 9
	minLength = 20
)

// Encode returns the external reference id for an internal book id.
func Encode(bookID string) string {
	digest := md5Hex(bookID)

	var b strings.Builder
	b.WriteString(digest[:3])

	code, segments := transform(bookID)
	b.WriteString(code)
	b.WriteString("2")
	b.WriteString(digest[len(digest)-2:])

	for i, seg := range segments {
		fmt.Fprintf(&b, "%02x", len(seg))
		b.WriteString(seg)
		if i < len(segments)-1 {
			b.WriteString("g")
		}
	}

	result := b.String()
	if len(result) < minLength {
		result += digest[:minLength-len(result)]
	}

	return result + md5Hex(result)[:3]
}

// ReaderURL returns the permanent web reader link for a book.
func ReaderURL(bookID string) string {
	return ReaderURLPrefix + Encode(bookID)
}

// transform hex-encodes the id. Numeric ids are split into 9-digit chunks
// (type "3"); anything else is encoded rune by rune into one segment (type "4").
func transform(bookID string) (string, []string) {
	if isDigits(bookID) {
		var segments []string
		for i := 0; i < len(bookID); i += chunkSize {
			end := min(i+chunkSize, len(bookID))
			n, _ := strconv.ParseUint(bookID[i:end], 10, 64)
			segments = append(segments, strconv.FormatUint(n, 16))
		}
		return "3", segments
	}

	var b strings.Builder
	for _, r := range bookID {
		b.WriteString(strconv.FormatInt(int64(r), 16))
	}
	return "4", []string{b.String()}
}

// isDigits accepts ASCII digits only; platform ids never carry other digit runes.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
