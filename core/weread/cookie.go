package weread

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var cookiePattern = regexp.MustCompile(`([^=]+)=([^;]+);?\s*`)

// ParseCookies splits a raw "k1=v1; k2=v2" cookie string. Non-ASCII characters in
// values are escaped as \uXXXX so they survive the HTTP header.
func ParseCookies(raw string) []*http.Cookie {
	var out []*http.Cookie
	for _, m := range cookiePattern.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: escapeNonASCII(strings.TrimSpace(m[2]))})
	}
	return out
}

func escapeNonASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			fmt.Fprintf(&b, `\U%08x`, r)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.String()
}
