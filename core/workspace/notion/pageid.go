package notion

import (
	"fmt"
	"regexp"
	"strings"
)

var pageIDPattern = regexp.MustCompile(`([a-f0-9]{32}|[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})`)

// ExtractPageID returns the dashed page id found in a Notion URL or raw id.
func ExtractPageID(s string) (string, error) {
	match := pageIDPattern.FindString(strings.ToLower(s))
	if match == "" {
		return "", fmt.Errorf("no notion page id in %q", s)
	}
	id := strings.ReplaceAll(match, "-", "")
	return id[0:8] + "-" + id[8:12] + "-" + id[12:16] + "-" + id[16:20] + "-" + id[20:], nil
}
