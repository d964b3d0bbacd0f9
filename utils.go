package cssembed

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// createDataURL returns base64 encoded data URL
func createDataURL(content []byte, contentType string) string {
	b64encoded := base64.StdEncoding.EncodeToString(content)
	return fmt.Sprintf("data:%s;base64,%s", contentType, b64encoded)
}

// replaceURL replaces every `(raw)`, `("raw")` and `('raw')` in css with
// `(dataURL)`. Raw is escaped since it's author controlled text.
func replaceURL(css, raw, dataURL string) string {
	rx := regexp.MustCompile(`\(['"]?` + regexp.QuoteMeta(raw) + `['"]?\)`)
	return rx.ReplaceAllLiteralString(css, "("+dataURL+")")
}

// isRemoteURL checks if url should be downloaded instead of read from disk.
func isRemoteURL(url string) bool {
	url = strings.TrimSpace(url)
	return hasPrefixFold(url, "http:") || hasPrefixFold(url, "https:")
}

// localPath strips the query then the fragment from url, which
// leaves the path of the file it refers to.
func localPath(url string) string {
	url = strings.TrimSpace(url)
	url, _, _ = strings.Cut(url, "?")
	url, _, _ = strings.Cut(url, "#")
	return url
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
