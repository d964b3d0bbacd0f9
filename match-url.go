package cssembed

import (
	"regexp"
	"strings"
)

// rxEmbeddableURL matches url(...) followed by a statement terminator and an
// optional marker comment. The terminator keeps url( inside longer tokens
// from producing partial matches.
//
// The url keyword and both markers are matched case-insensitively.
//
// Groups: 1 raw URL, 2 marker comment, 3 "no" when the marker opts out.
var rxEmbeddableURL = regexp.MustCompile(`(?i)url\(["']?([^"'()]+)["']?\)[};,!\s](\s*/\*\s*(no)?embed\s*\*/)?`)

// findURLs returns the unique raw URLs of css that should be embedded, in
// the order they first appear. In inclusive mode only URLs marked with
// `/* embed */` are returned, otherwise every URL except those marked with
// `/* noembed */`. URLs that are already data URIs are ignored.
func findURLs(css string, inclusive bool) []string {
	var urls []string
	seen := make(map[string]struct{})

	for _, parts := range rxEmbeddableURL.FindAllStringSubmatch(css, -1) {
		raw, marker, optOut := parts[1], parts[2], parts[3]

		switch {
		case optOut != "":
			continue
		case inclusive && marker == "":
			continue
		}

		url := strings.TrimSpace(raw)
		if url == "" || hasPrefixFold(url, "data:") {
			continue
		}

		if _, exist := seen[raw]; exist {
			continue
		}

		seen[raw] = struct{}{}
		urls = append(urls, raw)
	}

	return urls
}
