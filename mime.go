package cssembed

import (
	nurl "net/url"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"
)

const defaultMimeType = "application/octet-stream"

// Sniffer detects the MIME type of content from its leading bytes.
// An empty type without error means the content wasn't recognized.
type Sniffer interface {
	Sniff(data []byte) (string, error)
}

// FileTypeSniffer sniffs content using magic numbers.
type FileTypeSniffer struct{}

// Sniff implements Sniffer.
func (FileTypeSniffer) Sniff(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", err
	}

	if kind == filetype.Unknown {
		return "", nil
	}

	return kind.MIME.Value, nil
}

// extMimeTypes covers what usually ends up in stylesheets, including
// text formats that can't be recognized by their content.
var extMimeTypes = map[string]string{
	".png":   "image/png",
	".apng":  "image/apng",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".avif":  "image/avif",
	".bmp":   "image/bmp",
	".ico":   "image/vnd.microsoft.icon",
	".cur":   "image/x-icon",
	".svg":   "image/svg+xml",
	".svgz":  "image/svg+xml",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
	".css":   "text/css",
	".htc":   "text/x-component",
	".mp3":   "audio/mpeg",
	".ogg":   "audio/ogg",
	".wav":   "audio/wav",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
}

// mimeType returns the MIME type for data which was loaded from url.
func (e *Embedder) mimeType(data []byte, url string) string {
	if !e.sniffing {
		return mimeTypeByExtension(url)
	}

	contentType, err := e.Sniffer.Sniff(data)
	if err != nil {
		e.logWarn(logrus.Fields{"url": url, "error": err},
			"%v, using %s", ErrMimeSniff, defaultMimeType)
		return defaultMimeType
	}

	if contentType == "" {
		return mimeTypeByExtension(url)
	}

	return contentType
}

// mimeTypeByExtension returns the MIME type for the file extension of url.
func mimeTypeByExtension(url string) string {
	p := localPath(url)
	if isRemoteURL(url) {
		if parsed, err := nurl.Parse(strings.TrimSpace(url)); err == nil {
			p = parsed.Path
		}
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return defaultMimeType
	}

	if contentType, ok := extMimeTypes[ext]; ok {
		return contentType
	}

	if kind := filetype.GetType(ext[1:]); kind != filetype.Unknown {
		return kind.MIME.Value
	}

	return defaultMimeType
}
