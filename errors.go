package cssembed

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotValidated  = errors.New("embedder hasn't been validated")
	ErrMissingAsset  = errors.New("asset not found")
	ErrIsDirectory   = errors.New("asset is a directory")
	ErrRemoteFetch   = errors.New("remote fetch failed")
	ErrOversizeAsset = errors.New("asset is too big")
	ErrMimeSniff     = errors.New("mime type sniffing failed")
)

// URLError records a failure and the URL that caused it.
type URLError struct {
	URL  string // raw URL as written in the stylesheet
	Path string // resolved path or URL, might be empty
	Err  error
}

func (e *URLError) Error() string {
	if e.Path != "" && e.Path != e.URL {
		return fmt.Sprintf("url %q (%s): %v", e.URL, e.Path, e.Err)
	}
	return fmt.Sprintf("url %q: %v", e.URL, e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }
