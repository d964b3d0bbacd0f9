package cssembed

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is the outcome of embedding a single URL.
type Status string

const (
	StatusEmbedded    Status = "embedded"
	StatusMissing     Status = "missing"
	StatusDirectory   Status = "directory"
	StatusTooBig      Status = "too-big"
	StatusFetchFailed Status = "fetch-failed"
	StatusFailed      Status = "failed"
)

// URLResult describes what happened to one URL of a stylesheet.
type URLResult struct {
	URL      string
	Path     string
	Status   Status
	MimeType string
	Size     int64
	Err      error
}

// Result is the processed stylesheet and the outcome of each of its URLs,
// in the order they were processed.
type Result struct {
	Content string
	URLs    []URLResult
}

// NoOp reports whether there was nothing to embed.
func (r *Result) NoOp() bool {
	return len(r.URLs) == 0
}

// Embedded returns the number of URLs that were embedded.
func (r *Result) Embedded() int {
	n := 0
	for _, u := range r.URLs {
		if u.Status == StatusEmbedded {
			n++
		}
	}
	return n
}

// EmbedCSS embeds the URLs of css. Local URLs are resolved against baseDir,
// or against Config.BaseDir when baseDir is empty.
func (e *Embedder) EmbedCSS(ctx context.Context, css string, baseDir string) (*Result, error) {
	if !e.isValidated {
		return nil, ErrNotValidated
	}

	if baseDir == "" {
		baseDir = e.BaseDir
	}

	return e.processCSS(ctx, css, baseDir, "")
}

// processCSS embeds the URLs of css one at a time, in the order they first
// appear. Missing assets abort the run only when FailOnMissingURL is set,
// anything unexpected always does.
func (e *Embedder) processCSS(ctx context.Context, css string, baseDir string, name string) (*Result, error) {
	fields := logrus.Fields{}
	if name != "" {
		fields["file"] = name
	}

	result := &Result{Content: css}
	urls := findURLs(css, e.Inclusive)
	if len(urls) == 0 {
		e.logf(fields, "nothing to embed here")
		return result, nil
	}

	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve base directory")
	}

	e.logVerbosef(fields, "using %q as base directory for URLs", baseDir)
	e.logf(fields, "%s found", pluralize(len(urls), "embeddable URL"))

	// Cancelling ctx stops the loop between URLs, a download that already
	// started runs to completion.
	fetchCtx := context.WithoutCancel(ctx)

	for i, raw := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		urlFields := logrus.Fields{"url": raw, "index": i + 1}
		for k, v := range fields {
			urlFields[k] = v
		}

		var urlResult URLResult
		css, urlResult = e.embedURL(fetchCtx, css, raw, baseDir)
		result.URLs = append(result.URLs, urlResult)

		err := urlResult.Err
		switch {
		case err == nil:
			e.logVerbosef(urlFields, "%q is %s (%d bytes)", raw, urlResult.MimeType, urlResult.Size)
			e.logf(urlFields, "%q embedded", raw)
		case errors.Is(err, ErrOversizeAsset), errors.Is(err, ErrIsDirectory):
			e.logWarn(urlFields, "%q skipped: %v", raw, err)
		case (errors.Is(err, ErrMissingAsset) || errors.Is(err, ErrRemoteFetch)) && !e.FailOnMissingURL:
			e.logWarn(urlFields, "%q skipped: %v", raw, err)
		default:
			e.logError(urlFields, "embedding failed: %v", err)
			return nil, err
		}
	}

	result.Content = css
	return result, nil
}

// embedURL resolves raw and replaces it within css. On failure css is
// returned untouched along with the error in the URL result.
func (e *Embedder) embedURL(ctx context.Context, css string, raw string, baseDir string) (string, URLResult) {
	urlResult := URLResult{URL: raw}

	asset, err := e.resolveURL(ctx, raw, baseDir)
	if err != nil {
		var urlErr *URLError
		if errors.As(err, &urlErr) {
			urlResult.Path = urlErr.Path
		}
		urlResult.Status = statusOf(err)
		urlResult.Err = err
		return css, urlResult
	}

	urlResult.Path = asset.Path
	urlResult.Size = asset.Size
	urlResult.MimeType = e.mimeType(asset.Data, raw)
	urlResult.Status = StatusEmbedded

	dataURL := createDataURL(asset.Data, urlResult.MimeType)
	return replaceURL(css, raw, dataURL), urlResult
}

func statusOf(err error) Status {
	switch {
	case errors.Is(err, ErrMissingAsset):
		return StatusMissing
	case errors.Is(err, ErrIsDirectory):
		return StatusDirectory
	case errors.Is(err, ErrOversizeAsset):
		return StatusTooBig
	case errors.Is(err, ErrRemoteFetch):
		return StatusFetchFailed
	default:
		return StatusFailed
	}
}
