package cssembed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SourceKind tells where the content of an asset came from.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRemote
)

func (k SourceKind) String() string {
	if k == SourceRemote {
		return "remote"
	}
	return "local"
}

// Asset is the content a URL resolved to.
type Asset struct {
	Data []byte
	Kind SourceKind
	Size int64
	Path string // absolute file path, or the URL for remote assets
}

// resolveURL loads the content of raw, which is read from disk relative to
// baseDir unless it's an http(s) URL. Errors are always *URLError.
func (e *Embedder) resolveURL(ctx context.Context, raw string, baseDir string) (*Asset, error) {
	url := strings.TrimSpace(raw)
	if isRemoteURL(url) {
		return e.resolveRemote(ctx, raw, url)
	}
	return e.resolveLocal(raw, url, baseDir)
}

func (e *Embedder) resolveRemote(ctx context.Context, raw string, url string) (*Asset, error) {
	e.logVerbosef(logrus.Fields{"url": raw}, "downloading %s", url)

	data, err := e.downloadFile(ctx, url)
	if err != nil {
		return nil, &URLError{URL: raw, Path: url, Err: fmt.Errorf("%w: %w", ErrRemoteFetch, err)}
	}

	// Size is unknown until the whole body is there.
	size := int64(len(data))
	if err := e.checkSize(size); err != nil {
		return nil, &URLError{URL: raw, Path: url, Err: err}
	}

	return &Asset{Data: data, Kind: SourceRemote, Size: size, Path: url}, nil
}

func (e *Embedder) resolveLocal(raw string, url string, baseDir string) (*Asset, error) {
	path, err := filepath.Abs(filepath.Join(baseDir, filepath.FromSlash(localPath(url))))
	if err != nil {
		return nil, &URLError{URL: raw, Err: err}
	}

	e.logVerbosef(logrus.Fields{"url": raw, "path": path}, "%q resolved to %q", raw, path)

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return nil, &URLError{URL: raw, Path: path, Err: ErrMissingAsset}
	case err != nil:
		return nil, &URLError{URL: raw, Path: path, Err: err}
	case info.IsDir():
		return nil, &URLError{URL: raw, Path: path, Err: ErrIsDirectory}
	}

	// Checked before reading so huge files are never loaded.
	if err := e.checkSize(info.Size()); err != nil {
		return nil, &URLError{URL: raw, Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &URLError{URL: raw, Path: path, Err: err}
	}

	return &Asset{Data: data, Kind: SourceLocal, Size: int64(len(data)), Path: path}, nil
}
