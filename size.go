package cssembed

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// checkSize returns ErrOversizeAsset when size is over the configured limit.
func (e *Embedder) checkSize(size int64) error {
	if !e.hasMaxSize || size < 0 || uint64(size) <= e.maxSize {
		return nil
	}

	return errors.Wrapf(ErrOversizeAsset, "%s is over the %s limit",
		humanize.Bytes(uint64(size)), humanize.Bytes(e.maxSize))
}
