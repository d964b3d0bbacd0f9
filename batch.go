package cssembed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Job is a single source file and the destination of its result.
type Job struct {
	Src  string
	Dest string

	// BaseDir overrides Config.BaseDir for this job.
	BaseDir string
}

// Sink receives the processed content of each job.
type Sink interface {
	WriteFile(dest string, content []byte) error
}

// FileSink writes results to disk, creating missing directories.
type FileSink struct {
	Perm os.FileMode
}

// WriteFile implements Sink.
func (s FileSink) WriteFile(dest string, content []byte) error {
	perm := s.Perm
	if perm == 0 {
		perm = 0644
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}

	return os.WriteFile(dest, content, perm)
}

// FileResult is the outcome of a job that was written to its destination.
type FileResult struct {
	Src  string
	Dest string
	URLs []URLResult
}

// BatchResult is the outcome of Run.
type BatchResult struct {
	Files   []FileResult
	Skipped []string // sources that don't exist
}

// Run processes jobs concurrently, each file's URLs strictly in order, and
// hands the results to sink. Jobs whose source doesn't exist are skipped.
// The first fatal error stops the batch, no destination is written for
// files that failed.
func (e *Embedder) Run(ctx context.Context, jobs []Job, sink Sink) (*BatchResult, error) {
	if !e.isValidated {
		return nil, ErrNotValidated
	}

	if sink == nil {
		sink = FileSink{}
	}

	batch := &BatchResult{}
	var pending []Job
	for _, job := range jobs {
		if !isFile(job.Src) {
			e.logWarn(logrus.Fields{"file": job.Src}, "source file %q not found", job.Src)
			batch.Skipped = append(batch.Skipped, job.Src)
			continue
		}
		pending = append(pending, job)
	}

	var (
		mutex     sync.Mutex
		errs      error
		remaining = int64(len(pending))
		results   = make([]*FileResult, len(pending))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.MaxConcurrentFiles)

	for i, job := range pending {
		i, job := i, job
		g.Go(func() error {
			result, err := e.processFile(gctx, job, sink)
			left := atomic.AddInt64(&remaining, -1)
			if err != nil {
				// Files cancelled because another one failed aren't errors of their own.
				if !(errors.Is(err, context.Canceled) && gctx.Err() != nil && ctx.Err() == nil) {
					mutex.Lock()
					errs = multierr.Append(errs, err)
					mutex.Unlock()
				}
				return err
			}

			results[i] = result
			e.logVerbosef(logrus.Fields{"file": job.Src}, "%s remaining", pluralize(int(left), "file"))
			return nil
		})
	}

	_ = g.Wait()

	for _, result := range results {
		if result != nil {
			batch.Files = append(batch.Files, *result)
		}
	}

	return batch, errs
}

func (e *Embedder) processFile(ctx context.Context, job Job, sink Sink) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := logrus.Fields{"file": job.Src}
	e.logf(fields, "processing source file %q", job.Src)

	content, err := os.ReadFile(job.Src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", job.Src)
	}

	baseDir := job.BaseDir
	if baseDir == "" {
		baseDir = e.BaseDir
	}
	if baseDir == "" {
		baseDir = filepath.Dir(job.Src)
	}

	var result *Result
	switch strings.ToLower(filepath.Ext(job.Src)) {
	case ".html", ".htm":
		result, err = e.processHTML(ctx, bytes.NewReader(content), baseDir, job.Src)
	default:
		result, err = e.processCSS(ctx, string(content), baseDir, job.Src)
	}

	if err != nil {
		return nil, errors.WithMessagef(err, "failed to embed %s", job.Src)
	}

	// The batch may have been stopped while the last download was running.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := sink.WriteFile(job.Dest, []byte(result.Content)); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", job.Dest)
	}

	e.logf(fields, "file %q created", job.Dest)

	return &FileResult{Src: job.Src, Dest: job.Dest, URLs: result.URLs}, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
