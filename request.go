package cssembed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var maxElapsedTime = 30 * time.Second

// downloadFile fetches url and returns its body as is. Server errors and
// rate limiting are retried up to MaxRetries times.
func (e *Embedder) downloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", e.UserAgent)

	var resp *http.Response
	op := func() error {
		var err error
		resp, err = e.httpClient.Do(req) //nolint:bodyclose
		if err != nil {
			return err
		}

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return fmt.Errorf("failed to fetch with status code: %d", resp.StatusCode)
		}

		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = maxElapsedTime
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(e.MaxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch with status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
