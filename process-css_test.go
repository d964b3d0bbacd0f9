package cssembed

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedCSS(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "img/a.png", pngData)

		e, _ := newTestEmbedder(t, nil)
		css := "a { background: url(img/a.png) no-repeat; }\nb { background: url('img/a.png'); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)

		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
		expected := "a { background: url(" + dataURL + ") no-repeat; }\nb { background: url(" + dataURL + "); }"
		assert.Equal(t, expected, result.Content)

		// Decoding the payload gives back the original bytes
		parts := regexp.MustCompile(`base64,([^)]+)\)`).FindStringSubmatch(result.Content)
		require.Len(t, parts, 2)
		decoded, err := base64.StdEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		assert.Equal(t, pngData, decoded)

		require.Len(t, result.URLs, 1)
		assert.Equal(t, StatusEmbedded, result.URLs[0].Status)
		assert.Equal(t, "image/png", result.URLs[0].MimeType)
		assert.Equal(t, int64(len(pngData)), result.URLs[0].Size)
		assert.Equal(t, 1, result.Embedded())
	})

	t.Run("idempotent", func(t *testing.T) {
		e, hook := newTestEmbedder(t, nil)
		css := "a { background: url(data:image/png;base64,iVBORw0KGgo=); }"

		result, err := e.EmbedCSS(ctx, css, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)
		assert.True(t, result.NoOp())

		result, err = e.EmbedCSS(ctx, result.Content, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)
		assert.Equal(t, "nothing to embed here", hook.LastEntry().Message)
	})

	t.Run("exclusion marker", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, _ := newTestEmbedder(t, nil)
		css := "a { background: url(a.png) /* noembed */; }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)
		assert.True(t, result.NoOp())
	})

	t.Run("inclusion marker", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.png", pngData)
		writeFile(t, dir, "c.png", pngData)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.Inclusive = true })
		css := "a { background: url(b.png) /* embed */; }\nc { background: url(c.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)

		assert.Contains(t, result.Content, "url(data:image/png;base64,")
		assert.NotContains(t, result.Content, "url(b.png)")
		assert.Contains(t, result.Content, "url(c.png)")
		require.Len(t, result.URLs, 1)
		assert.Equal(t, "b.png", result.URLs[0].URL)
	})

	t.Run("size gate", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "big.png", make([]byte, 20))

		e, hook := newTestEmbedder(t, func(cfg *Config) { cfg.SkipURLsLargerThan = "10B" })
		css := "a { background: url(big.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)

		require.Len(t, result.URLs, 1)
		assert.Equal(t, StatusTooBig, result.URLs[0].Status)
		assert.ErrorIs(t, result.URLs[0].Err, ErrOversizeAsset)
		require.Len(t, warnings(hook), 1)
		assert.Contains(t, warnings(hook)[0], "big.png")
	})

	t.Run("size gate never fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "big.png", make([]byte, 20))
		writeFile(t, dir, "small.png", pngData[:8])

		e, _ := newTestEmbedder(t, func(cfg *Config) {
			cfg.SkipURLsLargerThan = "10B"
			cfg.FailOnMissingURL = true
		})
		css := "a { background: url(big.png); } b { background: url(small.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)
		assert.Contains(t, result.Content, "url(big.png)")
		assert.NotContains(t, result.Content, "url(small.png)")
	})

	t.Run("missing asset is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = true })
		css := "a { background: url(missing.png); } b { background: url(a.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingAsset)
		assert.Contains(t, err.Error(), "missing.png")

		var urlErr *URLError
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, "missing.png", urlErr.URL)
	})

	t.Run("missing asset is skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, hook := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = false })
		css := "a { background: url(missing.png); } b { background: url(a.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)

		assert.Contains(t, result.Content, "url(missing.png)")
		assert.NotContains(t, result.Content, "url(a.png)")
		require.Len(t, result.URLs, 2)
		assert.Equal(t, StatusMissing, result.URLs[0].Status)
		assert.Equal(t, StatusEmbedded, result.URLs[1].Status)
		require.Len(t, warnings(hook), 1)
		assert.Contains(t, warnings(hook)[0], "missing.png")
	})

	t.Run("fatal abort stops before the next url", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Write(pngData)
		}))
		defer server.Close()

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = true })
		css := "a { background: url(missing.png); }\nb { background: url(" + server.URL + "/a.png); }"
		result, err := e.EmbedCSS(ctx, css, t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingAsset)
		assert.Nil(t, result)
		assert.Zero(t, atomic.LoadInt32(&hits), "no url is resolved after a fatal one")
	})

	t.Run("directory is skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "img/a.png", pngData)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = true })
		css := "a { background: url(img); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)
		require.Len(t, result.URLs, 1)
		assert.Equal(t, StatusDirectory, result.URLs[0].Status)
	})

	t.Run("query and fragment", func(t *testing.T) {
		dir := t.TempDir()
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
		writeFile(t, dir, "icon.svg", svg)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.UseMimeTypeSniffing = false })
		css := `a { background: url("icon.svg?v=2#frag"); }`
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)

		dataURL := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
		assert.Equal(t, "a { background: url("+dataURL+"); }", result.Content)
		require.Len(t, result.URLs, 1)
		assert.Equal(t, "icon.svg?v=2#frag", result.URLs[0].URL)
		assert.Regexp(t, `icon\.svg$`, result.URLs[0].Path)
	})

	t.Run("default base dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.BaseDir = dir })
		result, err := e.EmbedCSS(ctx, "a { background: url(a.png); }", "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Embedded())
	})

	t.Run("unexpected failure", func(t *testing.T) {
		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = false })

		// A NUL byte makes the path invalid for stat, which isn't a missing file.
		css := "a { background: url(a\x00.png); }"
		_, err := e.EmbedCSS(ctx, css, t.TempDir())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMissingAsset)
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		e, _ := newTestEmbedder(t, nil)
		_, err := e.EmbedCSS(cctx, "a { background: url(a.png); }", dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEmbedCSS_RemoteFailure(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngData)
	})
	mux.HandleFunc("/missing.png", http.NotFound)
	server := httptest.NewServer(mux)
	defer server.Close()

	missingURL := server.URL + "/missing.png"

	t.Run("fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, _ := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = true })
		css := "a { background: url(" + missingURL + "); }\nb { background: url(a.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrRemoteFetch)

		var urlErr *URLError
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, missingURL, urlErr.URL)
	})

	t.Run("skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.png", pngData)

		e, hook := newTestEmbedder(t, func(cfg *Config) { cfg.FailOnMissingURL = false })
		css := "a { background: url(" + missingURL + "); }\nb { background: url(a.png); }"
		result, err := e.EmbedCSS(ctx, css, dir)
		require.NoError(t, err)

		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
		expected := "a { background: url(" + missingURL + "); }\nb { background: url(" + dataURL + "); }"
		assert.Equal(t, expected, result.Content)

		require.Len(t, result.URLs, 2)
		assert.Equal(t, StatusFetchFailed, result.URLs[0].Status)
		assert.Equal(t, StatusEmbedded, result.URLs[1].Status)
		require.Len(t, warnings(hook), 1)
		assert.Contains(t, warnings(hook)[0], "missing.png")
	})

	t.Run("too big", func(t *testing.T) {
		e, hook := newTestEmbedder(t, func(cfg *Config) {
			cfg.FailOnMissingURL = true
			cfg.SkipURLsLargerThan = "5B"
		})
		css := "a { background: url(" + server.URL + "/a.png); }"
		result, err := e.EmbedCSS(ctx, css, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, css, result.Content)

		require.Len(t, result.URLs, 1)
		assert.Equal(t, StatusTooBig, result.URLs[0].Status)
		assert.Zero(t, result.Embedded())
		assert.Len(t, warnings(hook), 1)
	})
}
