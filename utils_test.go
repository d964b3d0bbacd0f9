package cssembed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtils(t *testing.T) {
	t.Run("Test create dataURL", func(t *testing.T) {
		result := createDataURL([]byte("TextforTest"), "text/plain")
		assert.Equal(t, "data:text/plain;base64,VGV4dGZvclRlc3Q=", result)
	})

	t.Run("Test isRemoteURL", func(t *testing.T) {
		assert.True(t, isRemoteURL("http://example.com/a.png"))
		assert.True(t, isRemoteURL(" HTTPS://example.com/a.png"))
		assert.False(t, isRemoteURL("img/http.png"))
		assert.False(t, isRemoteURL("//example.com/a.png"))
	})

	t.Run("Test localPath", func(t *testing.T) {
		assert.Equal(t, "icon.svg", localPath("icon.svg?v=2#frag"))
		assert.Equal(t, "icon.svg", localPath("icon.svg#frag?v=2"))
		assert.Equal(t, "font.eot", localPath(" font.eot?#iefix "))
		assert.Equal(t, "a.png", localPath("a.png"))
	})

	t.Run("Test pluralize", func(t *testing.T) {
		assert.Equal(t, "1 file", pluralize(1, "file"))
		assert.Equal(t, "3 files", pluralize(3, "file"))
	})
}

func TestReplaceURL(t *testing.T) {
	dataURL := "data:image/png;base64,AAAA"

	t.Run("every quoting style", func(t *testing.T) {
		css := `a { background: url(a.png); } b { background: url("a.png"); } c { background: url('a.png'); }`
		result := replaceURL(css, "a.png", dataURL)
		expected := `a { background: url(data:image/png;base64,AAAA); } b { background: url(data:image/png;base64,AAAA); } c { background: url(data:image/png;base64,AAAA); }`
		assert.Equal(t, expected, result)
	})

	t.Run("escapes regex characters", func(t *testing.T) {
		css := "a { background: url(img/a+b.png?v=1.0); } b { background: url(img/aab.png?v=100); }"
		result := replaceURL(css, "img/a+b.png?v=1.0", dataURL)
		expected := "a { background: url(data:image/png;base64,AAAA); } b { background: url(img/aab.png?v=100); }"
		assert.Equal(t, expected, result)
	})

	t.Run("leaves other text alone", func(t *testing.T) {
		css := "/* a.png */ a { background: url(a.png?v=1); content: 'a.png'; }"
		assert.Equal(t, css, replaceURL(css, "a.png", dataURL))
	})

	t.Run("no template expansion", func(t *testing.T) {
		css := "a { background: url(a.png); }"
		result := replaceURL(css, "a.png", "data:text/plain;base64,$1")
		assert.Equal(t, "a { background: url(data:text/plain;base64,$1); }", result)
	})
}
