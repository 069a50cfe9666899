package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>alert(1)</script>"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownExternalLinks(t *testing.T) {
	out := string(RenderMarkdown("see [site](https://example.com)"))

	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noopener")
}

func TestRenderMarkdownImages(t *testing.T) {
	out := string(RenderMarkdown("![cat](https://example.com/cat.png)"))

	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
}

func TestRenderMarkdownEmpty(t *testing.T) {
	assert.Empty(t, string(RenderMarkdown("")))
}

func TestNormalizeContentCountsRunes(t *testing.T) {
	text, n := NormalizeContent("  héllo wörld \n")

	assert.Equal(t, "héllo wörld", text)
	assert.Equal(t, 11, n)
}

func TestRandomAvatar(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.True(t, strings.HasPrefix(RandomAvatar(), "https://i.pravatar.cc/150?img="))
	}
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%100\% sure\_x%`, LikePattern("100% Sure_x"))
}

func TestQueryInt(t *testing.T) {
	assert.Equal(t, 3, QueryInt("3", 1))
	assert.Equal(t, 7, QueryInt(" 7 ", 1))
	assert.Equal(t, 1, QueryInt("", 1))
	assert.Equal(t, 10, QueryInt("ten", 10))
	assert.Equal(t, -2, QueryInt("-2", 1))
}
