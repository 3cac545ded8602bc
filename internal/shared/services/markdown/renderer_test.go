package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailRenderer_ToHTMLSanitized(t *testing.T) {
	r := NewEmailRenderer()

	out, err := r.ToHTMLSanitized("## Heads up\n\nRenew at https://gym.example/renew\n\n**Thanks**")
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>Heads up</h2>")
	assert.Contains(t, out, `<a href="https://gym.example/renew">`)
	assert.Contains(t, out, "<strong>Thanks</strong>")
}

func TestEmailRenderer_StripsUnsafeContent(t *testing.T) {
	r := NewEmailRenderer()

	out, err := r.ToHTMLSanitized("hello <script>alert(1)</script> [x](javascript:alert(1)) <img src=x onerror=alert(1)>")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "hello")
}

func TestEmailRenderer_Sanitize(t *testing.T) {
	r := NewEmailRenderer()

	assert.Equal(t, "<p>ok</p>", r.Sanitize(`<p style="color:red" onclick="x()">ok</p>`))
}
