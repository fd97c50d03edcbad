package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{".html", ".htm", ".xhtml"}, n.SupportedExtensions())
	assert.Equal(t, 50, n.Priority())
}

func TestNormaliser_Extract(t *testing.T) {
	input := `<!DOCTYPE html>
<html>
<head><title>Amendment</title><style>p { color: red; }</style></head>
<body>
<!-- draft -->
<h1>First Amendment</h1>
<p>Section 4.1 is amended to read &ldquo;two (2) years&rdquo;.</p>
<script>alert("x")</script>
<table><tr><td>Fee</td><td>$100</td></tr></table>
<p>Signed<br>Acme&nbsp;Corp</p>
</body>
</html>`

	got, err := New().Extract(context.Background(), "amendment.html", []byte(input))
	require.NoError(t, err)

	assert.Equal(t, "First Amendment\n"+
		"Section 4.1 is amended to read “two (2) years”.\n"+
		"Fee | $100\n"+
		"Signed\n"+
		"Acme Corp", got)
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "no tags", "no tags"},
		{"entities", "A &amp; B &lt;Ltd&gt;", "A & B <Ltd>"},
		{"list", "<ul><li>One</li><li>Two</li></ul>", "One\nTwo"},
		{"hr", "A<hr/>B", "A\nB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}
