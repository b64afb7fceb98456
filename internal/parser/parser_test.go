package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace and drops empty lines",
			in:   "  hello    world \n\n\t\n second\tline  ",
			want: "hello world\nsecond line",
		},
		{
			name: "empty input",
			in:   " \n \t ",
			want: "",
		},
		{
			name: "fixes OCR damage in field names",
			in:   "Passw0rd: hunter22\nU5ER: bob",
			want: "Password: hunter22\nUSER: bob",
		},
		{
			name: "pipe read as l in login",
			in:   "|ogin= alice password x",
			want: "login= alice password x",
		},
		{
			name: "values are never rewritten",
			in:   "password: mySecretPass1 user: j0hn5",
			want: "password: mySecretPass1 user: j0hn5",
		},
		{
			name: "smart punctuation when field names present",
			in:   "Gmail — user: “bob”",
			want: `Gmail - user: "bob"`,
		},
		{
			name: "no correction without field keywords",
			in:   "Secr3t — “quoted”",
			want: "Secr3t — “quoted”",
		},
		{
			name: "value after a field name keeps its digits",
			in:   "password: Pa55w0rd\nuser = U5er",
			want: "password: Pa55w0rd\nuser = U5er",
		},
		{
			name: "short words untouched",
			in:   "user 10 5",
			want: "user 10 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil, nil)
	inputs := []string{
		"",
		"gmail john@email.com mypassword123",
		"Passw0rd:   hunter22 \n\n U5ername : |ogin",
		"pass–word — “x” ‘y’ 1|1 05",
		"Check this out: https://youtu.be/dQw4w9WgXcQ",
		"\t\tuser\r\n password\r\n",
		"PA55W0RD LOG1N l0gin",
		"U5ername : |ogin password: Pa55w0rd",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestCollapseLines(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a b\nc", CollapseLines(" a   b \n\n  c\n"))
}

func TestHTMLParser_Parse(t *testing.T) {
	t.Parallel()

	p := NewHTMLParser()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		out, err := p.Parse("  ")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("blocks become lines and scripts vanish", func(t *testing.T) {
		t.Parallel()
		out, err := p.Parse(`<html><head><title>x</title></head><body>
			<script>var a = 1;</script>
			<p>Gmail</p><div>user: bob</div><p>pass: Secret123!</p>
		</body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Gmail\nuser: bob\npass: Secret123!", out)
	})

	t.Run("anchor targets are kept", func(t *testing.T) {
		t.Parallel()
		out, err := p.Parse(`<p>see <a href="https://github.com/golang/go">the repo</a> and <a href="#top">top</a></p>`)
		require.NoError(t, err)
		assert.True(t, strings.Contains(out, "the repo https://github.com/golang/go"), out)
		assert.NotContains(t, out, "#top")
	})

	t.Run("invisible characters removed", func(t *testing.T) {
		t.Parallel()
		out, err := p.Parse("<p>pass\u200bword</p>")
		require.NoError(t, err)
		assert.Equal(t, "password", out)
	})
}
