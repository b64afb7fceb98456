package categorize

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/stashbot/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine() *Engine {
	return NewEngine(DefaultRules(), testLogger())
}

func ofKind(findings []models.Finding, kind models.Kind) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestEngine_Extract_ServiceUserPass(t *testing.T) {
	t.Parallel()

	findings := newTestEngine().Extract("gmail john@email.com mypassword123")

	assert.Equal(t, []models.Finding{{
		Kind:     models.KindCredential,
		Label:    "Gmail",
		Username: "john@email.com",
		Password: "mypassword123",
	}}, ofKind(findings, models.KindCredential))
	assert.Empty(t, ofKind(findings, models.KindPassword))
	assert.Empty(t, ofKind(findings, models.KindNote))
	assert.Empty(t, ofKind(findings, models.KindLink))
}

func TestEngine_Extract_PasswordWithLabelAfterIndicator(t *testing.T) {
	t.Parallel()

	findings := newTestEngine().Extract("password: gmail mySecretPass1")

	assert.Equal(t, []models.Finding{{
		Kind:     models.KindPassword,
		Label:    "Gmail",
		Password: "mySecretPass1",
	}}, findings)
}

func TestEngine_Extract_YouTubeLink(t *testing.T) {
	t.Parallel()

	findings := newTestEngine().Extract("Check this out: https://youtu.be/dQw4w9WgXcQ")

	assert.Equal(t, []models.Finding{{
		Kind:     models.KindLink,
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		LinkType: models.LinkYouTube,
	}}, findings)
}

func TestEngine_Extract_ReservedKeywordsNeverStored(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	inputs := []string{
		"user",
		"password: password",
		"user: password pass: user",
		"username user\npassword pass",
		"login email",
	}

	for _, in := range inputs {
		findings := e.Extract(in)
		for _, f := range findings {
			assert.False(t, f.IsSecret(), "input %q produced %+v", in, f)
		}
	}

	assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: "user"}}, e.Extract("user"))
}

func TestEngine_Extract_LengthGuard(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	long := strings.Repeat("a", 10000) + " password: Secret123!"

	findings := e.Extract(long)

	require.Len(t, findings, 1)
	assert.Equal(t, models.KindNote, findings[0].Kind)
	assert.Equal(t, strings.Repeat("a", 10000), findings[0].Text)
}

func TestEngine_Extract_Credentials(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	tests := []struct {
		name string
		in   string
		want []models.Finding
	}{
		{
			name: "three line block with strong password",
			in:   "Gmail\nuser: bob\npass: Secret123!",
			want: []models.Finding{{Kind: models.KindCredential, Label: "Gmail", Username: "bob", Password: "Secret123!"}},
		},
		{
			name: "label from key words",
			in:   "Work email password: Tr0ub4dor&3",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Work", Password: "Tr0ub4dor&3"}},
		},
		{
			name: "ocr damaged field name",
			in:   "Passw0rd: Hunter22!",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Hunter22!"}},
		},
		{
			name: "username indicator nearby needs maximum strength",
			in:   "the account is Zx9#Lm2$Qp",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Zx9#Lm2$Qp"}},
		},
		{
			name: "same password twice is one finding",
			in:   "password: Secret123! password: Secret123!",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Secret123!"}},
		},
		{
			name: "service colon user slash pass",
			in:   "gmail: bob/Hunter22",
			want: []models.Finding{{Kind: models.KindCredential, Label: "Gmail", Username: "bob", Password: "Hunter22"}},
		},
		{
			name: "block with short password",
			in:   "Netflix\nlogin: alice\npass: abc123",
			want: []models.Finding{{Kind: models.KindCredential, Label: "Netflix", Username: "alice", Password: "abc123"}},
		},
		{
			name: "user X password Y for service",
			in:   "user bob password hunter2 for github",
			want: []models.Finding{{Kind: models.KindCredential, Label: "Github", Username: "bob", Password: "hunter2"}},
		},
		{
			name: "pass for service",
			in:   "pass for steam: Qwerty1",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Steam", Password: "Qwerty1"}},
		},
		{
			name: "service password",
			in:   "netflix Qwerty12",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Netflix", Password: "Qwerty12"}},
		},
		{
			name: "trailing punctuation is not part of the password",
			in:   "password: Xy7#kLmn9, thanks",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Xy7#kLmn9"}},
		},
		{
			name: "field name after an indicator is not a value",
			in:   "secret ingredients: cinnamon",
			want: nil,
		},
		{
			name: "field name then bare domain",
			in:   "key takeaways: docs.python.org/3/tutorial",
			want: nil,
		},
		{
			name: "bare domain url is not a password",
			in:   "my github account: github.com/Alice99",
			want: nil,
		},
		{
			name: "bare domain url is not user slash pass",
			in:   "repo: github.com/user123",
			want: nil,
		},
		{
			name: "username equal to password is not a credential",
			in:   "user: Hunter2024x pass: Hunter2024x",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Hunter2024x"}},
		},
		{
			name: "indicator inside a key word",
			in:   "wifipassword for home: Xy7#kLmn9",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Wifi Home", Password: "Xy7#kLmn9"}},
		},
		{
			name: "label glued to the indicator",
			in:   "gmailpassword: Xy7#kLmn9",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Gmail", Password: "Xy7#kLmn9"}},
		},
		{
			name: "leetspeak value after indicator is kept",
			in:   "password: Pa55w0rd",
			want: []models.Finding{{Kind: models.KindPassword, Label: "Detected", Password: "Pa55w0rd"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			findings := e.Extract(tt.in)
			var secrets []models.Finding
			for _, f := range findings {
				if f.IsSecret() {
					secrets = append(secrets, f)
				}
			}
			assert.Equal(t, tt.want, secrets)
		})
	}
}

func TestEngine_Extract_NoSecretWithoutContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	for _, in := range []string{"see ab12CD34 later", "hello world", "meeting at 10 tomorrow"} {
		findings := e.Extract(in)
		assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: in}}, findings, "input %q", in)
	}
}

func TestEngine_Extract_FalsePositiveKeepsNote(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: "secret ingredients: cinnamon"}},
		e.Extract("secret ingredients: cinnamon"))

	findings := e.Extract("key takeaways: docs.python.org/3/tutorial")
	assert.Equal(t, []models.Finding{{
		Kind:     models.KindLink,
		URL:      "http://docs.python.org/3/tutorial",
		LinkType: models.LinkGeneral,
	}}, findings)
}

func TestEngine_Extract_Notes(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	t.Run("commands are not notes", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, e.Extract("/start"))
		assert.Empty(t, e.Extract("  /help  "))
	})

	t.Run("long text with structured data keeps a note", func(t *testing.T) {
		t.Parallel()
		in := "Remember to send the quarterly report to alice@example.com before Friday noon"
		findings := e.Extract(in)
		require.Len(t, ofKind(findings, models.KindEmail), 1)
		assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: in}}, ofKind(findings, models.KindNote))
	})

	t.Run("note text is normalized", func(t *testing.T) {
		t.Parallel()
		findings := e.Extract("  buy   milk \n\n and bread ")
		assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: "buy milk\nand bread"}}, findings)
	})

	t.Run("blank input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, e.Extract(" \n\t "))
	})
}

func TestEngine_Extract_Emails(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	findings := e.Extract("write to John.Doe@Gmail.com or jane @ outlook . com, cc bob@yahoo,com and JOHN.DOE@gmail.com")

	assert.Equal(t, []models.Finding{
		{Kind: models.KindEmail, Address: "John.Doe@Gmail.com", Label: "Gmail"},
		{Kind: models.KindEmail, Address: "bob@yahoo.com", Label: "Yahoo"},
		{Kind: models.KindEmail, Address: "jane@outlook.com", Label: "Outlook"},
	}, ofKind(findings, models.KindEmail))
	assert.Empty(t, ofKind(findings, models.KindLink))
}

func TestEngine_Extract_EmailTrailingSentence(t *testing.T) {
	t.Parallel()

	findings := newTestEngine().Extract("Mail me at bob@site.com. Thanks")

	assert.Equal(t, []models.Finding{
		{Kind: models.KindEmail, Address: "bob@site.com"},
	}, ofKind(findings, models.KindEmail))
}

func TestEngine_Extract_SpacedAtBeforeSentence(t *testing.T) {
	t.Parallel()

	in := "Call me @ work. It is urgent"
	findings := newTestEngine().Extract(in)

	assert.Empty(t, ofKind(findings, models.KindEmail))
	assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: in}}, findings)
}

func TestEngine_Extract_Links(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	tests := []struct {
		name string
		in   string
		want []models.Finding
	}{
		{
			name: "bare domain with path and trailing dot",
			in:   "visit www.github.com/golang/go.",
			want: []models.Finding{{Kind: models.KindLink, URL: "http://www.github.com/golang/go", LinkType: models.LinkGitHub}},
		},
		{
			name: "ocr spaced scheme",
			in:   "https : // stackoverflow.com/questions/1",
			want: []models.Finding{{Kind: models.KindLink, URL: "https://stackoverflow.com/questions/1", LinkType: models.LinkStackOverflow}},
		},
		{
			name: "unbalanced paren",
			in:   "(see https://reddit.com/r/golang)",
			want: []models.Finding{{Kind: models.KindLink, URL: "https://reddit.com/r/golang", LinkType: models.LinkReddit}},
		},
		{
			name: "short twitter host",
			in:   "x.com/jack",
			want: []models.Finding{{Kind: models.KindLink, URL: "http://x.com/jack", LinkType: models.LinkTwitter}},
		},
		{
			name: "youtube watch url",
			in:   "https://youtube.com/watch?v=abc",
			want: []models.Finding{{Kind: models.KindLink, URL: "https://youtube.com/watch?v=abc", LinkType: models.LinkYouTube}},
		},
		{
			name: "duplicates and order",
			in:   "https://example.org https://b.example.com https://example.org",
			want: []models.Finding{
				{Kind: models.KindLink, URL: "https://example.org", LinkType: models.LinkGeneral},
				{Kind: models.KindLink, URL: "https://b.example.com", LinkType: models.LinkGeneral},
			},
		},
		{
			name: "file names are not links",
			in:   "open report.pdf",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ofKind(e.Extract(tt.in), models.KindLink))
		})
	}
}

func TestEngine_Extract_HeuristicPanicIsContained(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	boom := heuristic{Name: "boom", Run: func(*input) []models.Finding { panic("boom") }}
	e.primary = append([]heuristic{boom}, e.primary...)
	e.links = boom

	findings := e.Extract("password: gmail mySecretPass1")

	assert.Equal(t, []models.Finding{{
		Kind:     models.KindPassword,
		Label:    "Gmail",
		Password: "mySecretPass1",
	}}, findings)
}

func TestEngine_Extract_CustomRules(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	rules.MaxContentLength = 5
	rules.CommandPrefix = "!"

	e := NewEngine(rules, testLogger())

	assert.Equal(t, []models.Finding{{Kind: models.KindNote, Text: "hello"}}, e.Extract("hello world"))
	assert.Empty(t, e.Extract("!help"))
}
