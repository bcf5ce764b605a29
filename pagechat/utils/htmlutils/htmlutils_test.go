package htmlutils

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalizeReply(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", EmptyReply},
		{"already html", "<p>Hello</p>", "<p>Hello</p>"},
		{"fenced", "```html\n<ul><li>a</li></ul>\n```", "<ul><li>a</li></ul>"},
		{"fence is case insensitive", "```HTML <p>x</p>```", "<p>x</p>"},
		{"plain text", "Just text", "<p>Just text</p>"},
		{"starts with text", "Answer: <b>yes</b>", "<p>Answer: <b>yes</b></p>"},
		{"leading whitespace", "  <p>ok</p>", "  <p>ok</p>"},
		{"angle bracket without tag", "<3", "<p><3</p>"},
	}
	for _, tc := range cases {
		if got := NormalizeReply(tc.in); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestStripFencedParagraphs(t *testing.T) {
	in := "<p>intro</p><p>```go run .```</p>"
	want := "<p>intro</p>```go run .```"
	if got := StripFencedParagraphs(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestToText(t *testing.T) {
	in := `<p>Hello <b>world</b></p><ul><li>one</li><li>two</li></ul><pre><code>x := 1</code></pre>`
	want := "Hello world\n\n- one\n- two\n\nx := 1"
	if got := ToText(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestToTextInlineCodeAndBreaks(t *testing.T) {
	got := ToText(`<p>run <code>go test</code><br>then relax</p>`)
	want := "run `go test`\nthen relax"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDocumentTextSkipsScripts(t *testing.T) {
	page := `<html><head><title>T</title><style>p{}</style></head>
<body><h1>Title</h1><script>var x = 1;</script><p>Visible
   text</p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := DocumentText(doc)
	if strings.Contains(got, "var x") || strings.Contains(got, "p{}") {
		t.Errorf("script or style leaked into text: %q", got)
	}
	if got != "Title\n\nVisible text" {
		t.Errorf("unexpected text %q", got)
	}
}
