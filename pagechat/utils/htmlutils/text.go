package htmlutils

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	blockTags = map[string]bool{
		"p": true, "div": true, "section": true, "article": true, "pre": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"ul": true, "ol": true, "table": true, "tr": true, "blockquote": true,
	}
	skipTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true, "head": true,
	}
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reSpaces     = regexp.MustCompile(`[ \t]+`)
)

// ToText renders an HTML fragment as plain terminal text.
func ToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var sb strings.Builder
	for _, n := range doc.Find("body").Nodes {
		writeNode(&sb, n, false)
	}
	return tidy(sb.String())
}

// DocumentText returns the visible text of a full page, the way
// document.body.innerText would, skipping scripts and styles.
func DocumentText(doc *goquery.Document) string {
	var sb strings.Builder
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	for _, n := range body.Nodes {
		writeNode(&sb, n, false)
	}
	return tidy(sb.String())
}

func writeNode(sb *strings.Builder, n *html.Node, inPre bool) {
	switch n.Type {
	case html.TextNode:
		if inPre {
			sb.WriteString(n.Data)
			return
		}
		text := reSpaces.ReplaceAllString(strings.ReplaceAll(n.Data, "\n", " "), " ")
		if atLineOrWordStart(sb) {
			text = strings.TrimLeft(text, " ")
		}
		sb.WriteString(text)
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		switch n.Data {
		case "br":
			sb.WriteString("\n")
			return
		case "li":
			sb.WriteString("\n- ")
		case "code":
			if !inPre {
				sb.WriteString("`")
				defer sb.WriteString("`")
			}
		}
		if n.Data == "pre" {
			inPre = true
		}
		if blockTags[n.Data] {
			sb.WriteString("\n")
			defer sb.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(sb, c, inPre)
	}
}

func atLineOrWordStart(sb *strings.Builder) bool {
	s := sb.String()
	return s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(reBlankLines.ReplaceAllString(text, "\n\n"))
}
