package htmlutils

import (
	"regexp"
	"strings"
)

// EmptyReply replaces a completion that produced no text.
const EmptyReply = "<p>Sorry, I couldn't generate a response.</p>"

var (
	reOpenFence  = regexp.MustCompile("(?i)^```html\\s*")
	reCloseFence = regexp.MustCompile("\\s*```$")
	reAnyTag     = regexp.MustCompile(`<[^>]*>`)
	reFencedPara = regexp.MustCompile("<p>```(.*?)```</p>")
)

// NormalizeReply makes a model reply safe to drop into an HTML transcript:
// markdown html fences are removed and bare text is wrapped in <p>.
func NormalizeReply(reply string) string {
	if reply == "" {
		return EmptyReply
	}
	reply = reOpenFence.ReplaceAllString(reply, "")
	reply = reCloseFence.ReplaceAllString(reply, "")

	if !strings.HasPrefix(strings.TrimSpace(reply), "<") || !reAnyTag.MatchString(reply) {
		reply = "<p>" + reply + "</p>"
	}
	return reply
}

// StripFencedParagraphs unwraps <p>```code```</p> into ```code```.
func StripFencedParagraphs(content string) string {
	return reFencedPara.ReplaceAllString(content, "```$1```")
}
