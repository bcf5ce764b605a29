// Package pagecontext turns captured page text into the context object sent
// along with a chat message.
package pagecontext

import (
	"strings"
	"unicode/utf8"

	"pagechat/pagechat/utils/types"
)

const summaryChars = 200

var defaultKeyPoints = []string{
	"Extracted from page content",
	"Processed by pagechat",
}

// Process normalizes whitespace in text, trims it to maxChars runes when
// maxChars > 0 and attaches the optional base64 screenshot. The summary is
// taken from the raw text.
func Process(text, screenshot string, maxChars int) types.PageContext {
	relevant := Normalize(text)
	if maxChars > 0 {
		relevant = truncate(relevant, maxChars)
	}
	return types.PageContext{
		RelevantText: relevant,
		Summary:      "Summary: " + truncate(text, summaryChars),
		KeyPoints:    append([]string(nil), defaultKeyPoints...),
		Screenshot:   screenshot,
	}
}

// Normalize collapses runs of spaces inside lines and drops blank lines.
func Normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
