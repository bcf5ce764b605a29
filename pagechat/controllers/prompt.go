package controllers

import (
	"pagechat/pagechat/services/llm"
	"pagechat/pagechat/utils/types"
)

const systemInstruction = "You are a helpful AI assistant. You MUST format your ENTIRE response in pure HTML to be displayed in a web browser. " +
	"Your response must start with HTML tags and end with HTML tags. Use appropriate HTML tags for formatting like <p>, <ul>, <li>, <code>, <br>, etc. " +
	"Do not include any plain text outside of HTML tags. " +
	"IMPORTANT: Do not wrap your response in markdown code blocks or ```html ``` tags - return pure HTML only."

const screenshotNote = "\n[Screenshot of the webpage is available in base64 format]"

// buildMessages lays out one upstream request: instruction, page context,
// the new user message and then everything said before in this session.
func buildMessages(text string, pc types.PageContext, history []llm.Message) []llm.Message {
	contextMessage := "Current webpage context: " + pc.RelevantText
	if pc.HasScreenshot() {
		contextMessage += screenshotNote
	}

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.TextMessage(llm.RoleSystem, systemInstruction),
		llm.TextMessage(llm.RoleSystem, "<p>"+contextMessage+"</p>"),
	)
	if pc.HasScreenshot() {
		messages = append(messages, llm.ImageMessage(llm.RoleUser, text, "data:image/jpeg;base64,"+pc.Screenshot, "low"))
	} else {
		messages = append(messages, llm.TextMessage(llm.RoleUser, text))
	}
	return append(messages, history...)
}
