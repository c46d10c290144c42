package completion

import (
	"fmt"
	"strings"
)

const (
	completionTemplate = "Complete the following code using %s. " +
		"Return only the complete runnable plain code, " +
		"without any explanations, comments or Markdown markers:\n%s"

	chatTemplate = "Write %s code for the following request. " +
		"Return only runnable plain code, " +
		"without any explanations or Markdown markers:\n%s"
)

// BuildPrompt embeds the language and the code before the cursor in the
// completion instruction.
func BuildPrompt(language, code string) string {
	return fmt.Sprintf(completionTemplate, languageName(language), code)
}

// BuildChatPrompt wraps a free-form request from the user.
func BuildChatPrompt(language, request string) string {
	return fmt.Sprintf(chatTemplate, languageName(language), strings.TrimSpace(request))
}

func languageName(language string) string {
	if language == "" || language == "plaintext" {
		return "the language of the snippet"
	}
	return language
}
