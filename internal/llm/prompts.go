package llm

import (
	"crypto/sha256"
	"encoding/hex"
	_ "embed"
)

// PromptVersion identifies the embedded system prompt.
const PromptVersion = "error_screenshot_v1"

// UserInstruction accompanies the image in the user turn.
const UserInstruction = "Analyze this error screenshot and extract all relevant error information. Provide your response in the exact JSON format specified."

// MaxCompletionTokens bounds the model reply.
const MaxCompletionTokens = 2048

//go:embed prompts/error_screenshot_v1.txt
var errorScreenshotPromptV1 string

// SystemPrompt returns the fixed system instruction for screenshot analysis.
func SystemPrompt() string {
	return errorScreenshotPromptV1
}

// PromptHash returns the sha256 of the system prompt and user instruction.
func PromptHash() string {
	sum := sha256.Sum256([]byte(errorScreenshotPromptV1 + "\n\n" + UserInstruction))
	return hex.EncodeToString(sum[:])
}
