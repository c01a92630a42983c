package extraction

import "strings"

const (
	fence     = "```"
	jsonFence = "```json"
)

// Block isolates the JSON payload of generated text.
func Block(text string) string {
	if idx := strings.Index(text, jsonFence); idx >= 0 {
		if body, ok := fenced(text, idx+len(jsonFence)); ok {
			return body
		}
	}

	if idx := strings.Index(text, fence); idx >= 0 {
		if body, ok := fenced(text, idx+len(fence)); ok {
			return body
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}") + 1
	if start >= 0 && end > start {
		return text[start:end]
	}

	return text
}

// fenced returns the trimmed text between start and the next fence.
// An empty interior does not count as a block.
func fenced(text string, start int) (string, bool) {
	rel := strings.Index(text[start:], fence)
	if rel <= 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+rel]), true
}
