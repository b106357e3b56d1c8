package codec

import "strings"

// CleanFences strips markdown code fences from model output. Models
// sometimes wrap JSON in ```json blocks even when asked not to.
func CleanFences(s string) string {
	clean := strings.TrimSpace(s)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// ExtractJSONArray returns the outermost JSON array in s, with any
// fences inside removed. Models pad array responses with prose more
// often than object responses, so the array is located first and only
// then cleaned.
func ExtractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", false
	}

	content := s[start : end+1]
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content), true
}
