package llm

import "strings"

// CleanJSONBlock strips markdown code fences, conversational preambles and
// trailing chatter around the first JSON object or array in an LLM reply.
// Text without any JSON is returned trimmed.
func CleanJSONBlock(text string) string {
	text = stripFence(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	out := extractBalanced(text[start:])
	if out == "" {
		// Unbalanced: hand the tail to the caller for repair.
		return strings.TrimSpace(text[start:])
	}
	return out
}

// stripFence removes a surrounding ``` block and its language tag.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractBalanced returns the prefix of text from its leading '{' or '['
// to the matching close, skipping delimiters inside JSON strings. It
// returns "" if text starts with neither or never closes.
func extractBalanced(text string) string {
	if text == "" {
		return ""
	}
	open := text[0]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	default:
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// CleanHTMLBlock strips a markdown fence around an HTML reply.
func CleanHTMLBlock(text string) string {
	return stripFence(strings.TrimSpace(text))
}
