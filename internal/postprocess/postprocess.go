package postprocess

import "strings"

const (
	// leadingArtifacts are stripped from the start of an answer; models often
	// echo the colon or enumeration comma that closed the prompt.
	leadingArtifacts  = ":：、，"
	terminalMarks     = "。！？"
	defaultTerminator = "。"
)

// Extract returns the text after the last occurrence of marker. When the
// marker is missing the whole raw text is used and found is false.
func Extract(raw, marker string) (answer string, found bool) {
	if marker == "" {
		return strings.TrimSpace(raw), false
	}
	idx := strings.LastIndex(raw, marker)
	if idx < 0 {
		return strings.TrimSpace(raw), false
	}
	return strings.TrimSpace(raw[idx+len(marker):]), true
}

// Normalize strips leading punctuation artifacts and guarantees a sentence
// terminator. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.TrimLeft(text, leadingArtifacts)
	if !endsWithTerminal(text) {
		text += defaultTerminator
	}
	return text
}

func endsWithTerminal(text string) bool {
	for _, mark := range terminalMarks {
		if strings.HasSuffix(text, string(mark)) {
			return true
		}
	}
	return false
}
