package embedding

import (
	"regexp"
	"strings"
)

const (
	// Chunks longer than this many words are re-split with the windowed chunker.
	maxSectionWords = 600

	rechunkSize    = 400
	rechunkOverlap = 50
)

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n(?:EXPERIENCE|EDUCATION|SKILLS|SUMMARY|ABOUT|REQUIREMENTS|RESPONSIBILITIES|QUALIFICATIONS)`),
	regexp.MustCompile(`\n[A-Z][A-Z\s]{3,}:`),
}

// Chunk splits text into overlapping word windows. The overlap is measured in
// words; windows advance by size-overlap words. Empty windows are dropped.
func Chunk(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += size - overlap {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

// ChunkBySections splits resume or job-posting text on recognized section
// headers, keeping section boundaries intact. Any resulting section longer
// than 600 words is re-split with the windowed chunker at 400/50.
func ChunkBySections(text string) []string {
	chunks := []string{text}
	for _, pattern := range sectionPatterns {
		var next []string
		for _, chunk := range chunks {
			next = append(next, splitBefore(chunk, pattern)...)
		}
		chunks = next
	}

	var final []string
	for _, chunk := range chunks {
		if len(strings.Fields(chunk)) > maxSectionWords {
			final = append(final, Chunk(chunk, rechunkSize, rechunkOverlap)...)
		} else {
			final = append(final, chunk)
		}
	}

	return final
}

// splitBefore cuts text at every match of pattern, consuming the leading
// newline but keeping the header line with the part that follows it.
func splitBefore(text string, pattern *regexp.Regexp) []string {
	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return trimmedNonEmpty([]string{text})
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		parts = append(parts, text[prev:loc[0]])
		// Skip the newline the pattern matched on.
		prev = loc[0] + 1
	}
	parts = append(parts, text[prev:])

	return trimmedNonEmpty(parts)
}

func trimmedNonEmpty(parts []string) []string {
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
