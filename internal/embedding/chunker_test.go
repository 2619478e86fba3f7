package embedding

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkWindows(t *testing.T) {
	chunks := Chunk(words(10), 4, 1)

	// Windows advance by 3 words: 0-3, 3-6, 6-9, 9.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %v", len(chunks), chunks)
	}

	if chunks[0] != "w0 w1 w2 w3" {
		t.Fatalf("unexpected first chunk: %q", chunks[0])
	}

	if chunks[1] != "w3 w4 w5 w6" {
		t.Fatalf("expected overlap of one word, got %q", chunks[1])
	}

	if chunks[3] != "w9" {
		t.Fatalf("unexpected tail chunk: %q", chunks[3])
	}
}

func TestChunkInvalidParameters(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{name: "zero size", size: 0, overlap: 0},
		{name: "negative overlap", size: 5, overlap: -1},
		{name: "overlap equals size", size: 5, overlap: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Chunk(words(20), tc.size, tc.overlap); got != nil {
				t.Fatalf("expected nil chunks, got %v", got)
			}
		})
	}
}

func TestChunkEmptyText(t *testing.T) {
	if got := Chunk("   ", 5, 1); got != nil {
		t.Fatalf("expected nil chunks for blank text, got %v", got)
	}
}

func TestChunkBySectionsHeaders(t *testing.T) {
	text := "John Doe, software engineer.\n" +
		"EXPERIENCE\nBuilt backend services in Go.\n" +
		"EDUCATION\nBSc in computer science.\n" +
		"skills\nGo, Python, SQL."

	chunks := ChunkBySections(text)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 sections, got %d: %v", len(chunks), chunks)
	}

	if !strings.HasPrefix(chunks[1], "EXPERIENCE") {
		t.Fatalf("expected section to keep its header, got %q", chunks[1])
	}

	// Header matching is case-insensitive.
	if !strings.HasPrefix(chunks[3], "skills") {
		t.Fatalf("expected lowercase header to split, got %q", chunks[3])
	}
}

func TestChunkBySectionsColonHeaders(t *testing.T) {
	text := "Intro paragraph.\nCORE COMPETENCIES: Go, Kubernetes\nmore text"

	chunks := ChunkBySections(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 sections, got %d: %v", len(chunks), chunks)
	}

	if !strings.HasPrefix(chunks[1], "CORE COMPETENCIES:") {
		t.Fatalf("expected all-caps colon header to split, got %q", chunks[1])
	}
}

func TestChunkBySectionsRechunksLongSections(t *testing.T) {
	text := "EXPERIENCE\n" + words(maxSectionWords+100)

	chunks := ChunkBySections(text)

	if len(chunks) < 2 {
		t.Fatalf("expected long section to be re-chunked, got %d chunks", len(chunks))
	}

	for i, chunk := range chunks {
		if n := len(strings.Fields(chunk)); n > rechunkSize {
			t.Fatalf("chunk %d has %d words, want at most %d", i, n, rechunkSize)
		}
	}
}

func TestChunkBySectionsEmpty(t *testing.T) {
	if got := ChunkBySections(""); len(got) != 0 {
		t.Fatalf("expected no chunks for empty text, got %v", got)
	}
}

func TestChunkBySectionsNoHeaders(t *testing.T) {
	text := "just a short paragraph with no recognizable headers"

	chunks := ChunkBySections(text)

	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected the text to come back as one chunk, got %v", chunks)
	}
}
