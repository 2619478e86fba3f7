package feedback

import (
	"strings"
	"testing"
)

func TestAnalyzeDeliveryCountsFillers(t *testing.T) {
	metrics := AnalyzeDelivery("Um, I basically led the team. You know, it was, like, hard.")

	// um, basically, you know, like.
	if metrics.FillerWords != 4 {
		t.Fatalf("expected 4 filler words, got %d", metrics.FillerWords)
	}
}

func TestAnalyzeDeliveryFillerSubstrings(t *testing.T) {
	// Substring matching counts fillers inside other words.
	metrics := AnalyzeDelivery("That outcome was likely.")

	if metrics.FillerWords != 1 {
		t.Fatalf("expected 1 filler from the substring match, got %d", metrics.FillerWords)
	}
}

func TestAnalyzeDeliverySpeakingTime(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 75))

	metrics := AnalyzeDelivery(text)

	if metrics.WordCount != 75 {
		t.Fatalf("expected 75 words, got %d", metrics.WordCount)
	}

	// 75 words at 150 wpm is 30 seconds.
	if metrics.SpeakingTime != 30 {
		t.Fatalf("expected 30 seconds of speaking time, got %v", metrics.SpeakingTime)
	}
}

func TestAnalyzeDeliverySpeakingTimeRounded(t *testing.T) {
	metrics := AnalyzeDelivery(strings.TrimSpace(strings.Repeat("word ", 100)))

	// 100 words at 150 wpm is 40 seconds.
	if metrics.SpeakingTime != 40 {
		t.Fatalf("expected 40 seconds, got %v", metrics.SpeakingTime)
	}

	metrics = AnalyzeDelivery("just seven little words right here now")

	// 7 words is 2.8 seconds.
	if metrics.SpeakingTime != 2.8 {
		t.Fatalf("expected 2.8 seconds, got %v", metrics.SpeakingTime)
	}
}

func TestAnalyzeDeliveryPacing(t *testing.T) {
	cases := []struct {
		name     string
		words    int
		expected string
	}{
		{name: "brief", words: 10, expected: PacingTooBrief},
		{name: "lower bound", words: 50, expected: PacingGood},
		{name: "good", words: 200, expected: PacingGood},
		{name: "upper bound", words: 350, expected: PacingGood},
		{name: "long", words: 400, expected: PacingTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.TrimSpace(strings.Repeat("word ", tc.words))

			metrics := AnalyzeDelivery(text)
			if metrics.Pacing != tc.expected {
				t.Fatalf("expected pacing %q for %d words, got %q", tc.expected, tc.words, metrics.Pacing)
			}
		})
	}
}

func TestAnalyzeDeliveryEmpty(t *testing.T) {
	metrics := AnalyzeDelivery("")

	if metrics.WordCount != 0 || metrics.FillerWords != 0 || metrics.SpeakingTime != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", metrics)
	}

	if metrics.Pacing != PacingTooBrief {
		t.Fatalf("expected too_brief pacing for an empty answer, got %q", metrics.Pacing)
	}
}
