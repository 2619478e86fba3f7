package feedback

import "strings"

// Filler expressions counted as substring occurrences in the lowercased
// answer. Substring matching can over-count inside other words ("likely",
// "factually"); callers must not rely on word-boundary semantics.
var fillerWords = []string{"um", "uh", "like", "you know", "basically", "actually", "literally", "honestly"}

const (
	speakingWordsPerMinute = 150

	tooBriefBelowWords = 50
	tooLongAboveWords  = 350
)

// AnalyzeDelivery computes deterministic delivery metrics from an answer.
func AnalyzeDelivery(text string) DeliveryMetrics {
	metrics := DeliveryMetrics{
		WordCount: len(strings.Fields(text)),
	}

	lower := strings.ToLower(text)
	for _, filler := range fillerWords {
		metrics.FillerWords += strings.Count(lower, filler)
	}

	metrics.SpeakingTime = round1(float64(metrics.WordCount) / speakingWordsPerMinute * 60)

	switch {
	case metrics.WordCount < tooBriefBelowWords:
		metrics.Pacing = PacingTooBrief
	case metrics.WordCount > tooLongAboveWords:
		metrics.Pacing = PacingTooLong
	default:
		metrics.Pacing = PacingGood
	}

	return metrics
}
