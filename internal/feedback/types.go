package feedback

import (
	"encoding/json"
	"math"
)

// Pacing buckets derived from answer length.
const (
	PacingTooBrief = "too_brief"
	PacingGood     = "good"
	PacingTooLong  = "too_long"
)

// STARScore holds the four rubric dimensions, each rated 1-5.
type STARScore struct {
	Situation int `json:"situation"`
	Task      int `json:"task"`
	Action    int `json:"action"`
	Result    int `json:"result"`
}

// Average is the mean of the four dimensions, zero when nothing is scored.
func (s STARScore) Average() float64 {
	if s.Situation == 0 && s.Task == 0 && s.Action == 0 && s.Result == 0 {
		return 0
	}
	return float64(s.Situation+s.Task+s.Action+s.Result) / 4
}

// MarshalJSON includes the derived average alongside the raw dimensions.
func (s STARScore) MarshalJSON() ([]byte, error) {
	type raw STARScore
	return json.Marshal(struct {
		raw
		Average float64 `json:"average"`
	}{raw(s), round1(s.Average())})
}

// ScoreInsight pairs a 1-5 score with a short qualitative insight.
type ScoreInsight struct {
	Score   int    `json:"score"`
	Insight string `json:"insight"`
}

// DeliveryMetrics are deterministic speech-delivery measurements of an answer.
type DeliveryMetrics struct {
	FillerWords  int     `json:"fillerWords"`
	WordCount    int     `json:"wordCount"`
	SpeakingTime float64 `json:"speakingTime"`
	Pacing       string  `json:"pacing"`
}

// QuestionFeedback is the full evaluation of one answer. It is immutable once
// created and appended to the owning session's feedback list.
type QuestionFeedback struct {
	Question        string            `json:"question"`
	Response        string            `json:"response"`
	Timestamp       string            `json:"timestamp"`
	ActiveListening ScoreInsight      `json:"activeListening"`
	STARScore       STARScore         `json:"starScore"`
	STARInsights    map[string]string `json:"starInsights"`
	Strengths       []string          `json:"strengths"`
	GrowthAreas     []string          `json:"growthAreas"`
	Delivery        DeliveryMetrics   `json:"delivery"`
}

// SessionFeedback aggregates all question feedback recorded for a session.
type SessionFeedback struct {
	SessionID             string             `json:"sessionId"`
	UserID                string             `json:"userId"`
	JobTitle              string             `json:"jobTitle"`
	OverallScore          float64            `json:"overallScore"`
	QuestionsFeedback     []QuestionFeedback `json:"questionsFeedback"`
	AggregatedStrengths   []string           `json:"aggregatedStrengths"`
	AggregatedGrowthAreas []string           `json:"aggregatedGrowthAreas"`
	CreatedAt             string             `json:"createdAt"`
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
