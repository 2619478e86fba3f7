package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
)

var errNoJSONObject = errors.New("no json object in response")

//go:embed star_analysis.md
var starAnalysisTemplate string

const rubricInstruction = "Return only valid JSON."

const topAggregated = 3

// Overall score weighting across a session: active listening counts for 20%,
// the STAR average for 80%, rescaled from 0-5 to 0-100.
const (
	activeListeningWeight = 0.2
	starWeight            = 0.8
)

// Store owns the per-session feedback registry. Implementations must be safe
// for concurrent use.
type Store interface {
	Get(sessionID string) (*SessionFeedback, bool)
	Put(feedback *SessionFeedback)
}

// MemoryStore is the default in-process feedback registry. Records are lost
// on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionFeedback
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SessionFeedback)}
}

func (m *MemoryStore) Get(sessionID string) (*SessionFeedback, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feedback, ok := m.sessions[sessionID]
	return feedback, ok
}

func (m *MemoryStore) Put(feedback *SessionFeedback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[feedback.SessionID] = feedback
}

// Analyzer scores interview answers against the STAR rubric and aggregates
// session-level feedback.
type Analyzer struct {
	generator ai.Generator
	store     Store
	logger    *zap.Logger
}

// NewAnalyzer wires the scoring engine. The generator may be nil; scoring then
// falls back to neutral defaults so the interview flow never aborts.
func NewAnalyzer(generator ai.Generator, store Store, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{generator: generator, store: store, logger: logger}
}

// AnalyzeResponse evaluates one answer: deterministic delivery metrics plus an
// AI rubric scoring, then appends the result to the session's feedback list.
// A malformed or absent AI response yields the neutral default scores instead
// of an error.
func (a *Analyzer) AnalyzeResponse(ctx context.Context, sessionID, userID, question, answer, jobContext string) *QuestionFeedback {
	rubric := a.rubricScores(ctx, question, answer, jobContext)

	feedback := &QuestionFeedback{
		Question:        question,
		Response:        answer,
		Timestamp:       time.Now().Format(time.RFC3339),
		ActiveListening: rubric.ActiveListening,
		STARScore: STARScore{
			Situation: rubric.Situation.Score,
			Task:      rubric.Task.Score,
			Action:    rubric.Action.Score,
			Result:    rubric.Result.Score,
		},
		STARInsights: map[string]string{
			"situation": rubric.Situation.Insight,
			"task":      rubric.Task.Insight,
			"action":    rubric.Action.Insight,
			"result":    rubric.Result.Insight,
		},
		Strengths:   rubric.Strengths,
		GrowthAreas: rubric.GrowthAreas,
		Delivery:    AnalyzeDelivery(answer),
	}

	record, ok := a.store.Get(sessionID)
	if !ok {
		record = &SessionFeedback{
			SessionID: sessionID,
			UserID:    userID,
			CreatedAt: time.Now().Format(time.RFC3339),
		}
	}
	record.QuestionsFeedback = append(record.QuestionsFeedback, *feedback)
	a.store.Put(record)

	return feedback
}

// SessionSummary recomputes the session aggregates on demand. The second
// return value is false when no feedback has been recorded yet.
func (a *Analyzer) SessionSummary(sessionID string) (*SessionFeedback, bool) {
	record, ok := a.store.Get(sessionID)
	if !ok || len(record.QuestionsFeedback) == 0 {
		return nil, false
	}

	var total float64
	var strengths, growthAreas []string
	for _, qf := range record.QuestionsFeedback {
		total += float64(qf.ActiveListening.Score)*activeListeningWeight + qf.STARScore.Average()*starWeight
		strengths = append(strengths, qf.Strengths...)
		growthAreas = append(growthAreas, qf.GrowthAreas...)
	}

	avg := total / float64(len(record.QuestionsFeedback))
	record.OverallScore = round1(avg / 5 * 100)
	record.AggregatedStrengths = topByFrequency(strengths, topAggregated)
	record.AggregatedGrowthAreas = topByFrequency(growthAreas, topAggregated)
	a.store.Put(record)

	return record, true
}

type rubricResult struct {
	ActiveListening ScoreInsight `json:"activeListening"`
	Situation       ScoreInsight `json:"situation"`
	Task            ScoreInsight `json:"task"`
	Action          ScoreInsight `json:"action"`
	Result          ScoreInsight `json:"result"`
	Strengths       []string     `json:"strengths"`
	GrowthAreas     []string     `json:"growthAreas"`
}

func (a *Analyzer) rubricScores(ctx context.Context, question, answer, jobContext string) rubricResult {
	if a.generator == nil {
		return defaultRubric()
	}

	jobLine := ""
	if jobContext != "" {
		jobLine = "JOB CONTEXT: " + jobContext
	}

	prompt := strings.ReplaceAll(starAnalysisTemplate, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{RESPONSE}}", answer)
	prompt = strings.ReplaceAll(prompt, "{{JOB_CONTEXT}}", jobLine)

	raw, err := a.generator.GenerateContent(ctx, rubricInstruction+"\n\n"+prompt)
	if err != nil {
		a.logger.Warn("rubric scoring failed, substituting defaults", zap.Error(err))
		return defaultRubric()
	}

	rubric, err := parseRubric(raw)
	if err != nil {
		a.logger.Warn("rubric response unparseable, substituting defaults",
			zap.String("response_preview", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return defaultRubric()
	}

	return rubric
}

// parseRubric trims the model output to its outermost JSON object and decodes
// it, normalizing missing or out-of-range scores to the neutral 3.
func parseRubric(raw string) (rubricResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return rubricResult{}, errNoJSONObject
	}

	var rubric rubricResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &rubric); err != nil {
		return rubricResult{}, err
	}

	rubric.ActiveListening.Score = normalizeScore(rubric.ActiveListening.Score)
	rubric.Situation.Score = normalizeScore(rubric.Situation.Score)
	rubric.Task.Score = normalizeScore(rubric.Task.Score)
	rubric.Action.Score = normalizeScore(rubric.Action.Score)
	rubric.Result.Score = normalizeScore(rubric.Result.Score)

	return rubric, nil
}

func normalizeScore(score int) int {
	if score < 1 {
		return 3
	}
	if score > 5 {
		return 5
	}
	return score
}

// defaultRubric is the neutral result substituted for a missing provider or a
// response that cannot be parsed.
func defaultRubric() rubricResult {
	return rubricResult{
		ActiveListening: ScoreInsight{Score: 3, Insight: "Response noted."},
		Situation:       ScoreInsight{Score: 3, Insight: "Context provided."},
		Task:            ScoreInsight{Score: 3, Insight: "Role explained."},
		Action:          ScoreInsight{Score: 3, Insight: "Actions described."},
		Result:          ScoreInsight{Score: 3, Insight: "Outcomes mentioned."},
		Strengths:       []string{"Clear communication", "Relevant example"},
		GrowthAreas:     []string{"Add specifics", "Quantify results"},
	}
}

// topByFrequency returns the up-to-n most frequent labels, ties broken by
// first-seen order.
func topByFrequency(labels []string, n int) []string {
	counts := make(map[string]int, len(labels))
	order := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	if n < len(order) {
		order = order[:n]
	}

	return order
}
