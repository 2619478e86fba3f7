package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Assessment is the structured verdict on how well a resume matches a job
// posting.
type Assessment struct {
	Score         float64  `json:"score"`
	Fit           bool     `json:"fit"`
	Summary       string   `json:"summary"`
	MissingSkills []string `json:"missing_skills"`
	Raw           string   `json:"-"`
}

// Matcher evaluates resume/job fit via the text-generation provider.
type Matcher struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator ai.Generator, log *zap.Logger, maxLogLength int) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate scores the resume against the job posting. Unlike the interview
// flow, a provider failure here is surfaced to the caller: there is no useful
// default for a match score.
func (m *Matcher) Evaluate(ctx context.Context, resumeText, jobText string) (*Assessment, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("job text is required")
	}
	if m.generator == nil {
		return nil, fmt.Errorf("generation provider is not configured")
	}

	prompt := buildPrompt(resumeText, jobText)

	m.logger.Debug("match evaluation request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("match evaluation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(resumeText, jobText string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", resumeText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_TEXT}}", jobText)
	return prompt
}

func parseResponse(raw string) (*Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse match response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}
	// Models sometimes answer on a 0-1 scale despite instructions.
	if score > 0 && score <= 1 {
		score = math.Round(score*100*100) / 100
	}

	return &Assessment{
		Score:         score,
		Fit:           coerceBool(data["fit"]),
		Summary:       coerceString(data["summary"]),
		MissingSkills: coerceStrings(data["missing_skills"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(val, "%"))
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}
