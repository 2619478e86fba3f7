package interview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/rag"
)

//go:embed technical_question.md
var technicalQuestionTemplate string

//go:embed soft_skill_question.md
var softSkillQuestionTemplate string

// ErrSessionNotFound is returned when a message references an unknown session.
var ErrSessionNotFound = errors.New("session not found")

const (
	questionsPerSection = 5

	coachInstruction = "You are a professional interview coach."

	// Replies used when the generation provider is absent or fails. The
	// interview flow must keep moving even without AI.
	fallbackReply    = "That's a great point. Can you elaborate?"
	degradedReply    = "That's interesting. Tell me more."
	fallbackQuestion = "Tell me more about your experience."

	maxFeedbackAnswerRunes = 500
)

var selfIntroQuestions = []string{
	"Please introduce yourself and give me a brief overview of your background.",
	"Why are you interested in this particular role?",
	"Why are you looking to leave your current position?",
	"What makes you the best fit for this position?",
	"What are your greatest strengths and areas for improvement?",
}

var readyKeywords = []string{"ready", "yes", "start", "begin", "ok", "okay", "sure"}

// Reply is the state machine's answer to one inbound utterance.
type Reply struct {
	Response        string  `json:"response"`
	Section         Section `json:"section"`
	QuestionIndex   int     `json:"question_index"`
	SectionComplete bool    `json:"is_complete"`
}

// Service owns per-session interview state and drives the
// greeting → menu → section flow.
type Service struct {
	generator ai.Generator
	rag       *rag.Builder
	store     SessionStore
	logger    *zap.Logger
}

// NewService wires the interview state machine. The generator may be nil, in
// which case canned replies and questions are substituted.
func NewService(generator ai.Generator, builder *rag.Builder, store SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		generator: generator,
		rag:       builder,
		store:     store,
		logger:    logger,
	}
}

// StartSession creates a session in the greeting state and records the
// greeting in the transcript.
func (s *Service) StartSession(userID string) (*Session, string) {
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Section:   SectionGreeting,
		CreatedAt: time.Now(),
	}

	greeting := Greeting()
	session.AddMessage("assistant", greeting)
	s.store.Put(session)

	s.logger.Info("interview session started",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
	)

	return session, greeting
}

// GetSession returns the session for the given id.
func (s *Service) GetSession(sessionID string) (*Session, bool) {
	return s.store.Get(sessionID)
}

// Greeting is the fixed opening message of every interview.
func Greeting() string {
	return "Welcome to your Mock Interview!\n\n" +
		"I'm your AI interviewer today. I've reviewed your resume and job requirements.\n\n" +
		"When you're ready, just say 'I'm ready' or 'Yes'."
}

// Menu lists the selectable interview sections.
func Menu() string {
	return "Please choose an interview section:\n\n" +
		"1. Self-Introduction - Tell me about yourself\n" +
		"2. Technical Questions - Based on your skills\n" +
		"3. Soft-Skill Questions - Behavioral questions\n\n" +
		"Say the number or section name. Say 'STOP' to return here."
}

// ProcessMessage advances the session state machine with one user utterance
// and returns the assistant's reply. Both utterances are appended to the
// transcript.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.AddMessage("user", message)

	// The stop word wins over everything else, whatever the section.
	if strings.Contains(strings.ToLower(message), "stop") {
		session.Section = SectionMenu
		session.QuestionIndex = 0
		response := "Let's take a break.\n\n" + Menu()
		session.AddMessage("assistant", response)
		return s.reply(session, response, false), nil
	}

	var response string
	sectionComplete := false

	switch {
	case session.Section == SectionGreeting:
		if isReady(message) {
			session.Section = SectionMenu
			response = Menu()
		} else {
			response = "Let me know when you're ready!"
		}

	case session.Section == SectionMenu:
		if section, ok := parseSectionChoice(message); ok {
			session.Section = section
			session.QuestionIndex = 0
			response = s.nextQuestion(ctx, session)
		} else {
			response = "Please say 1, 2, or 3."
		}

	default:
		feedback := s.answerFeedback(ctx, message)
		session.QuestionIndex++

		if session.QuestionIndex >= questionsPerSection {
			session.Section = SectionMenu
			session.QuestionIndex = 0
			sectionComplete = true
			response = feedback + "\n\nSection complete! " + Menu()
		} else {
			response = feedback + "\n\n---\n\n" + s.nextQuestion(ctx, session)
		}
	}

	session.AddMessage("assistant", response)

	return s.reply(session, response, sectionComplete), nil
}

func (s *Service) reply(session *Session, response string, complete bool) *Reply {
	return &Reply{
		Response:        response,
		Section:         session.Section,
		QuestionIndex:   session.QuestionIndex,
		SectionComplete: complete,
	}
}

func (s *Service) nextQuestion(ctx context.Context, session *Session) string {
	switch session.Section {
	case SectionSelfIntro:
		if session.QuestionIndex < len(selfIntroQuestions) {
			return selfIntroQuestions[session.QuestionIndex]
		}
		return "Tell me about your career goals."

	case SectionTechnical:
		return s.generatedQuestion(ctx, session, technicalQuestionTemplate)

	case SectionSoftSkill:
		return s.generatedQuestion(ctx, session, softSkillQuestionTemplate)
	}

	return fallbackQuestion
}

func (s *Service) generatedQuestion(ctx context.Context, session *Session, template string) string {
	var grounding string
	var err error

	switch session.Section {
	case SectionTechnical:
		grounding, err = s.rag.TechnicalContext(ctx, session.UserID)
	default:
		grounding, err = s.rag.SoftSkillsContext(ctx, session.UserID)
	}
	if err != nil {
		s.logger.Warn("context retrieval failed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	prompt := strings.ReplaceAll(template, "{{CONTEXT}}", grounding)
	prompt = strings.ReplaceAll(prompt, "{{QUESTION_NUMBER}}", strconv.Itoa(session.QuestionIndex+1))

	return s.generate(ctx, prompt)
}

func (s *Service) answerFeedback(ctx context.Context, answer string) string {
	runes := []rune(answer)
	if len(runes) > maxFeedbackAnswerRunes {
		answer = string(runes[:maxFeedbackAnswerRunes])
	}

	prompt := fmt.Sprintf("Give brief encouraging feedback (2 sentences) on this answer: %s", answer)

	return s.generate(ctx, prompt)
}

// generate calls the text-generation provider, substituting a canned reply
// when the provider is missing or errors. The interview never aborts on a
// provider failure.
func (s *Service) generate(ctx context.Context, prompt string) string {
	if s.generator == nil {
		return fallbackReply
	}

	out, err := s.generator.GenerateContent(ctx, coachInstruction+"\n\n"+prompt)
	if err != nil {
		s.logger.Warn("generation failed, substituting canned reply", zap.Error(err))
		return degradedReply
	}

	return strings.TrimSpace(out)
}

func isReady(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range readyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func parseSectionChoice(message string) (Section, bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "1"), strings.Contains(lower, "self"), strings.Contains(lower, "intro"):
		return SectionSelfIntro, true
	case strings.Contains(lower, "2"), strings.Contains(lower, "tech"):
		return SectionTechnical, true
	case strings.Contains(lower, "3"), strings.Contains(lower, "soft"), strings.Contains(lower, "behavior"):
		return SectionSoftSkill, true
	}
	return "", false
}
