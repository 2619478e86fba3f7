package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
)

const practiceUserID = "local"

var exitWords = []string{"exit", "quit"}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Long: "practice runs the interview loop locally against your resume and a job posting. " +
		"Per-answer feedback and the session summary are printed at the end.",
	Run: func(_ *cobra.Command, _ []string) {
		practice()
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().String("resume", "", "path to a plain-text resume")
	practiceCmd.Flags().String("job", "", "path to a plain-text job posting")

	viper.BindPFlag("practice.resume", practiceCmd.Flags().Lookup("resume"))
	viper.BindPFlag("practice.job", practiceCmd.Flags().Lookup("job"))
}

func practice() {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fatalStartup("creating a logger", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	svcs := buildServices(ctx, config, log)
	if svcs.interviews == nil {
		log.Fatal("interview service unavailable",
			zap.String("hint", "set OPENAI_API_KEY so the interview can be grounded in your documents"),
		)
	}

	resume := readDocument(viper.GetString("practice.resume"), log)
	job := readDocument(viper.GetString("practice.job"), log)
	if resume != "" && job != "" {
		result, err := svcs.rag.BuildUserContext(ctx, practiceUserID, resume, job)
		if err != nil {
			log.Fatal("building user context", zap.Error(err))
		}
		fmt.Printf("Indexed %d resume and %d job chunks.\n\n", result.ResumeChunks, result.JobChunks)
	} else {
		fmt.Print("No resume/job provided. Questions will not be grounded in your documents.\n\n")
	}

	session, greeting := svcs.interviews.StartSession(practiceUserID)
	fmt.Println(greeting)

	prompt := promptui.Prompt{Label: "you"}
	lastQuestion := ""

	for {
		input, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D ends the practice run.
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				break
			}
			log.Fatal("reading input", zap.Error(err))
		}

		if isExitWord(input) {
			break
		}

		answeredQuestion := session.Section.Active()

		reply, err := svcs.interviews.ProcessMessage(ctx, session.ID, input)
		if err != nil {
			log.Fatal("processing message", zap.Error(err))
		}

		if answeredQuestion && lastQuestion != "" {
			result := svcs.analyzer.AnalyzeResponse(ctx, session.ID, practiceUserID, lastQuestion, input, "")
			fmt.Printf("[STAR %.1f | pacing %s | %d filler words]\n\n",
				result.STARScore.Average(),
				result.Delivery.Pacing,
				result.Delivery.FillerWords,
			)
		}

		fmt.Println()
		fmt.Println(reply.Response)
		fmt.Println()

		if reply.Section.Active() {
			lastQuestion = reply.Response
		} else {
			lastQuestion = ""
		}
	}

	printSummary(svcs, session.ID)
}

func printSummary(svcs *services, sessionID string) {
	summary, ok := svcs.analyzer.SessionSummary(sessionID)
	if !ok {
		fmt.Println("\nNo answers were analyzed this session.")
		return
	}

	fmt.Printf("\nSession summary: %d answers, overall score %.1f\n", len(summary.QuestionsFeedback), summary.OverallScore)
	if len(summary.AggregatedStrengths) > 0 {
		fmt.Printf("Strengths: %s\n", strings.Join(summary.AggregatedStrengths, "; "))
	}
	if len(summary.AggregatedGrowthAreas) > 0 {
		fmt.Printf("Growth areas: %s\n", strings.Join(summary.AggregatedGrowthAreas, "; "))
	}
}

func readDocument(path string, log *zap.Logger) string {
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("reading document", zap.String("path", path), zap.Error(err))
	}

	return string(data)
}

func isExitWord(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, word := range exitWords {
		if lower == word {
			return true
		}
	}
	return false
}
