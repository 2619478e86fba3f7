package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/embedding"
	"github.com/spigell/interview-coach/internal/feedback"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/match"
	"github.com/spigell/interview-coach/internal/rag"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/server"
	"github.com/spigell/interview-coach/internal/vectorstore"
	"github.com/spigell/interview-coach/internal/vectorstore/chroma"
	"github.com/spigell/interview-coach/internal/vectorstore/memory"
)

const (
	defaultListen = ":8080"

	chromaReadyTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview-coach HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "address to listen on")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

// services groups everything the transport layers consume. Individual entries
// may be nil when their provider is unconfigured; callers degrade per service.
type services struct {
	rag        *rag.Builder
	interviews *interview.Service
	analyzer   *feedback.Analyzer
	matcher    *match.Matcher
}

func serve() {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fatalStartup("creating a logger", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the interview-coach", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	svcs := buildServices(ctx, config, log)

	listen := viper.GetString("server.listen")
	if listen == "" {
		listen = defaultListen
	}

	srv := server.New(svcs.rag, svcs.interviews, svcs.analyzer, svcs.matcher, log)

	log.Info("listening", zap.String("address", listen))
	if err := srv.Router().Run(listen); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// buildServices wires the core services from the configuration. Missing API
// keys degrade the affected services instead of aborting startup; the HTTP
// status endpoint reports what is available.
func buildServices(ctx context.Context, config *Config, log *zap.Logger) *services {
	svcs := &services{}

	generator := newGenerator(ctx, config, log)

	store, err := newVectorStore(ctx, config, log)
	if err != nil {
		log.Fatal("building vector store", zap.Error(err))
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		log.Warn("embeddings unavailable, interview context disabled",
			zap.Error(err),
			zap.String("hint", "set OPENAI_API_KEY or embeddings.api-key-file"),
		)
	} else {
		svcs.rag = rag.NewBuilder(embedder, store, log)
		svcs.interviews = interview.NewService(generator, svcs.rag, interview.NewMemoryStore(), log)
	}

	svcs.analyzer = feedback.NewAnalyzer(generator, feedback.NewMemoryStore(), log)

	if generator != nil {
		maxLogLen := 0
		if config.AI != nil && config.AI.Gemini != nil {
			maxLogLen = config.AI.Gemini.MaxLogLength
		}
		svcs.matcher = match.NewMatcher(generator, log, maxLogLen)
	}

	return svcs
}

func newGenerator(ctx context.Context, config *Config, log *zap.Logger) ai.Generator {
	gcfg := &GeminiConfig{}
	if config.AI != nil {
		provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
		if provider != "" && provider != "gemini" {
			log.Fatal("unsupported ai provider", zap.String("provider", config.AI.Provider))
		}
		if config.AI.Gemini != nil {
			gcfg = config.AI.Gemini
		}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
	})
	if err != nil {
		log.Warn("generation provider unavailable, canned replies will be used",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or ai.gemini.api-key-file"),
		)
		return nil
	}

	opts := []gemini.Option{}
	if gcfg.Temperature > 0 {
		opts = append(opts, gemini.WithTemperature(float32(gcfg.Temperature)))
	}
	if gcfg.MaxTokens > 0 {
		opts = append(opts, gemini.WithMaxTokens(int32(gcfg.MaxTokens)))
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, opts...)
	if err != nil {
		log.Warn("building gemini generator failed, canned replies will be used", zap.Error(err))
		return nil
	}

	log.Info("generation provider ready", logger.AIFields("gemini", generator.Model())...)

	return generator
}

func newEmbedder(config *Config) (embedding.Embedder, error) {
	ecfg := &EmbeddingsConfig{}
	if config.Embeddings != nil {
		ecfg = config.Embeddings
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openai api key",
		Value: ecfg.APIKey,
		File:  ecfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return embedding.NewOpenAI(apiKey, ecfg.Model)
}

func newVectorStore(ctx context.Context, config *Config, log *zap.Logger) (vectorstore.Store, error) {
	backend := "memory"
	url := ""
	if config.VectorStore != nil {
		if config.VectorStore.Backend != "" {
			backend = strings.ToLower(config.VectorStore.Backend)
		}
		url = config.VectorStore.ChromaURL
	}

	switch backend {
	case "memory":
		return memory.New(), nil
	case "chroma":
		if url == "" {
			return nil, fmt.Errorf("vector-store.chroma-url is required for the chroma backend")
		}

		store := chroma.New(url, log)

		waitCtx, cancel := context.WithTimeout(ctx, chromaReadyTimeout)
		defer cancel()
		if err := store.WaitReady(waitCtx); err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", backend)
	}
}

func fatalStartup(msg string, err error) {
	log.Fatalf("%s: %s", msg, err)
}
