// nitilex is the legal-reasoning orchestration core server. It provides
// the HTTP API over the retrieve-reason-validate-format pipeline.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeready-toolchain/nitilex/pkg/api"
	"github.com/codeready-toolchain/nitilex/pkg/audit"
	"github.com/codeready-toolchain/nitilex/pkg/casememory"
	"github.com/codeready-toolchain/nitilex/pkg/config"
	"github.com/codeready-toolchain/nitilex/pkg/corpusindex"
	"github.com/codeready-toolchain/nitilex/pkg/database"
	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/codeready-toolchain/nitilex/pkg/llm/anthropicllm"
	"github.com/codeready-toolchain/nitilex/pkg/llm/geminillm"
	"github.com/codeready-toolchain/nitilex/pkg/pipeline"
	"github.com/codeready-toolchain/nitilex/pkg/reasoning"
	"github.com/codeready-toolchain/nitilex/pkg/retrieval"
	"github.com/codeready-toolchain/nitilex/pkg/validation"
	"github.com/redis/go-redis/v9"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", envPath)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	corpusMetrics := corpusindex.NewMetrics(registry)

	var accel corpusindex.VectorAccelerator
	if cfg.CorpusQdrantAddr != "" {
		a, err := corpusindex.NewQdrantAccelerator(ctx, cfg.CorpusQdrantAddr, "nitilex-corpus", 1536)
		if err != nil {
			slog.Warn("qdrant accelerator unavailable, falling back to local-only vector scan", "error", err)
		} else {
			accel = a
		}
	}

	index := corpusindex.New(corpusMetrics, accel)
	if result, err := index.Load(cfg.CorpusIndexDir); err != nil {
		slog.Error("failed to load corpus index", "error", err)
		os.Exit(1)
	} else {
		slog.Info("corpus index loaded", "chunks", result.ChunksIndexed, "warnings", len(result.Warnings))
	}

	gateway := retrieval.NewGateway(index, cfg.RetrievalMaxInflight)

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to construct LLM client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llmClient.Close() }()

	reasoner := reasoning.New(llmClient, cfg.LLMModelReasoning, cfg.LLMTemperature)
	gatekeeper := validation.New(cfg.ValidationMode, llmClient, cfg.LLMModelValidator)

	auditLogger, err := audit.New(cfg.AuditLogDir)
	if err != nil {
		slog.Error("failed to initialize audit logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			slog.Warn("error closing audit logger", "error", err)
		}
	}()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Warn("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to case memory database")

	var redisClient *redis.Client
	if cfg.CaseMemoryRedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.CaseMemoryRedisAddr})
		defer func() { _ = redisClient.Close() }()
	}

	memoryBinder := casememory.New(dbClient.Client, cfg.CaseMemoryHistoryLimit, redisClient)

	orchestrator := &pipeline.Orchestrator{
		Retrieval:  gateway,
		Reasoning:  reasoner,
		Validation: gatekeeper,
		Audit:      auditLogger,
		CaseMemory: memoryBinder,
		MaxSources: cfg.RetrievalMaxSources,
		Deadline:   cfg.RequestDeadline,
	}
	executor := pipeline.NewExecutor(orchestrator, int64(cfg.PipelineMaxConcurrentSessions))

	server := api.NewServer(cfg, executor, auditLogger, gateway, registry)
	if err := server.ValidateWiring(); err != nil {
		slog.Error("server wiring incomplete", "error", err)
		os.Exit(1)
	}

	slog.Info("starting nitilex", "http_port", cfg.HTTPPort, "llm_provider", cfg.LLMProvider, "validation_mode", cfg.ValidationMode)
	if err := server.Start(":" + cfg.HTTPPort); err != nil {
		slog.Error("http server exited", "error", err)
		os.Exit(1)
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case config.LLMProviderSecondary:
		return geminillm.New(ctx, os.Getenv("GEMINI_API_KEY"))
	default:
		return anthropicllm.New(os.Getenv("ANTHROPIC_API_KEY")), nil
	}
}
