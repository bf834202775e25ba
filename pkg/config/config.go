// Package config loads and validates the reasoning core's configuration
// from environment variables, following the teacher's envexpand-then-
// validate convention: values are read with os.Getenv (ExpandEnv remains
// available for any future YAML-backed settings), defaulted, then checked
// by Validator before the server starts.
package config

import (
	"os"
	"strconv"
	"time"
)

// LLMProvider selects which LLM backend the Reasoning and Validation
// modules call.
type LLMProvider string

const (
	LLMProviderPrimary   LLMProvider = "primary"   // anthropic-sdk-go
	LLMProviderSecondary LLMProvider = "secondary" // google.golang.org/genai
)

func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderPrimary, LLMProviderSecondary:
		return true
	default:
		return false
	}
}

// ValidationMode selects whether the Validation Gatekeeper runs only the
// deterministic rule-based phase, or the rule-based phase followed by an
// optional LLM-assisted phase.
type ValidationMode string

const (
	ValidationRuleOnly    ValidationMode = "rule_only"
	ValidationRulePlusLLM ValidationMode = "rule_plus_llm"
)

func (m ValidationMode) IsValid() bool {
	switch m {
	case ValidationRuleOnly, ValidationRulePlusLLM:
		return true
	default:
		return false
	}
}

// Config is the fully loaded, validated configuration for the reasoning
// core, as named by spec.md §6's environment variable table plus the
// ambient additions SPEC_FULL.md §6 carries.
type Config struct {
	CorpusIndexDir string
	AuditLogDir    string

	LLMProvider        LLMProvider
	LLMModelReasoning  string
	LLMModelValidator  string
	LLMTemperature     float64

	RetrievalMaxSources int
	ValidationMode      ValidationMode
	RequestDeadline     time.Duration

	PipelineMaxConcurrentSessions int
	RetrievalMaxInflight          int

	CorpusQdrantAddr    string // optional
	CaseMemoryRedisAddr string // optional
	CaseMemoryHistoryLimit int

	HTTPPort string
}

// Load reads Config from the process environment, applying the same
// defaults spec.md §6 documents, then validates it.
func Load() (*Config, error) {
	temp, err := strconv.ParseFloat(getEnvOrDefault("LLM_TEMPERATURE", "0.0"), 64)
	if err != nil {
		return nil, NewValidationError("LLM_TEMPERATURE", err)
	}

	maxSources, err := strconv.Atoi(getEnvOrDefault("RETRIEVAL_MAX_SOURCES", "5"))
	if err != nil {
		return nil, NewValidationError("RETRIEVAL_MAX_SOURCES", err)
	}

	deadlineMs, err := strconv.Atoi(getEnvOrDefault("REQUEST_DEADLINE_MS", "60000"))
	if err != nil {
		return nil, NewValidationError("REQUEST_DEADLINE_MS", err)
	}

	maxConcurrent, err := strconv.Atoi(getEnvOrDefault("PIPELINE_MAX_CONCURRENT_SESSIONS", "32"))
	if err != nil {
		return nil, NewValidationError("PIPELINE_MAX_CONCURRENT_SESSIONS", err)
	}

	maxInflight, err := strconv.Atoi(getEnvOrDefault("RETRIEVAL_MAX_INFLIGHT", "16"))
	if err != nil {
		return nil, NewValidationError("RETRIEVAL_MAX_INFLIGHT", err)
	}

	historyLimit, err := strconv.Atoi(getEnvOrDefault("CASEMEMORY_HISTORY_LIMIT", "20"))
	if err != nil {
		return nil, NewValidationError("CASEMEMORY_HISTORY_LIMIT", err)
	}

	cfg := &Config{
		CorpusIndexDir:      getEnvOrDefault("CORPUS_INDEX_DIR", "./data/corpus"),
		AuditLogDir:         getEnvOrDefault("AUDIT_LOG_DIR", "./data/audit"),
		LLMProvider:         LLMProvider(getEnvOrDefault("LLM_PROVIDER", string(LLMProviderPrimary))),
		LLMModelReasoning:   getEnvOrDefault("LLM_MODEL_REASONING", "claude-sonnet-4-5"),
		LLMModelValidator:   getEnvOrDefault("LLM_MODEL_VALIDATOR", "claude-haiku-4-5"),
		LLMTemperature:      temp,
		RetrievalMaxSources: maxSources,
		ValidationMode:      ValidationMode(getEnvOrDefault("VALIDATION_MODE", string(ValidationRuleOnly))),
		RequestDeadline:     time.Duration(deadlineMs) * time.Millisecond,

		PipelineMaxConcurrentSessions: maxConcurrent,
		RetrievalMaxInflight:          maxInflight,

		CorpusQdrantAddr:       os.Getenv("CORPUS_QDRANT_ADDR"),
		CaseMemoryRedisAddr:    os.Getenv("CASEMEMORY_REDIS_ADDR"),
		CaseMemoryHistoryLimit: historyLimit,

		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),
	}

	v := NewValidator(cfg)
	if err := v.ValidateAll(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Stats summarizes configuration for the /health endpoint.
type Stats struct {
	ValidationMode  string `json:"validation_mode"`
	LLMProvider     string `json:"llm_provider"`
	CaseMemoryCache bool   `json:"case_memory_cache_enabled"`
	CorpusAccel     bool   `json:"corpus_accelerator_enabled"`
}

func (c *Config) Stats() Stats {
	return Stats{
		ValidationMode:  string(c.ValidationMode),
		LLMProvider:     string(c.LLMProvider),
		CaseMemoryCache: c.CaseMemoryRedisAddr != "",
		CorpusAccel:     c.CorpusQdrantAddr != "",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
