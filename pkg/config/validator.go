package config

import "fmt"

// Validator hand-validates a Config the way the teacher's own
// pkg/config/validator.go validates TarsyYAMLConfig: a fixed sequence of
// checks, each wrapped with its own context, stopping at the first
// failure rather than collecting every error.
type Validator struct {
	cfg *Config
}

// NewValidator creates a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every check in dependency order: paths first (nothing
// else can run without them), then the LLM settings the reasoning and
// validation modules depend on, then the pipeline's resource bounds.
func (v *Validator) ValidateAll() error {
	if err := v.validatePaths(); err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	if err := v.validateRetrieval(); err != nil {
		return fmt.Errorf("retrieval configuration validation failed: %w", err)
	}
	if err := v.validateBounds(); err != nil {
		return fmt.Errorf("resource bound validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validatePaths() error {
	if v.cfg.CorpusIndexDir == "" {
		return NewValidationError("CORPUS_INDEX_DIR", ErrMissingRequiredField)
	}
	if v.cfg.AuditLogDir == "" {
		return NewValidationError("AUDIT_LOG_DIR", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateLLM() error {
	if !v.cfg.LLMProvider.IsValid() {
		return NewValidationError("LLM_PROVIDER", fmt.Errorf("%w: %q", ErrInvalidValue, v.cfg.LLMProvider))
	}
	if v.cfg.LLMModelReasoning == "" {
		return NewValidationError("LLM_MODEL_REASONING", ErrMissingRequiredField)
	}
	if v.cfg.LLMModelValidator == "" {
		return NewValidationError("LLM_MODEL_VALIDATOR", ErrMissingRequiredField)
	}
	if v.cfg.LLMTemperature < 0 || v.cfg.LLMTemperature > 1 {
		return NewValidationError("LLM_TEMPERATURE", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateRetrieval() error {
	if !v.cfg.ValidationMode.IsValid() {
		return NewValidationError("VALIDATION_MODE", fmt.Errorf("%w: %q", ErrInvalidValue, v.cfg.ValidationMode))
	}
	if v.cfg.RetrievalMaxSources < 1 {
		return NewValidationError("RETRIEVAL_MAX_SOURCES", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if v.cfg.RequestDeadline <= 0 {
		return NewValidationError("REQUEST_DEADLINE_MS", fmt.Errorf("%w: must be > 0", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateBounds() error {
	if v.cfg.PipelineMaxConcurrentSessions < 1 {
		return NewValidationError("PIPELINE_MAX_CONCURRENT_SESSIONS", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if v.cfg.RetrievalMaxInflight < 1 {
		return NewValidationError("RETRIEVAL_MAX_INFLIGHT", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if v.cfg.CaseMemoryHistoryLimit < 1 {
		return NewValidationError("CASEMEMORY_HISTORY_LIMIT", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	return nil
}
