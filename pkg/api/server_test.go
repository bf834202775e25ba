package api

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/nitilex/pkg/audit"
	"github.com/codeready-toolchain/nitilex/pkg/config"
	"github.com/codeready-toolchain/nitilex/pkg/pipeline"
)

func TestServer_ValidateWiring(t *testing.T) {
	t.Run("all required collaborators wired", func(t *testing.T) {
		logger, err := audit.New(t.TempDir())
		require.NoError(t, err)

		s := &Server{
			validate: validator.New(),
			cfg:      &config.Config{},
			executor: &pipeline.Executor{},
			auditLog: logger,
		}
		assert.NoError(t, s.ValidateWiring())
	})

	t.Run("nothing wired", func(t *testing.T) {
		s := &Server{}
		err := s.ValidateWiring()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cfg")
		assert.Contains(t, err.Error(), "executor")
		assert.Contains(t, err.Error(), "auditLog")
	})
}
