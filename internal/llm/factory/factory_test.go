// internal/llm/factory/factory_test.go
package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/finsight/internal/config"
	"github.com/newthinker/finsight/internal/core"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		wantName string
		wantErr  *core.Error
	}{
		{
			name:     "claude",
			cfg:      config.LLMConfig{Provider: "claude", Claude: config.ClaudeConfig{APIKey: "k", Model: "claude-sonnet-4-5"}},
			wantName: "claude",
		},
		{
			name:     "openai with compatible endpoint",
			cfg:      config.LLMConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "k", BaseURL: "http://localhost:1234/v1"}},
			wantName: "openai",
		},
		{
			name:    "claude without key",
			cfg:     config.LLMConfig{Provider: "claude"},
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "openai without key",
			cfg:     config.LLMConfig{Provider: "openai"},
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown provider",
			cfg:     config.LLMConfig{Provider: "ollama"},
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNew_DisabledCommentary(t *testing.T) {
	p, err := New(config.LLMConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)
}
