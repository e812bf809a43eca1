// internal/llm/factory/factory.go
package factory

import (
	"fmt"

	"github.com/newthinker/finsight/internal/config"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/llm"
	"github.com/newthinker/finsight/internal/llm/claude"
	"github.com/newthinker/finsight/internal/llm/openai"
)

// New creates an LLM provider based on configuration. An empty provider
// name means commentary is disabled and yields a nil provider.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.BaseURL)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}
