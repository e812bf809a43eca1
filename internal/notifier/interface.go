package notifier

import (
	"context"
	"fmt"
	"strings"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Notifier announces finished reports
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers a single report notice
	Send(ctx context.Context, n Notice) error
}

// String reads a string parameter.
func (c Config) String(key string) string {
	s, _ := c.Params[key].(string)
	return s
}

// Int reads an integer parameter. YAML and env sources may yield any of
// the numeric kinds, or a string.
func (c Config) Int(key string) int {
	switch v := c.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}

// Strings reads a list parameter, accepting a single comma separated
// string as well.
func (c Config) Strings(key string) []string {
	switch v := c.Params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringMap reads a map parameter such as HTTP headers.
func (c Config) StringMap(key string) map[string]string {
	switch v := c.Params[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k] = fmt.Sprint(item)
		}
		return out
	}
	return nil
}
