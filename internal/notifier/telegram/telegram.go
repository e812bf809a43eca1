package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/finsight/internal/notifier"
)

// DefaultAPIURL is the Telegram Bot API root
const DefaultAPIURL = "https://api.telegram.org"

// Telegram implements the Notifier interface for Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   DefaultAPIURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token := cfg.String("bot_token"); token != "" {
		t.botToken = token
	}
	if chatID := cfg.String("chat_id"); chatID != "" {
		t.chatID = chatID
	}
	if apiURL := cfg.String("api_url"); apiURL != "" {
		t.apiURL = apiURL
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.apiURL == "" {
		t.apiURL = DefaultAPIURL
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

func (t *Telegram) Send(ctx context.Context, n notifier.Notice) error {
	return t.sendMessage(ctx, formatNotice(n))
}

func formatNotice(n notifier.Notice) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *%s*\n", n.Title()))
	for _, c := range n.Companies {
		sb.WriteString("• " + c.Line() + "\n")
	}
	if n.Benchmark.Ticker != "" {
		sb.WriteString(fmt.Sprintf("📈 %s\n", n.Benchmark.Line()))
	}
	for _, d := range n.Diagnostics {
		sb.WriteString(fmt.Sprintf("⚠️ %s\n", d))
	}
	sb.WriteString(fmt.Sprintf("🆔 `%s`", n.ReportID))

	return sb.String()
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.apiURL, "/"), t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
