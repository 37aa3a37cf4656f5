// Package telegram sends wake notices via the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for Telegram notification operations.
type Service interface {
	SendWakeNotice(ctx context.Context, notice models.WakeNotice) (*models.TelegramResult, error)
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl implements the Telegram Service interface.
type Impl struct {
	cfg        models.TelegramConfig
	httpClient HTTPClient
	logger     zerolog.Logger
	baseURL    string
}

// New creates a new Telegram service.
func New(logger zerolog.Logger, cfg models.TelegramConfig) *Impl {
	return &Impl{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		baseURL: "https://api.telegram.org",
	}
}

// NewWithClient creates a new Telegram service with a custom HTTP client (for testing).
func NewWithClient(logger zerolog.Logger, cfg models.TelegramConfig, httpClient HTTPClient, baseURL string) *Impl {
	return &Impl{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// sendMessageRequest is the request body for Telegram sendMessage API.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendWakeNotice reports a wake or shutdown request to the configured chat.
func (s *Impl) SendWakeNotice(ctx context.Context, notice models.WakeNotice) (*models.TelegramResult, error) {
	result := &models.TelegramResult{}

	s.logger.Debug().
		Str("chat_id", s.cfg.ChatID).
		Str("action", notice.Action).
		Bool("success", notice.Success).
		Msg("sending Telegram notice")

	reqBody := sendMessageRequest{
		ChatID:    s.cfg.ChatID,
		Text:      formatNotice(notice),
		ParseMode: "HTML",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal request: %w", err)
		return result, nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		result.Error = fmt.Errorf("failed to create request: %w", err)
		return result, nil
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("failed to send request: %w", err)
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		return result, nil
	}

	result.MessageSent = true
	s.logger.Debug().Msg("Telegram notice sent")

	return result, nil
}

func formatNotice(n models.WakeNotice) string {
	var b bytes.Buffer

	title := "Wake requested"
	if n.Action == "shutdown" {
		title = "Shutdown requested"
	}

	if n.Success {
		b.WriteString(fmt.Sprintf("✅ <b>%s</b>\n\n", title))
	} else {
		b.WriteString(fmt.Sprintf("❌ <b>%s (failed)</b>\n\n", title))
	}

	who := n.Username
	if who == "" {
		who = n.UserID
	}
	b.WriteString(fmt.Sprintf("👤 <b>By:</b> %s\n", escapeHTML(who)))
	b.WriteString(fmt.Sprintf("🖥 <b>Target:</b> <code>%s</code>\n", escapeHTML(n.Target)))
	b.WriteString(fmt.Sprintf("⏰ <b>At:</b> %s\n", n.Time.Format("2006-01-02 15:04:05")))

	if !n.Success && n.ErrorMessage != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ <b>Error:</b> <code>%s</code>\n", escapeHTML(n.ErrorMessage)))
	}

	return b.String()
}

// escapeHTML escapes HTML special characters.
func escapeHTML(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
