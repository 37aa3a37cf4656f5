package models

import "time"

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// WakeNotice describes a button press that was acted upon.
type WakeNotice struct {
	Action   string // "wake" or "shutdown"
	Username string
	UserID   string
	Target   string // MAC address or SSH host
	Success  bool
	Time     time.Time

	ErrorMessage string
}

// TelegramResult holds the result of a Telegram notification.
type TelegramResult struct {
	MessageSent bool
	Error       error
}
