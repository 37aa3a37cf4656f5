// Package models contains the data structures used throughout wolbridge.
package models

import "time"

// BridgeConfig holds the complete configuration for a bridge process.
type BridgeConfig struct {
	Discord     DiscordConfig
	WOL         WOLConfig
	SSHShutdown *SSHShutdownConfig // nil if not configured
	Telegram    *TelegramConfig    // nil if not configured
	HTTP        *HTTPConfig        // nil if not configured
}

// DiscordConfig holds the chat platform credentials and command settings.
type DiscordConfig struct {
	Token              string
	ApplicationID      string
	ChannelID          string // channel the confirmation control is posted into
	GuildID            string // optional, registers a guild-scoped command
	CommandName        string
	CommandDescription string
	Public             bool
	Prompt             string // message content posted with the control
	RequestTimeout     time.Duration
}

// HTTPConfig holds the health and metrics endpoint settings.
type HTTPConfig struct {
	Addr string
}
