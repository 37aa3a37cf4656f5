// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/spf13/viper"
)

// Defaults applied when a field is left empty.
const (
	DefaultCommandName        = "wol"
	DefaultCommandDescription = "Init launch PC button"
	DefaultPrompt             = "Launch PC button"
	DefaultRequestTimeout     = 10 * time.Second
	DefaultBroadcastIP        = "255.255.255.255"
	DefaultSendTimeout        = 2 * time.Second
)

// InteractionWindow is how long Discord waits for an interaction response.
// The launch acknowledgment follows the broadcast, so wol.send_timeout must
// stay below it.
const InteractionWindow = 3 * time.Second

// commandNamePattern is Discord's rule for chat input command names.
var commandNamePattern = regexp.MustCompile(`^[-_\p{L}\p{N}]{1,32}$`)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("discord.public", true)
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.BridgeConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading config file: %w", models.ErrConfig, err)
	}

	return p.parse()
}

// LoadReader loads configuration from a string (useful for testing).
func (p *Parser) LoadReader(content string) (*models.BridgeConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("%w: reading config: %w", models.ErrConfig, err)
	}

	return p.parse()
}

//nolint:gocognit,gocyclo // parsing config requires checking many fields
func (p *Parser) parse() (*models.BridgeConfig, error) {
	cfg := &models.BridgeConfig{}

	// Parse Discord config (required).
	cfg.Discord = models.DiscordConfig{
		Token:              p.expandEnv(p.v.GetString("discord.token")),
		ApplicationID:      p.expandEnv(p.v.GetString("discord.application_id")),
		ChannelID:          p.expandEnv(p.v.GetString("discord.channel_id")),
		GuildID:            p.expandEnv(p.v.GetString("discord.guild_id")),
		CommandName:        p.v.GetString("discord.command_name"),
		CommandDescription: p.v.GetString("discord.command_description"),
		Public:             p.v.GetBool("discord.public"),
		Prompt:             p.v.GetString("discord.prompt"),
		RequestTimeout:     p.v.GetDuration("discord.request_timeout"),
	}

	if cfg.Discord.CommandName == "" {
		cfg.Discord.CommandName = DefaultCommandName
	}
	if cfg.Discord.CommandDescription == "" {
		cfg.Discord.CommandDescription = DefaultCommandDescription
	}
	if cfg.Discord.Prompt == "" {
		cfg.Discord.Prompt = DefaultPrompt
	}
	if cfg.Discord.RequestTimeout == 0 {
		cfg.Discord.RequestTimeout = DefaultRequestTimeout
	}

	// Parse WOL config (required).
	cfg.WOL = models.WOLConfig{
		MACAddress:  p.expandEnv(p.v.GetString("wol.mac_address")),
		BroadcastIP: p.v.GetString("wol.broadcast_ip"),
		Port:        p.v.GetInt("wol.port"),
		SendTimeout: p.v.GetDuration("wol.send_timeout"),
	}

	if cfg.WOL.BroadcastIP == "" {
		cfg.WOL.BroadcastIP = DefaultBroadcastIP
	}
	if cfg.WOL.Port == 0 {
		cfg.WOL.Port = wol.DefaultPort
	}
	if cfg.WOL.SendTimeout == 0 {
		cfg.WOL.SendTimeout = DefaultSendTimeout
	}

	// Parse optional SSH shutdown config.
	if p.v.IsSet("ssh_shutdown") { //nolint:nestif // config parsing with defaults
		cfg.SSHShutdown = &models.SSHShutdownConfig{
			Host:          p.v.GetString("ssh_shutdown.host"),
			Port:          p.v.GetInt("ssh_shutdown.port"),
			Username:      p.v.GetString("ssh_shutdown.username"),
			KeyPath:       expandHome(p.expandEnv(p.v.GetString("ssh_shutdown.key_path"))),
			ShutdownDelay: p.v.GetInt("ssh_shutdown.shutdown_delay"),
			OS:            p.v.GetString("ssh_shutdown.os"),
		}

		if cfg.SSHShutdown.Port == 0 {
			cfg.SSHShutdown.Port = 22
		}
		if cfg.SSHShutdown.Username == "" {
			cfg.SSHShutdown.Username = "root"
		}
		if cfg.SSHShutdown.ShutdownDelay == 0 {
			cfg.SSHShutdown.ShutdownDelay = 1
		}
		if cfg.SSHShutdown.OS == "" {
			cfg.SSHShutdown.OS = "linux"
		}
	}

	// Parse optional Telegram config.
	if p.v.IsSet("telegram") {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: p.expandEnv(p.v.GetString("telegram.bot_token")),
			ChatID:   p.expandEnv(p.v.GetString("telegram.chat_id")),
		}
	}

	// Parse optional HTTP config.
	if p.v.IsSet("http") {
		cfg.HTTP = &models.HTTPConfig{
			Addr: p.v.GetString("http.addr"),
		}
		if cfg.HTTP.Addr == "" {
			cfg.HTTP.Addr = ":9090"
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

func required(field string) error {
	return fmt.Errorf("%w: %s is required", models.ErrConfig, field)
}

// Validate performs validation on the loaded configuration.
//
//nolint:gocyclo // one check per field
func Validate(cfg *models.BridgeConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is nil", models.ErrConfig)
	}

	if cfg.Discord.Token == "" {
		return required("discord.token")
	}
	if cfg.Discord.ApplicationID == "" {
		return required("discord.application_id")
	}
	if cfg.Discord.ChannelID == "" {
		return required("discord.channel_id")
	}
	name := cfg.Discord.CommandName
	if name != strings.ToLower(name) || !commandNamePattern.MatchString(name) {
		return fmt.Errorf("%w: discord.command_name %q must be 1-32 lowercase letters, digits, '-' or '_'", models.ErrConfig, name)
	}
	if cfg.Discord.RequestTimeout < 0 {
		return fmt.Errorf("%w: discord.request_timeout must not be negative", models.ErrConfig)
	}

	if cfg.WOL.MACAddress == "" {
		return required("wol.mac_address")
	}
	if _, err := wol.ParseMAC(cfg.WOL.MACAddress); err != nil {
		return fmt.Errorf("wol.mac_address: %w", err)
	}
	if ip := net.ParseIP(cfg.WOL.BroadcastIP); ip == nil || ip.To4() == nil {
		return fmt.Errorf("%w: wol.broadcast_ip %q is not an IPv4 address", models.ErrConfig, cfg.WOL.BroadcastIP)
	}
	if cfg.WOL.Port < 1 || cfg.WOL.Port > 65535 {
		return fmt.Errorf("%w: wol.port %d out of range", models.ErrConfig, cfg.WOL.Port)
	}
	if cfg.WOL.SendTimeout < 0 || cfg.WOL.SendTimeout >= InteractionWindow {
		return fmt.Errorf("%w: wol.send_timeout %s must be below %s", models.ErrConfig, cfg.WOL.SendTimeout, InteractionWindow)
	}

	if cfg.SSHShutdown != nil {
		if cfg.SSHShutdown.Host == "" {
			return required("ssh_shutdown.host")
		}
		if cfg.SSHShutdown.KeyPath == "" && len(cfg.SSHShutdown.PrivateKey) == 0 {
			return required("ssh_shutdown.key_path")
		}
		validOS := map[string]bool{"linux": true, "windows": true}
		if !validOS[cfg.SSHShutdown.OS] {
			return fmt.Errorf("%w: ssh_shutdown.os must be one of: linux, windows", models.ErrConfig)
		}
	}

	if cfg.Telegram != nil {
		if cfg.Telegram.BotToken == "" {
			return required("telegram.bot_token")
		}
		if cfg.Telegram.ChatID == "" {
			return required("telegram.chat_id")
		}
	}

	return nil
}
