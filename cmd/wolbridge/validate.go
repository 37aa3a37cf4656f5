package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/ssh"
	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var checkSSH bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without connecting to Discord or sending a packet.`,
	RunE:  validateConfig,
}

func init() {
	validateCmd.Flags().BoolVar(&checkSSH, "check-ssh", false, "also test the SSH shutdown connection")
}

//nolint:gocyclo // prints one section per optional feature
func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		// Check if file exists
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			log.Error().Str("file", configFile).Msg("config file not found")
			return fmt.Errorf("%w: config file not found: %s", models.ErrConfig, configFile)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	wolSvc, err := wol.New(log.Logger, cfg.WOL)
	if err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}
	packet := wolSvc.Packet()

	// Print configuration summary
	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Discord:")
	fmt.Printf("  Application ID: %s\n", cfg.Discord.ApplicationID)
	fmt.Printf("  Channel ID: %s\n", cfg.Discord.ChannelID)
	if cfg.Discord.GuildID != "" {
		fmt.Printf("  Guild ID: %s\n", cfg.Discord.GuildID)
	} else {
		fmt.Println("  Scope: global")
	}
	fmt.Printf("  Command: /%s (%s)\n", cfg.Discord.CommandName, cfg.Discord.CommandDescription)
	fmt.Printf("  Public: %v\n", cfg.Discord.Public)
	fmt.Printf("  Request Timeout: %s\n", cfg.Discord.RequestTimeout)
	fmt.Println()
	fmt.Println("Wake-on-LAN:")
	fmt.Printf("  MAC Address: %s\n", wolSvc.Target())
	fmt.Printf("  Broadcast: %s:%d\n", cfg.WOL.BroadcastIP, cfg.WOL.Port)
	fmt.Printf("  Packet: %d bytes, %s...\n", len(packet), hex.EncodeToString(packet[:12]))
	fmt.Println()
	fmt.Println("Optional Features:")
	fmt.Printf("  SSH Shutdown: %v\n", cfg.SSHShutdown != nil)
	fmt.Printf("  Telegram: %v\n", cfg.Telegram != nil)
	fmt.Printf("  HTTP: %v\n", cfg.HTTP != nil)

	if cfg.SSHShutdown != nil {
		fmt.Println()
		fmt.Println("SSH Shutdown Configuration:")
		fmt.Printf("  Host: %s\n", cfg.SSHShutdown.Host)
		fmt.Printf("  Port: %d\n", cfg.SSHShutdown.Port)
		fmt.Printf("  Username: %s\n", cfg.SSHShutdown.Username)
		fmt.Printf("  OS: %s\n", cfg.SSHShutdown.OS)
		fmt.Printf("  Command: %s\n", ssh.ShutdownCommand(*cfg.SSHShutdown))
	}

	if cfg.Telegram != nil {
		fmt.Println()
		fmt.Println("Telegram Configuration:")
		fmt.Printf("  Chat ID: %s\n", cfg.Telegram.ChatID)
		fmt.Printf("  Bot Token: (configured)\n")
	}

	if cfg.HTTP != nil {
		fmt.Println()
		fmt.Println("HTTP Configuration:")
		fmt.Printf("  Address: %s\n", cfg.HTTP.Addr)
	}

	if checkSSH && cfg.SSHShutdown != nil {
		sshSvc := ssh.New(log.Logger, *cfg.SSHShutdown)
		result, err := sshSvc.TestConnection(context.Background())
		if err == nil {
			err = result.Error
		}
		if err != nil {
			log.Error().Err(err).Str("host", cfg.SSHShutdown.Host).Msg("SSH connection test failed")
			return err
		}
		fmt.Println()
		fmt.Println("SSH connection: ok")
	}

	return nil
}
