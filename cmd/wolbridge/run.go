package main

import (
	"github.com/fgeck/wolbridge/internal/services/bridge"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Discord bot",
	Long: `Run the bot until interrupted:
1. Build the magic packet from the configured MAC address
2. Connect to the Discord gateway
3. Register the slash command
4. Post the launch button on each command, broadcast on each press
5. Serve health and metrics endpoints (if configured)`,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Info().
		Str("config", configFile).
		Str("command", cfg.Discord.CommandName).
		Str("mac", cfg.WOL.MACAddress).
		Msg("configuration loaded")

	ctx, cancel := signalContext()
	defer cancel()

	bridgeSvc := bridge.New(log.Logger)
	if err := bridgeSvc.Run(ctx, *cfg); err != nil {
		log.Error().Err(err).Msg("bridge failed")
		return err
	}

	return nil
}
