package main

import (
	"fmt"

	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Broadcast the magic packet once",
	Long:  `Broadcast the configured Wake-on-LAN magic packet once without connecting to Discord.`,
	RunE:  wakeOnce,
}

func wakeOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	wolSvc, err := wol.New(log.Logger, cfg.WOL)
	if err != nil {
		log.Error().Err(err).Msg("invalid wake configuration")
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := wolSvc.Wake(ctx)
	if err != nil {
		return err
	}
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("wake failed")
		return fmt.Errorf("wake failed: %w", result.Error)
	}

	log.Info().
		Str("mac", wolSvc.Target()).
		Int("bytes", result.BytesSent).
		Dur("duration", result.Duration).
		Msg("magic packet sent")
	return nil
}
