// Package bridge wires the configured services together and runs the bot
// until its context is cancelled.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/fgeck/wolbridge/internal/metrics"
	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/server"
	"github.com/fgeck/wolbridge/internal/services/discord"
	"github.com/fgeck/wolbridge/internal/services/interaction"
	"github.com/fgeck/wolbridge/internal/services/ssh"
	"github.com/fgeck/wolbridge/internal/services/telegram"
	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SessionFactory opens a chat platform session for a bot token.
type SessionFactory func(token string, requestTimeout time.Duration) (discord.Session, error)

// Service defines the interface for the bridge runner.
type Service interface {
	Run(ctx context.Context, cfg models.BridgeConfig) error
}

// Impl implements the bridge Service interface.
type Impl struct {
	newSession   SessionFactory
	readyTimeout time.Duration
	logger       zerolog.Logger
}

// New creates a bridge runner backed by a real Discord session.
func New(logger zerolog.Logger) *Impl {
	return NewWithSessionFactory(logger, func(token string, requestTimeout time.Duration) (discord.Session, error) {
		return discord.NewSession(token, requestTimeout)
	})
}

// NewWithSessionFactory creates a bridge runner with a custom session factory (for testing).
func NewWithSessionFactory(logger zerolog.Logger, factory SessionFactory) *Impl {
	return &Impl{
		newSession: factory,
		logger:     logger,
	}
}

// SetReadyTimeout overrides how long startup waits for the gateway READY event.
func (s *Impl) SetReadyTimeout(d time.Duration) {
	s.readyTimeout = d
}

// Run builds the wake packet, connects to Discord, registers the command and
// serves interactions until ctx is cancelled. Any startup failure is returned.
func (s *Impl) Run(ctx context.Context, cfg models.BridgeConfig) error {
	s.logger.Info().
		Str("mac", cfg.WOL.MACAddress).
		Str("broadcast_ip", cfg.WOL.BroadcastIP).
		Int("port", cfg.WOL.Port).
		Str("command", cfg.Discord.CommandName).
		Msg("starting bridge")

	// Step 1: Wake packet (fail fast on a bad MAC)
	wolSvc, err := wol.New(s.logger.With().Str("component", "wol").Logger(), cfg.WOL)
	if err != nil {
		return fmt.Errorf("building wake packet: %w", err)
	}

	// Step 2: Optional collaborators
	var sshSvc ssh.Service
	if cfg.SSHShutdown != nil {
		sshSvc = ssh.New(s.logger.With().Str("component", "ssh").Logger(), *cfg.SSHShutdown)
	}
	var telegramSvc telegram.Service
	if cfg.Telegram != nil {
		telegramSvc = telegram.New(s.logger.With().Str("component", "telegram").Logger(), *cfg.Telegram)
	}

	// Step 3: Discord session, router and bot
	session, err := s.newSession(cfg.Discord.Token, cfg.Discord.RequestTimeout)
	if err != nil {
		return err
	}

	router := interaction.New(
		s.logger.With().Str("component", "router").Logger(),
		models.RouterConfig{
			CommandName:    cfg.Discord.CommandName,
			ChannelID:      cfg.Discord.ChannelID,
			Prompt:         cfg.Discord.Prompt,
			RequestTimeout: cfg.Discord.RequestTimeout,
		},
		discord.NewPlatform(session),
		wolSvc,
		sshSvc,
		telegramSvc,
	)

	discordLogger := s.logger.With().Str("component", "discord").Logger()
	bot := discord.NewBot(
		discordLogger,
		session,
		discord.NewRegistry(discordLogger, session, cfg.Discord.ApplicationID, cfg.Discord.GuildID),
		models.CommandDescriptor{
			Name:        cfg.Discord.CommandName,
			Description: cfg.Discord.CommandDescription,
			Public:      cfg.Discord.Public,
		},
		router,
	)
	if s.readyTimeout > 0 {
		bot.SetReadyTimeout(s.readyTimeout)
	}

	// Step 4: Health server, not ready until the command is registered
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.HTTP != nil {
		srv := server.New(s.logger.With().Str("component", "http").Logger(), cfg.HTTP.Addr, bot.Registered)
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	// Step 5: Connect and register
	if err := bot.Start(gctx); err != nil {
		s.stop(bot)
		cancel()
		if waitErr := g.Wait(); waitErr != nil {
			return fmt.Errorf("bridge stopped: %w", waitErr)
		}
		return err
	}
	defer s.stop(bot)

	// Step 6: Serve until cancelled
	s.logger.Info().Str("channel", cfg.Discord.ChannelID).Msg("bridge running")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("bridge stopped: %w", err)
	}

	s.logger.Info().Msg("bridge stopped")
	return nil
}

func (s *Impl) stop(bot *discord.Bot) {
	metrics.CommandRegistered.Set(0)
	if err := bot.Stop(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to stop discord bot")
	}
}
