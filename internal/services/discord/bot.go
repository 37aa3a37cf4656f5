package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fgeck/wolbridge/internal/metrics"
	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
)

const defaultReadyTimeout = 30 * time.Second

// Handler handles one interaction event.
type Handler interface {
	Handle(ctx context.Context, ev models.InteractionEvent) *models.InteractionResult
}

// Bot owns the Discord session for the lifetime of the process.
type Bot struct {
	session      Session
	registry     *Registry
	descriptor   models.CommandDescriptor
	handler      Handler
	logger       zerolog.Logger
	readyTimeout time.Duration

	ctx        context.Context
	ready      chan struct{}
	readyOnce  sync.Once
	registered atomic.Bool
	removers   []func()
}

// NewBot creates a bot that registers descriptor and routes interactions to handler.
func NewBot(logger zerolog.Logger, session Session, registry *Registry, descriptor models.CommandDescriptor, handler Handler) *Bot {
	return &Bot{
		session:      session,
		registry:     registry,
		descriptor:   descriptor,
		handler:      handler,
		logger:       logger,
		readyTimeout: defaultReadyTimeout,
		ctx:          context.Background(),
		ready:        make(chan struct{}),
	}
}

// SetReadyTimeout overrides how long Start waits for the gateway READY event.
func (b *Bot) SetReadyTimeout(d time.Duration) {
	b.readyTimeout = d
}

// Registered reports whether the command registration succeeded.
func (b *Bot) Registered() bool {
	return b.registered.Load()
}

// Start opens the gateway connection, waits for READY and registers the
// command. Any failure here is fatal to startup.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.removers = append(b.removers,
		b.session.AddHandler(b.handleReady),
		b.session.AddHandler(b.handleInteraction),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	select {
	case <-b.ready:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.readyTimeout):
		return fmt.Errorf("timed out after %s waiting for discord READY", b.readyTimeout)
	}

	start := time.Now()
	err := b.registry.Register(ctx, b.descriptor)
	metrics.PlatformCallLatency.WithLabelValues("register").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	b.registered.Store(true)
	metrics.CommandRegistered.Set(1)
	b.logger.Info().Str("command", b.descriptor.Name).Msg("ready")

	return nil
}

// Stop removes the handlers and closes the session.
func (b *Bot) Stop() error {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r != nil && r.User != nil {
		b.logger.Info().
			Str("username", r.User.Username).
			Str("user_id", r.User.ID).
			Msg("discord gateway ready")
	}

	if !b.registered.Load() {
		b.readyOnce.Do(func() { close(b.ready) })
		return
	}

	// READY after a reconnect: refresh the command, failures are not fatal.
	if err := b.registry.Register(b.ctx, b.descriptor); err != nil {
		b.logger.Warn().Err(err).Msg("failed to refresh command after reconnect")
	}
}

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handler.Handle(b.ctx, ToEvent(i))
}
