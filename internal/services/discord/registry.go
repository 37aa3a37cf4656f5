package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
)

// Registry declares the bridge command with Discord. Creating a command
// with an existing name overwrites it, so Register may be called repeatedly.
type Registry struct {
	session Session
	appID   string
	guildID string
	logger  zerolog.Logger
}

// NewRegistry creates a registry. An empty guildID registers a global command.
func NewRegistry(logger zerolog.Logger, session Session, appID, guildID string) *Registry {
	return &Registry{
		session: session,
		appID:   appID,
		guildID: guildID,
		logger:  logger,
	}
}

// ApplicationCommand converts a descriptor into a chat input command.
func ApplicationCommand(d models.CommandDescriptor) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        d.Name,
		Description: d.Description,
	}
	if !d.Public {
		// Zero permissions hides the command from everyone but administrators.
		var adminOnly int64
		cmd.DefaultMemberPermissions = &adminOnly
	}
	return cmd
}

// Register creates or updates the command described by d.
func (r *Registry) Register(ctx context.Context, d models.CommandDescriptor) error {
	r.logger.Info().
		Str("command", d.Name).
		Str("guild", r.guildID).
		Bool("public", d.Public).
		Msg("registering command")

	created, err := r.session.ApplicationCommandCreate(r.appID, r.guildID, ApplicationCommand(d), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrRegistration, d.Name, err)
	}

	id := ""
	if created != nil {
		id = created.ID
	}
	r.logger.Info().Str("command", d.Name).Str("id", id).Msg("command registered")

	return nil
}
