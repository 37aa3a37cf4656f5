// Package discord connects the bridge to Discord: command registration,
// posting the confirmation control, and acknowledging interactions.
package discord

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session used by the bridge.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// NewSession creates a bot session. requestTimeout bounds every REST call.
func NewSession(token string, requestTimeout time.Duration) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	// Interactions arrive regardless of intents.
	session.Identify.Intents = discordgo.IntentsGuilds
	if requestTimeout > 0 {
		session.Client = &http.Client{Timeout: requestTimeout}
	}

	return session, nil
}
