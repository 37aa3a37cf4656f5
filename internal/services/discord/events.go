package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/fgeck/wolbridge/internal/models"
)

// ToEvent converts a gateway interaction into a router event.
func ToEvent(i *discordgo.InteractionCreate) models.InteractionEvent {
	if i == nil || i.Interaction == nil {
		return models.InteractionEvent{Kind: models.EventUnknown}
	}

	ev := models.InteractionEvent{
		ID:        i.ID,
		Token:     i.Token,
		ChannelID: i.ChannelID,
	}

	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		ev.UserID = user.ID
		ev.Username = user.Username
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		ev.Kind = models.EventCommandInvocation
		ev.CommandName = i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		ev.Kind = models.EventControlActivation
		ev.ControlID = i.MessageComponentData().CustomID
	case discordgo.InteractionPing:
		ev.Kind = models.EventProbe
	default:
		ev.Kind = models.EventUnknown
	}

	return ev
}
