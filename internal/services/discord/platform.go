package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fgeck/wolbridge/internal/models"
)

// Platform implements the router's platform calls on a Discord session.
type Platform struct {
	session Session
}

// NewPlatform creates a platform adapter.
func NewPlatform(session Session) *Platform {
	return &Platform{session: session}
}

// MessageSend converts a control message into a Discord message with one
// action row of buttons.
func MessageSend(msg models.ControlMessage) *discordgo.MessageSend {
	buttons := make([]discordgo.MessageComponent, 0, len(msg.Buttons))
	for _, b := range msg.Buttons {
		style := discordgo.PrimaryButton
		if b.Danger {
			style = discordgo.DangerButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    b.Label,
			Style:    style,
			CustomID: b.CustomID,
		})
	}

	return &discordgo.MessageSend{
		Content: msg.Content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	}
}

// PostControl posts msg into channelID.
func (p *Platform) PostControl(ctx context.Context, channelID string, msg models.ControlMessage) error {
	_, err := p.session.ChannelMessageSendComplex(channelID, MessageSend(msg), discordgo.WithContext(ctx))
	return err
}

// InteractionResponse builds the response for an acknowledgment kind.
func InteractionResponse(kind models.AckKind, content string) (*discordgo.InteractionResponse, error) {
	switch kind {
	case models.AckDeferredUpdate:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}, nil
	case models.AckPong:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}, nil
	case models.AckFailureNotice:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported acknowledgment kind %d", kind)
	}
}

// Acknowledge responds to the interaction identified by ev.
func (p *Platform) Acknowledge(ctx context.Context, ev models.InteractionEvent, kind models.AckKind, content string) error {
	resp, err := InteractionResponse(kind, content)
	if err != nil {
		return err
	}

	interaction := &discordgo.Interaction{ID: ev.ID, Token: ev.Token}
	return p.session.InteractionRespond(interaction, resp, discordgo.WithContext(ctx))
}
