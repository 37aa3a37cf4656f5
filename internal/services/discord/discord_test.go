package discord

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/discord/discordtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testDescriptor() models.CommandDescriptor {
	return models.CommandDescriptor{Name: "wol", Description: "Init launch PC button", Public: true}
}

type recordingHandler struct {
	mu     sync.Mutex
	events []models.InteractionEvent
}

func (h *recordingHandler) Handle(ctx context.Context, ev models.InteractionEvent) *models.InteractionResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return &models.InteractionResult{Kind: ev.Kind, Outcome: models.OutcomeIgnored}
}

func TestApplicationCommand(t *testing.T) {
	cmd := ApplicationCommand(testDescriptor())

	assert.Equal(t, discordgo.ChatApplicationCommand, cmd.Type)
	assert.Equal(t, "wol", cmd.Name)
	assert.Equal(t, "Init launch PC button", cmd.Description)
	assert.Nil(t, cmd.DefaultMemberPermissions)

	private := testDescriptor()
	private.Public = false
	cmd = ApplicationCommand(private)
	require.NotNil(t, cmd.DefaultMemberPermissions)
	assert.Equal(t, int64(0), *cmd.DefaultMemberPermissions)
}

func TestRegistry_Register(t *testing.T) {
	session := discordtest.New()
	registry := NewRegistry(testLogger(), session, "app-1", "guild-1")

	require.NoError(t, registry.Register(context.Background(), testDescriptor()))
	require.NoError(t, registry.Register(context.Background(), testDescriptor()))

	commands := session.Commands()
	require.Len(t, commands, 2)
	assert.Equal(t, "wol", commands[0].Name)
	assert.Equal(t, "app-1", commands[0].ApplicationID)
	assert.Equal(t, []string{"guild-1", "guild-1"}, session.GuildIDs())
}

func TestRegistry_RegisterFailure(t *testing.T) {
	session := discordtest.New()
	session.CreateErr = errors.New("401 Unauthorized")
	registry := NewRegistry(testLogger(), session, "app-1", "")

	err := registry.Register(context.Background(), testDescriptor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRegistration))
	assert.Contains(t, err.Error(), "401 Unauthorized")
}

func TestMessageSend(t *testing.T) {
	msg := MessageSend(models.ControlMessage{
		Content: "Launch PC button",
		Buttons: []models.ControlButton{
			{Label: "Launch!", CustomID: "button_launch"},
			{Label: "Shut down", CustomID: "button_shutdown", Danger: true},
		},
	})

	assert.Equal(t, "Launch PC button", msg.Content)
	require.Len(t, msg.Components, 1)

	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	launch, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "Launch!", launch.Label)
	assert.Equal(t, "button_launch", launch.CustomID)
	assert.Equal(t, discordgo.PrimaryButton, launch.Style)

	shutdown, ok := row.Components[1].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, discordgo.DangerButton, shutdown.Style)
}

func TestInteractionResponse(t *testing.T) {
	resp, err := InteractionResponse(models.AckDeferredUpdate, "")
	require.NoError(t, err)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, resp.Type)
	assert.Nil(t, resp.Data)

	resp, err = InteractionResponse(models.AckPong, "")
	require.NoError(t, err)
	assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)

	resp, err = InteractionResponse(models.AckFailureNotice, "failed")
	require.NoError(t, err)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "failed", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	_, err = InteractionResponse(models.AckKind(99), "")
	assert.Error(t, err)
}

func TestPlatform_PostAndAcknowledge(t *testing.T) {
	session := discordtest.New()
	platform := NewPlatform(session)

	err := platform.PostControl(context.Background(), "chan-9", models.ControlMessage{Content: "hi"})
	require.NoError(t, err)

	ev := models.InteractionEvent{ID: "int-1", Token: "tok-1"}
	require.NoError(t, platform.Acknowledge(context.Background(), ev, models.AckDeferredUpdate, ""))

	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "chan-9", messages[0].ChannelID)

	responses := session.Responses()
	require.Len(t, responses, 1)
	assert.Equal(t, "int-1", responses[0].Interaction.ID)
	assert.Equal(t, "tok-1", responses[0].Interaction.Token)
	assert.Equal(t, []string{"post", "respond"}, session.Calls())
}

func TestToEvent(t *testing.T) {
	t.Run("command", func(t *testing.T) {
		ev := ToEvent(&discordgo.InteractionCreate{Interaction: discordtest.CommandInteraction("1", "wol")})

		assert.Equal(t, models.EventCommandInvocation, ev.Kind)
		assert.Equal(t, "wol", ev.CommandName)
		assert.Equal(t, "1", ev.ID)
		assert.Equal(t, "token-1", ev.Token)
		assert.Equal(t, "alice", ev.Username)
		assert.Equal(t, "42", ev.UserID)
	})

	t.Run("button", func(t *testing.T) {
		ev := ToEvent(&discordgo.InteractionCreate{Interaction: discordtest.ButtonInteraction("2", "button_launch")})

		assert.Equal(t, models.EventControlActivation, ev.Kind)
		assert.Equal(t, "button_launch", ev.ControlID)
		assert.Equal(t, "alice", ev.Username)
	})

	t.Run("ping", func(t *testing.T) {
		ev := ToEvent(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "3", Type: discordgo.InteractionPing}})
		assert.Equal(t, models.EventProbe, ev.Kind)
	})

	t.Run("modal", func(t *testing.T) {
		ev := ToEvent(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "4", Type: discordgo.InteractionModalSubmit}})
		assert.Equal(t, models.EventUnknown, ev.Kind)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, models.EventUnknown, ToEvent(nil).Kind)
	})
}

func TestBot_StartRegistersAfterReady(t *testing.T) {
	session := discordtest.New()
	handler := &recordingHandler{}
	bot := NewBot(testLogger(), session, NewRegistry(testLogger(), session, "app-1", ""), testDescriptor(), handler)

	require.NoError(t, bot.Start(context.Background()))

	assert.True(t, bot.Registered())
	assert.Len(t, session.Commands(), 1)

	session.FireInteraction(discordtest.ButtonInteraction("5", "button_launch"))
	require.Len(t, handler.events, 1)
	assert.Equal(t, "button_launch", handler.events[0].ControlID)

	require.NoError(t, bot.Stop())
	assert.True(t, session.Closed())
}

func TestBot_StartFailsOnRegistrationError(t *testing.T) {
	session := discordtest.New()
	session.CreateErr = errors.New("forbidden")
	bot := NewBot(testLogger(), session, NewRegistry(testLogger(), session, "app-1", ""), testDescriptor(), &recordingHandler{})

	err := bot.Start(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRegistration))
	assert.False(t, bot.Registered())
}

func TestBot_StartFailsOnOpenError(t *testing.T) {
	session := discordtest.New()
	session.OpenErr = errors.New("4004 authentication failed")
	bot := NewBot(testLogger(), session, NewRegistry(testLogger(), session, "app-1", ""), testDescriptor(), &recordingHandler{})

	err := bot.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open discord session")
}

func TestBot_StartTimesOutWithoutReady(t *testing.T) {
	session := discordtest.New()
	session.ReadyOnOpen = false
	bot := NewBot(testLogger(), session, NewRegistry(testLogger(), session, "app-1", ""), testDescriptor(), &recordingHandler{})
	bot.SetReadyTimeout(20 * time.Millisecond)

	err := bot.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for discord READY")
	assert.Empty(t, session.Commands())
}

func TestBot_ReregistersOnReconnect(t *testing.T) {
	session := discordtest.New()
	bot := NewBot(testLogger(), session, NewRegistry(testLogger(), session, "app-1", ""), testDescriptor(), &recordingHandler{})

	require.NoError(t, bot.Start(context.Background()))
	session.FireReady()

	assert.Len(t, session.Commands(), 2)
}
