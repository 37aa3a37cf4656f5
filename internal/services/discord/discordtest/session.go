// Package discordtest provides an in-memory Discord session for tests.
package discordtest

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// SentMessage is a message captured by Session.
type SentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

// Response is an interaction response captured by Session.
type Response struct {
	Interaction *discordgo.Interaction
	Response    *discordgo.InteractionResponse
}

// Session records REST calls and lets tests fire gateway events.
type Session struct {
	// ReadyOnOpen fires a READY event from Open.
	ReadyOnOpen bool

	OpenErr    error
	CreateErr  error
	SendErr    error
	RespondErr error

	mu                  sync.Mutex
	readyHandlers       []func(*discordgo.Session, *discordgo.Ready)
	interactionHandlers []func(*discordgo.Session, *discordgo.InteractionCreate)
	commands            []*discordgo.ApplicationCommand
	guildIDs            []string
	messages            []SentMessage
	responses           []Response
	calls               []string
	opened              bool
	closed              bool
}

// New returns a session that becomes ready as soon as it is opened.
func New() *Session {
	return &Session{ReadyOnOpen: true}
}

// AddHandler registers READY and INTERACTION_CREATE handlers.
func (s *Session) AddHandler(handler interface{}) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch h := handler.(type) {
	case func(*discordgo.Session, *discordgo.Ready):
		s.readyHandlers = append(s.readyHandlers, h)
	case func(*discordgo.Session, *discordgo.InteractionCreate):
		s.interactionHandlers = append(s.interactionHandlers, h)
	}
	return func() {}
}

// Open marks the session open and optionally fires READY.
func (s *Session) Open() error {
	if s.OpenErr != nil {
		return s.OpenErr
	}

	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()

	if s.ReadyOnOpen {
		go s.FireReady()
	}
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return errors.New("session not open")
	}
	s.closed = true
	return nil
}

// ApplicationCommandCreate records cmd.
func (s *Session) ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	s.record("register")
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := *cmd
	created.ID = "cmd-id"
	created.ApplicationID = appID
	s.commands = append(s.commands, &created)
	s.guildIDs = append(s.guildIDs, guildID)
	return &created, nil
}

// ChannelMessageSendComplex records data.
func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.record("post")
	if s.SendErr != nil {
		return nil, s.SendErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, SentMessage{ChannelID: channelID, Data: data})
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

// InteractionRespond records resp.
func (s *Session) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.record("respond")
	if s.RespondErr != nil {
		return s.RespondErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses = append(s.responses, Response{Interaction: interaction, Response: resp})
	return nil
}

// FireReady delivers a READY event to every handler.
func (s *Session) FireReady() {
	s.mu.Lock()
	handlers := append(([]func(*discordgo.Session, *discordgo.Ready))(nil), s.readyHandlers...)
	s.mu.Unlock()

	ready := &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "wolbridge"}}
	for _, h := range handlers {
		h(nil, ready)
	}
}

// FireInteraction delivers i to every interaction handler synchronously.
func (s *Session) FireInteraction(i *discordgo.Interaction) {
	s.mu.Lock()
	handlers := append(([]func(*discordgo.Session, *discordgo.InteractionCreate))(nil), s.interactionHandlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(nil, &discordgo.InteractionCreate{Interaction: i})
	}
}

// Commands returns the registered commands.
func (s *Session) Commands() []*discordgo.ApplicationCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*discordgo.ApplicationCommand(nil), s.commands...)
}

// GuildIDs returns the guild IDs passed to each registration.
func (s *Session) GuildIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.guildIDs...)
}

// Messages returns the posted messages.
func (s *Session) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.messages...)
}

// Responses returns the interaction responses.
func (s *Session) Responses() []Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Response(nil), s.responses...)
}

// Calls returns the REST calls in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Opened reports whether Open succeeded.
func (s *Session) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *Session) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// CommandInteraction builds a slash command interaction.
func CommandInteraction(id, name string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        id,
		Token:     "token-" + id,
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "chan-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice"}},
		Data:      discordgo.ApplicationCommandInteractionData{Name: name},
	}
}

// ButtonInteraction builds a message component interaction.
func ButtonInteraction(id, customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        id,
		Token:     "token-" + id,
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "chan-1",
		User:      &discordgo.User{ID: "42", Username: "alice"},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}
