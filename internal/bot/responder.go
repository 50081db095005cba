package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends an initial response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction so the real reply can be sent later.
	Defer() error

	// Followup sends a message after the interaction has been acknowledged.
	Followup(params *discordgo.WebhookParams) error

	// Deferred reports whether the interaction has already been acknowledged.
	Deferred() bool
}

// Reply sends a message through the responder, as a follow-up if the
// interaction was deferred and as the initial response otherwise.
func Reply(r Responder, content string, embeds ...*discordgo.MessageEmbed) error {
	if r.Deferred() {
		return r.Followup(&discordgo.WebhookParams{
			Content: content,
			Embeds:  embeds,
		})
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
		},
	})
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	deferred bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// Defer sends a deferred channel message response.
func (r *DiscordResponder) Defer() error {
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.deferred = true
	r.mu.Unlock()
	return nil
}

// Followup sends a follow-up message to the deferred interaction.
func (r *DiscordResponder) Followup(params *discordgo.WebhookParams) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, params)
	return err
}

// Deferred reports whether Defer has succeeded.
func (r *DiscordResponder) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Followups    []*discordgo.WebhookParams
	IsDeferred   bool
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records the acknowledgement for testing.
func (m *MockResponder) Defer() error {
	if m.Err != nil {
		return m.Err
	}
	m.IsDeferred = true
	return nil
}

// Followup records the follow-up message for testing.
func (m *MockResponder) Followup(params *discordgo.WebhookParams) error {
	m.Followups = append(m.Followups, params)
	return m.Err
}

// Deferred reports whether Defer was called.
func (m *MockResponder) Deferred() bool {
	return m.IsDeferred
}

// LastFollowup returns the most recent follow-up message, or nil.
func (m *MockResponder) LastFollowup() *discordgo.WebhookParams {
	if len(m.Followups) == 0 {
		return nil
	}
	return m.Followups[len(m.Followups)-1]
}
