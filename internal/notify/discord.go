package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// messageSender is the slice of discordgo.Session the sender needs.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSender sends messages to a fixed Discord channel.
type DiscordSender struct {
	session   messageSender
	channelID string
}

// NewDiscordSender creates a sender bound to one channel.
func NewDiscordSender(session *discordgo.Session, channelID string) *DiscordSender {
	return &DiscordSender{session: session, channelID: channelID}
}

// Send posts the text to the channel. discordgo handles rate limiting
// internally; the context is honored only between attempts.
func (s *DiscordSender) Send(ctx context.Context, text string) SendResult {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return SendResult{Error: err, Duration: time.Since(start)}
	}

	_, err := s.session.ChannelMessageSend(s.channelID, text)
	if err != nil {
		return SendResult{Error: fmt.Errorf("channel message: %w", err), Duration: time.Since(start)}
	}
	return SendResult{Duration: time.Since(start)}
}

// ResolveChannel verifies the destination channel exists and is reachable.
// Called once at startup; an unreachable channel is the one fatal
// misconfiguration the bot refuses to start with.
func ResolveChannel(session *discordgo.Session, channelID string) error {
	ch, err := session.Channel(channelID)
	if err != nil {
		return fmt.Errorf("resolve channel %s: %w", channelID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
		return fmt.Errorf("channel %s is not a text channel", channelID)
	}
	return nil
}
