package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// PingCommand replies with the round-trip latency.
type PingCommand struct{}

// NewPingCommand creates the ping command.
func NewPingCommand() *PingCommand {
	return &PingCommand{}
}

func (c *PingCommand) Execute(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	start := time.Now()
	msg, err := s.ChannelMessageSend(m.ChannelID, "Pinging...")
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	_, err = s.ChannelMessageEdit(m.ChannelID, msg.ID,
		"Pong! Latency: "+elapsed.Round(time.Millisecond).String())
	return err
}

func (c *PingCommand) Help() string {
	return "Check the bot's response latency"
}
