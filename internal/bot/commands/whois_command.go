package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/models"
)

// UserResolver converts a raw person-reference token into exactly one
// user, interactively when needed. Implemented by the bot host.
type UserResolver interface {
	ResolveUser(ctx context.Context, m *discordgo.MessageCreate, token string) (models.User, error)
}

// WhoisCommand resolves a person reference and says who it landed on.
type WhoisCommand struct {
	log      *zap.Logger
	resolver UserResolver
}

// NewWhoisCommand creates the whois command.
func NewWhoisCommand(log *zap.Logger, resolver UserResolver) *WhoisCommand {
	return &WhoisCommand{
		log:      log.Named("whois-command"),
		resolver: resolver,
	}
}

func (c *WhoisCommand) Execute(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID, "who? give me a name, mention, ID or alias")
		return err
	}

	token := strings.Join(args, " ")
	user, err := c.resolver.ResolveUser(ctx, m, token)
	if err != nil {
		return err
	}

	c.log.Info("token resolved",
		zap.String("token", token),
		zap.String("user_id", user.ID))

	content := fmt.Sprintf("%s is %s (ID %s)", token, user.Mention(), user.ID)
	if user.Bot {
		content += ", a bot"
	}
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

func (c *WhoisCommand) Help() string {
	return "Figure out which user a name, mention, ID or alias refers to"
}
