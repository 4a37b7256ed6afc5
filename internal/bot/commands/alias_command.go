package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/models"
	"github.com/bradykim7/whobot/internal/resolve"
	"github.com/bradykim7/whobot/internal/storage"
)

// AliasCommand maintains the alias directory the resolver matches against:
// listing, self-service add/delete, and an owner-only override that links
// aliases to other people. Every mutation triggers a snapshot refresh.
type AliasCommand struct {
	log      *zap.Logger
	repo     *storage.AliasRepository
	cache    *resolve.AliasCache
	resolver UserResolver
	refresh  func(context.Context) error
	ownerID  string
}

// NewAliasCommand creates the alias command set.
func NewAliasCommand(
	log *zap.Logger,
	repo *storage.AliasRepository,
	cache *resolve.AliasCache,
	resolver UserResolver,
	refresh func(context.Context) error,
	ownerID string,
) *AliasCommand {
	return &AliasCommand{
		log:      log.Named("alias-command"),
		repo:     repo,
		cache:    cache,
		resolver: resolver,
		refresh:  refresh,
		ownerID:  ownerID,
	}
}

func (c *AliasCommand) Execute(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return c.list(s, m)
	}

	switch args[0] {
	case "add", "new":
		if len(args) < 2 {
			return c.usage(s, m)
		}
		return c.add(ctx, s, m, args[1], author(m), false)
	case "delete", "remove":
		if len(args) < 2 {
			return c.usage(s, m)
		}
		return c.delete(ctx, s, m, args[1], author(m))
	case "override":
		return c.override(ctx, s, m, args[1:])
	default:
		// Bare "alias x" works as a shortcut for "alias add x".
		return c.add(ctx, s, m, args[0], author(m), true)
	}
}

func (c *AliasCommand) list(s *discordgo.Session, m *discordgo.MessageCreate) error {
	aliases := c.cache.Snapshot().ByUser(m.Author.ID)
	if len(aliases) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID, "You don't have any aliases set")
		return err
	}
	lines := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		lines = append(lines, "- "+alias)
	}
	_, err := s.ChannelMessageSend(m.ChannelID, "Your aliases:\n"+strings.Join(lines, "\n"))
	return err
}

func (c *AliasCommand) add(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, alias string, user models.User, hint bool) error {
	pair := models.NewPersonAlias(alias, user.ID)
	added, err := c.repo.Add(ctx, pair)
	if err != nil {
		return err
	}
	if !added {
		_, err := s.ChannelMessageSend(m.ChannelID, "already got that one!")
		return err
	}

	content := user.Mention() + " hi " + pair.Alias + " :)"
	if hint {
		content += "\n(consider `alias add` next time)"
	}
	if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		return err
	}
	return c.refresh(ctx)
}

func (c *AliasCommand) delete(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, alias string, user models.User) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	removed, err := c.repo.Remove(ctx, alias, user.ID)
	if err != nil {
		return err
	}
	if !removed {
		_, err := s.ChannelMessageSend(m.ChannelID, "don't have that one!")
		return err
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, alias+" no more :)"); err != nil {
		return err
	}
	return c.refresh(ctx)
}

// override lets the owner link or unlink aliases for other people. The
// person argument goes through the full resolution pipeline, chooser
// included.
func (c *AliasCommand) override(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.Author.ID != c.ownerID {
		_, err := s.ChannelMessageSend(m.ChannelID, "only the owner can do that")
		return err
	}
	if len(args) < 3 {
		return c.usage(s, m)
	}

	action, alias := args[0], args[1]
	token := strings.Join(args[2:], " ")
	user, err := c.resolver.ResolveUser(ctx, m, token)
	if err != nil {
		return err
	}

	c.log.Info("alias override",
		zap.String("action", action),
		zap.String("alias", alias),
		zap.String("user_id", user.ID))

	switch action {
	case "add", "new":
		return c.add(ctx, s, m, alias, user, false)
	case "delete", "remove":
		return c.delete(ctx, s, m, alias, user)
	default:
		return c.usage(s, m)
	}
}

func (c *AliasCommand) usage(s *discordgo.Session, m *discordgo.MessageCreate) error {
	_, err := s.ChannelMessageSend(m.ChannelID,
		"usage: `alias`, `alias add <alias>`, `alias delete <alias>`, `alias override add|delete <alias> <person>`")
	return err
}

func (c *AliasCommand) Help() string {
	return "Manage the aliases people can be found by"
}

func author(m *discordgo.MessageCreate) models.User {
	return models.User{
		ID:       m.Author.ID,
		Username: m.Author.Username,
	}
}
