package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/bradykim7/whobot/internal/models"
	"github.com/bradykim7/whobot/internal/resolve"
)

// buildQuery snapshots the session state into the read-only context one
// resolution runs against: every member the bot can see across guilds as
// the directory, plus the current guild's members when the invocation
// happened in one.
func (b *Bot) buildQuery(m *discordgo.MessageCreate) resolve.Query {
	q := resolve.Query{
		Aliases: b.aliases.Snapshot(),
		Invoker: userFromDiscord(m.Author),
		Bot:     userFromDiscord(b.session.State.User),
	}

	seen := make(map[string]struct{})
	for _, guild := range b.session.State.Guilds {
		for _, member := range guild.Members {
			if member.User == nil {
				continue
			}
			if _, ok := seen[member.User.ID]; ok {
				continue
			}
			seen[member.User.ID] = struct{}{}
			q.Users = append(q.Users, userFromMember(member))
		}
	}

	if m.GuildID != "" {
		if guild, err := b.session.State.Guild(m.GuildID); err == nil {
			for _, member := range guild.Members {
				if member.User == nil {
					continue
				}
				q.Members = append(q.Members, userFromMember(member))
			}
		}
	}

	return q
}

func userFromDiscord(u *discordgo.User) models.User {
	if u == nil {
		return models.User{}
	}
	return models.User{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		GlobalName:    u.GlobalName,
		Bot:           u.Bot,
	}
}

func userFromMember(m *discordgo.Member) models.User {
	u := userFromDiscord(m.User)
	u.Nick = m.Nick
	return u
}
