package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/bot/commands"
	"github.com/bradykim7/whobot/internal/models"
	"github.com/bradykim7/whobot/internal/resolve"
	"github.com/bradykim7/whobot/internal/storage"
	"github.com/bradykim7/whobot/pkg/config"
)

// Bot wires the gateway session to the command registry and the user
// resolution subsystem.
type Bot struct {
	session       *discordgo.Session
	config        *config.Config
	log           *zap.Logger
	commands      *commands.Registry
	db            *storage.MongoDB
	aliasRepo     *storage.AliasRepository
	aliases       *resolve.AliasCache
	disambiguator *resolve.Disambiguator

	// root context for in-flight command invocations; cancelled on
	// shutdown so pending disambiguation waits unwind and disable
	// their choosers.
	ctx context.Context
}

// New creates a new Bot instance
func New(cfg *config.Config, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	db, err := storage.NewMongoDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	bot := &Bot{
		session:   session,
		config:    cfg,
		log:       log.Named("bot"),
		commands:  commands.NewRegistry(cfg.CommandPrefix),
		db:        db,
		aliasRepo: storage.NewAliasRepository(db, log),
		aliases:   resolve.NewAliasCache(),
		ctx:       context.Background(),
	}
	bot.disambiguator = resolve.New(resolve.Config{
		Timeout:       cfg.SelectTimeout,
		SelfWords:     cfg.SelfWords,
		EveryoneWords: cfg.EveryoneWords,
	}, &interactor{session: session}, log)

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	// The member directory needs the guild members intent on top of the
	// usual message intents.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	bot.registerCommands()

	return bot, nil
}

// Start connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	if err := b.aliasRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := b.RefreshAliases(ctx); err != nil {
		return err
	}

	b.log.Info("bot is running, press CTRL-C to exit")

	<-ctx.Done()

	return b.Close()
}

// Close releases the session and storage connections.
func (b *Bot) Close() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}

	if err := b.db.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect storage: %w", err)
	}

	return nil
}

// RefreshAliases rebuilds the alias snapshot from storage and swaps it in.
// Called at startup and after every alias mutation.
func (b *Bot) RefreshAliases(ctx context.Context) error {
	pairs, err := b.aliasRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh aliases: %w", err)
	}
	b.aliases.Replace(resolve.NewAliasSnapshot(pairs))
	b.log.Debug("alias snapshot refreshed", zap.Int("pairs", len(pairs)))
	return nil
}

// ResolveUser converts a raw token from a command invocation into exactly
// one user, running the interactive chooser when the token is ambiguous.
func (b *Bot) ResolveUser(ctx context.Context, m *discordgo.MessageCreate, token string) (models.User, error) {
	return b.disambiguator.Resolve(ctx, token, m.ChannelID, b.buildQuery(m))
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("bot logged in",
		zap.String("username", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))

	if err := s.UpdateGameStatus(0, "with names"); err != nil {
		b.log.Error("failed to set status", zap.Error(err))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	b.commands.Handle(b.ctx, s, m)
}

// onInteractionCreate routes chooser component clicks to their
// disambiguation session.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	data := i.MessageComponentData()
	sessionID, component, ok := resolve.ParseCustomID(data.CustomID)
	if !ok {
		return
	}

	clicker := i.User
	if i.Member != nil {
		clicker = i.Member.User
	}
	if clicker == nil {
		return
	}

	var resolved []models.User
	for _, u := range data.Resolved.Users {
		resolved = append(resolved, userFromDiscord(u))
	}

	b.disambiguator.Deliver(resolve.Selection{
		SessionID:   sessionID,
		Component:   component,
		Values:      data.Values,
		ClickerID:   clicker.ID,
		Resolved:    resolved,
		Interaction: i.Interaction,
	})
}

// registerCommands wires all commands into the registry.
func (b *Bot) registerCommands() {
	b.commands.Register("ping", commands.NewPingCommand())
	b.commands.Register("whois", commands.NewWhoisCommand(b.log, b))
	b.commands.Register("alias", commands.NewAliasCommand(
		b.log, b.aliasRepo, b.aliases, b, b.RefreshAliases, b.config.OwnerID))
}
