package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bradykim7/whobot/internal/resolve"
	"github.com/bradykim7/whobot/pkg/logger"
)

// Command represents a bot command
type Command interface {
	Execute(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error
	Help() string
}

// Registry manages all bot commands
type Registry struct {
	prefix   string
	commands map[string]Command
	log      *logger.Logger
}

// NewRegistry creates a new command registry
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:   prefix,
		commands: make(map[string]Command),
		log:      logger.New("commands"),
	}
}

// Register registers a command with the registry
func (r *Registry) Register(name string, cmd Command) {
	r.commands[name] = cmd
	r.log.Infof("Registered command: %s", name)
}

// Handle processes a message and executes the appropriate command
func (r *Registry) Handle(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	// Check if the message starts with the command prefix
	if !strings.HasPrefix(m.Content, r.prefix) {
		return
	}

	// Split the message into command and arguments
	content := strings.TrimPrefix(m.Content, r.prefix)
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return
	}

	// Extract command name and arguments
	cmdName := parts[0]
	args := parts[1:]

	// Find the command
	cmd, ok := r.commands[cmdName]
	if !ok {
		return
	}

	r.log.Infof("Executing command: %s", cmdName)
	if err := cmd.Execute(ctx, s, m, args); err != nil {
		r.renderError(s, m, cmdName, err)
	}
}

// renderError is the generic failure handler every command propagates to.
// The resolution error kinds get their own user-visible messages; anything
// else is logged and reported generically.
func (r *Registry) renderError(s *discordgo.Session, m *discordgo.MessageCreate, cmdName string, err error) {
	var (
		notFound *resolve.NotFoundError
		timedOut *resolve.TimeoutError
		ceiling  *resolve.CeilingError
	)
	switch {
	case errors.As(err, &notFound):
		s.ChannelMessageSend(m.ChannelID, "couldn't find "+notFound.Token+", sorry")
	case errors.As(err, &timedOut):
		s.ChannelMessageSend(m.ChannelID, "you never picked anyone, never mind")
	case errors.As(err, &ceiling):
		r.log.Errorf("Command %s hit the selection ceiling: %v", cmdName, err)
		s.ChannelMessageSend(m.ChannelID, "way too many people match that, I give up")
	default:
		r.log.Errorf("Command %s failed: %v", cmdName, err)
		s.ChannelMessageSend(m.ChannelID, "something went wrong")
	}
}

// GetCommands returns all registered commands
func (r *Registry) GetCommands() map[string]Command {
	return r.commands
}
