package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/models"
)

// DefaultTimeout bounds the wait for a selection when no override is
// configured.
const DefaultTimeout = 120 * time.Second

// Interactor is the interactive-message capability the disambiguator
// drives. internal/bot implements it over the gateway session; tests use
// a fake.
type Interactor interface {
	// Send renders a new chooser message and returns its ID.
	Send(channelID, content string, components []discordgo.MessageComponent) (string, error)
	// Edit rewrites the chooser's components in place.
	Edit(channelID, messageID string, components []discordgo.MessageComponent) error
	// Update rewrites the chooser as the response to a component interaction.
	Update(ic *discordgo.Interaction, components []discordgo.MessageComponent) error
	// Acknowledge answers an interaction without any visible change.
	Acknowledge(ic *discordgo.Interaction) error
	// Whisper sends a notice only the interacting user can see.
	Whisper(ic *discordgo.Interaction, content string) error
}

// Selection is one component interaction, already parsed out of the
// transport event by the gateway layer.
type Selection struct {
	SessionID   string
	Component   string
	Values      []string
	ClickerID   string
	Resolved    []models.User
	Interaction *discordgo.Interaction
}

// Config carries the tunables of the resolution subsystem.
type Config struct {
	// Timeout bounds the interactive wait. Zero means DefaultTimeout.
	Timeout time.Duration
	// SelfWords and EveryoneWords override the sentinel token sets.
	SelfWords     []string
	EveryoneWords []string
}

// Disambiguator turns ambiguous resolver output into exactly one user by
// running an interactive chooser session per invocation. Sessions are
// tracked by ID so the gateway layer can route component interactions
// back with Deliver.
type Disambiguator struct {
	resolver *Resolver
	interact Interactor
	timeout  time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a disambiguator on top of an interactor.
func New(cfg Config, interact Interactor, log *zap.Logger) *Disambiguator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Disambiguator{
		resolver: NewResolver(cfg.SelfWords, cfg.EveryoneWords),
		interact: interact,
		timeout:  timeout,
		log:      log.Named("resolve"),
		sessions: make(map[string]*session),
	}
}

// Resolver exposes the pure matching pipeline, mainly for callers that
// want candidates without an interactive session.
func (d *Disambiguator) Resolver() *Resolver {
	return d.resolver
}

// Resolve is the single conversion entry point: token in, exactly one user
// out. A unique match returns synchronously. An ambiguous match opens a
// chooser in channelID and blocks until the invoker picks, the timeout
// elapses, or ctx is cancelled. Failures are *NotFoundError,
// *TimeoutError or *CeilingError.
func (d *Disambiguator) Resolve(ctx context.Context, token, channelID string, q Query) (models.User, error) {
	res := d.resolver.Resolve(token, q)
	if len(res.Candidates) == 0 {
		return models.User{}, &NotFoundError{Token: token}
	}
	if len(res.Candidates) == 1 && !res.WholeGuild {
		return res.Candidates[0], nil
	}

	candidates := append([]models.User(nil), res.Candidates...)
	SortCandidates(candidates)

	id := uuid.NewString()
	ui, err := newSelectionUI(id, candidates, res.WholeGuild)
	if err != nil {
		d.log.Error("candidate set exceeds selection ceiling",
			zap.String("token", token),
			zap.Int("candidates", len(candidates)))
		return models.User{}, err
	}

	sess := newSession(id, token, q.Invoker.ID, channelID, ui, q.Users)
	d.register(sess)
	defer d.drop(id)

	content := fmt.Sprintf("which %s?", token)
	if res.WholeGuild {
		content += " (you have to pick one sorry)"
	}
	msgID, err := d.interact.Send(channelID, content, ui.render(false, nil))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to render chooser: %w", err)
	}
	sess.messageID = msgID

	d.log.Debug("disambiguation session opened",
		zap.String("session_id", id),
		zap.String("token", token),
		zap.Int("candidates", len(candidates)),
		zap.Bool("whole_guild", res.WholeGuild))

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case <-sess.done:
	case <-timer.C:
		if sess.expire() {
			d.disable(sess)
			return models.User{}, &TimeoutError{Token: token}
		}
	case <-ctx.Done():
		if sess.expire() {
			d.disable(sess)
			return models.User{}, fmt.Errorf("selection cancelled: %w", ctx.Err())
		}
	}
	chosen, _ := sess.result()
	return chosen, nil
}

// Deliver routes one component interaction to its session. Events for
// finished or unknown sessions are acknowledged and dropped; events from
// anyone but the invoker get an ephemeral notice and change nothing.
func (d *Disambiguator) Deliver(sel Selection) {
	d.mu.Lock()
	sess := d.sessions[sel.SessionID]
	d.mu.Unlock()
	if sess == nil {
		_ = d.interact.Acknowledge(sel.Interaction)
		return
	}
	if sel.ClickerID != sess.invokerID {
		_ = d.interact.Whisper(sel.Interaction, "not for you!")
		return
	}
	chosen, ok := sess.pick(sel)
	if !ok || !sess.attemptResolve(chosen) {
		_ = d.interact.Acknowledge(sel.Interaction)
		return
	}
	if err := d.interact.Update(sel.Interaction, sess.ui.render(true, &chosen)); err != nil {
		d.log.Warn("failed to finalize chooser",
			zap.String("session_id", sess.id),
			zap.Error(err))
	}
}

// ParseCustomID splits a component custom ID into session ID and component
// part, reporting false for IDs the disambiguator does not own.
func ParseCustomID(customID string) (sessionID, component string, ok bool) {
	rest, found := strings.CutPrefix(customID, ComponentPrefix)
	if !found {
		return "", "", false
	}
	sessionID, component, found = strings.Cut(rest, ":")
	if !found || sessionID == "" {
		return "", "", false
	}
	return sessionID, component, true
}

func (d *Disambiguator) register(s *session) {
	d.mu.Lock()
	d.sessions[s.id] = s
	d.mu.Unlock()
}

func (d *Disambiguator) drop(id string) {
	d.mu.Lock()
	delete(d.sessions, id)
	d.mu.Unlock()
}

// disable rewrites a terminal session's chooser with every control greyed
// out so the message never dangles live controls that answer to no one.
func (d *Disambiguator) disable(s *session) {
	if s.messageID == "" {
		return
	}
	if err := d.interact.Edit(s.channelID, s.messageID, s.ui.render(true, nil)); err != nil {
		d.log.Warn("failed to disable chooser",
			zap.String("session_id", s.id),
			zap.Error(err))
	}
}
