package resolve

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/models"
)

type fakeMessage struct {
	channelID  string
	messageID  string
	content    string
	components []discordgo.MessageComponent
}

// fakeInteractor records every rendering call the disambiguator makes.
type fakeInteractor struct {
	mu       sync.Mutex
	sends    []fakeMessage
	edits    []fakeMessage
	updates  [][]discordgo.MessageComponent
	whispers []string
	acks     int
}

func (f *fakeInteractor) Send(channelID, content string, components []discordgo.MessageComponent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("msg-%d", len(f.sends))
	f.sends = append(f.sends, fakeMessage{channelID: channelID, messageID: id, content: content, components: components})
	return id, nil
}

func (f *fakeInteractor) Edit(channelID, messageID string, components []discordgo.MessageComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, fakeMessage{channelID: channelID, messageID: messageID, components: components})
	return nil
}

func (f *fakeInteractor) Update(ic *discordgo.Interaction, components []discordgo.MessageComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, components)
	return nil
}

func (f *fakeInteractor) Acknowledge(ic *discordgo.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks++
	return nil
}

func (f *fakeInteractor) Whisper(ic *discordgo.Interaction, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, content)
	return nil
}

func (f *fakeInteractor) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeInteractor) lastSend() fakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends[len(f.sends)-1]
}

func (f *fakeInteractor) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeInteractor) whisperCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.whispers)
}

// sessionIDOf digs the session ID out of a rendered chooser.
func sessionIDOf(t *testing.T, msg fakeMessage) string {
	t.Helper()
	require.NotEmpty(t, msg.components)
	row := msg.components[0].(discordgo.ActionsRow)
	var customID string
	switch c := row.Components[0].(type) {
	case discordgo.Button:
		customID = c.CustomID
	case discordgo.SelectMenu:
		customID = c.CustomID
	default:
		t.Fatalf("unexpected component %T", c)
	}
	sid, _, ok := ParseCustomID(customID)
	require.True(t, ok)
	return sid
}

type resolveResult struct {
	user models.User
	err  error
}

func startResolve(d *Disambiguator, token string, q Query) <-chan resolveResult {
	return startResolveCtx(context.Background(), d, token, q)
}

func startResolveCtx(ctx context.Context, d *Disambiguator, token string, q Query) <-chan resolveResult {
	out := make(chan resolveResult, 1)
	go func() {
		u, err := d.Resolve(ctx, token, "chan", q)
		out <- resolveResult{user: u, err: err}
	}()
	return out
}

func ambiguousQuery() Query {
	q := testQuery(olivia, ace1, ace2)
	q.Aliases = NewAliasSnapshot([]models.PersonAlias{
		{Alias: "ace", UserID: ace1.ID},
		{Alias: "ace", UserID: ace2.ID},
	})
	return q
}

func TestResolveSingleCandidateSkipsSession(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	u, err := d.Resolve(context.Background(), "olivia", "chan", testQuery(olivia, ace1))
	require.NoError(t, err)
	assert.Equal(t, olivia.ID, u.ID)
	assert.Zero(t, fake.sendCount())
}

func TestResolveZeroCandidates(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	_, err := d.Resolve(context.Background(), "nonexistent_xyz123", "chan", testQuery(olivia))
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nonexistent_xyz123", notFound.Token)
	assert.Zero(t, fake.sendCount())
}

func TestResolveCeilingExceeded(t *testing.T) {
	crowd := syntheticUsers(130)
	for i := range crowd {
		crowd[i].GlobalName = "qwd"
	}
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	_, err := d.Resolve(context.Background(), "qwd", "chan", testQuery(crowd...))
	var ceiling *CeilingError
	require.ErrorAs(t, err, &ceiling)
	assert.Equal(t, 130, ceiling.Count)
	assert.Zero(t, fake.sendCount())
}

func TestResolveInteractiveSelection(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	results := startResolve(d, "ace", ambiguousQuery())
	require.Eventually(t, func() bool { return fake.sendCount() == 1 }, time.Second, time.Millisecond)

	msg := fake.lastSend()
	assert.Equal(t, "which ace?", msg.content)
	sid := sessionIDOf(t, msg)

	// Sorted by folded display string: blue before wander, so wander is
	// button index 1.
	d.Deliver(Selection{SessionID: sid, Component: "1", ClickerID: selfie.ID})

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, ace1.ID, res.user.ID)

	// The chooser was finalized through the interaction response, not a
	// plain edit.
	assert.Len(t, fake.updates, 1)
	chosenButton := fake.updates[0][0].(discordgo.ActionsRow).Components[1].(discordgo.Button)
	assert.True(t, chosenButton.Disabled)
	assert.Equal(t, discordgo.SuccessButton, chosenButton.Style)
}

func TestResolveUnauthorizedClickIgnored(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	results := startResolve(d, "ace", ambiguousQuery())
	require.Eventually(t, func() bool { return fake.sendCount() == 1 }, time.Second, time.Millisecond)
	sid := sessionIDOf(t, fake.lastSend())

	// Somebody else clicking gets a whisper and changes nothing.
	d.Deliver(Selection{SessionID: sid, Component: "0", ClickerID: "interloper"})
	assert.Equal(t, 1, fake.whisperCount())
	select {
	case res := <-results:
		t.Fatalf("resolution finished early: %+v", res)
	case <-time.After(20 * time.Millisecond):
	}

	d.Deliver(Selection{SessionID: sid, Component: "0", ClickerID: selfie.ID})
	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, ace2.ID, res.user.ID)
	assert.Equal(t, "not for you!", fake.whispers[0])
}

func TestResolveSelectionIsTerminal(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	results := startResolve(d, "ace", ambiguousQuery())
	require.Eventually(t, func() bool { return fake.sendCount() == 1 }, time.Second, time.Millisecond)
	sid := sessionIDOf(t, fake.lastSend())

	d.Deliver(Selection{SessionID: sid, Component: "1", ClickerID: selfie.ID})
	d.Deliver(Selection{SessionID: sid, Component: "0", ClickerID: selfie.ID})

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, ace1.ID, res.user.ID)
	assert.Len(t, fake.updates, 1)
}

func TestResolveTimeout(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{Timeout: 30 * time.Millisecond}, fake, zap.NewNop())

	res := <-startResolve(d, "ace", ambiguousQuery())
	var timedOut *TimeoutError
	require.ErrorAs(t, res.err, &timedOut)
	assert.Equal(t, "ace", timedOut.Token)

	// The chooser was left disabled, not dangling.
	require.Equal(t, 1, fake.editCount())
	for _, c := range fake.edits[0].components[0].(discordgo.ActionsRow).Components {
		assert.True(t, c.(discordgo.Button).Disabled)
	}

	// Late clicks on the dead session are acknowledged and dropped.
	sid := sessionIDOf(t, fake.lastSend())
	d.Deliver(Selection{SessionID: sid, Component: "0", ClickerID: selfie.ID})
	assert.Equal(t, 1, fake.acks)
}

func TestResolveCancelledDisablesChooser(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	results := startResolveCtx(ctx, d, "ace", ambiguousQuery())
	require.Eventually(t, func() bool { return fake.sendCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	res := <-results
	require.ErrorIs(t, res.err, context.Canceled)
	require.Eventually(t, func() bool { return fake.editCount() == 1 }, time.Second, time.Millisecond)
}

func TestResolveWholeGuildPicker(t *testing.T) {
	fake := &fakeInteractor{}
	d := New(Config{}, fake, zap.NewNop())

	q := testQuery(olivia, ace1, ace2)
	q.Members = []models.User{olivia, ace1, ace2}
	results := startResolve(d, "@everyone", q)
	require.Eventually(t, func() bool { return fake.sendCount() == 1 }, time.Second, time.Millisecond)

	msg := fake.lastSend()
	assert.Equal(t, "which @everyone? (you have to pick one sorry)", msg.content)
	menu := msg.components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, discordgo.UserSelectMenu, menu.MenuType)

	sid := sessionIDOf(t, msg)
	d.Deliver(Selection{SessionID: sid, Component: "picker", Values: []string{ace2.ID}, ClickerID: selfie.ID})

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, ace2.ID, res.user.ID)
}
