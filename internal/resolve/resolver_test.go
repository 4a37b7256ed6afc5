package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bradykim7/whobot/internal/models"
)

var (
	olivia = models.User{ID: "100000000000000001", Username: "olivia", GlobalName: "Olivia"}
	ace1   = models.User{ID: "100000000000000002", Username: "wander", GlobalName: "Wander"}
	ace2   = models.User{ID: "100000000000000003", Username: "blue", GlobalName: "Blue"}
	selfie = models.User{ID: "100000000000000004", Username: "invoker"}
	botty  = models.User{ID: "100000000000000005", Username: "whobot", Bot: true}
)

func testQuery(users ...models.User) Query {
	return Query{
		Users:   users,
		Invoker: selfie,
		Bot:     botty,
	}
}

func candidateIDs(res Result) []string {
	ids := make([]string, 0, len(res.Candidates))
	for _, u := range res.Candidates {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestResolveByID(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.Resolve("100000000000000001", testQuery(olivia, ace1))
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))
}

func TestResolveByMention(t *testing.T) {
	r := NewResolver(nil, nil)

	res := r.Resolve("<@100000000000000001>", testQuery(olivia, ace1))
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))

	res = r.Resolve("<@!100000000000000001>", testQuery(olivia, ace1))
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))
}

func TestResolveByDiscriminator(t *testing.T) {
	legacy := models.User{ID: "100000000000000009", Username: "oldtimer", Discriminator: "1234"}
	r := NewResolver(nil, nil)
	res := r.Resolve("oldtimer#1234", testQuery(olivia, legacy))
	assert.Equal(t, []string{legacy.ID}, candidateIDs(res))
}

func TestResolveUsernameCaseFolded(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.Resolve("OLIVIA", testQuery(olivia, ace1))
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))
}

func TestResolveFullUnicodeFold(t *testing.T) {
	strasse := models.User{ID: "100000000000000010", Username: "Straße"}
	r := NewResolver(nil, nil)
	// Full case folding maps ß to ss; naive lowercasing would miss this.
	res := r.Resolve("STRASSE", testQuery(strasse))
	assert.Equal(t, []string{strasse.ID}, candidateIDs(res))
}

func TestResolveNicknameGuildOnly(t *testing.T) {
	member := olivia
	member.Nick = "liv"
	r := NewResolver(nil, nil)

	q := testQuery(olivia, ace1)
	q.Members = []models.User{member}
	res := r.Resolve("LIV", q)
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))

	// No guild context, no nickname matching.
	res = r.Resolve("LIV", testQuery(olivia, ace1))
	assert.Empty(t, res.Candidates)
}

func TestResolveDedupAcrossStrategies(t *testing.T) {
	// A token that is both somebody's ID and somebody's username must
	// accumulate both strategies, then collapse per user.
	weird := models.User{ID: "100000000000000011", Username: "100000000000000001"}
	r := NewResolver(nil, nil)
	res := r.Resolve("100000000000000001", testQuery(olivia, weird))
	assert.ElementsMatch(t, []string{olivia.ID, weird.ID}, candidateIDs(res))

	// Same user hit by ID, mention target username and global name still
	// shows up once.
	q := testQuery(olivia)
	q.Aliases = NewAliasSnapshot([]models.PersonAlias{{Alias: "olivia", UserID: olivia.ID}})
	res = r.Resolve("olivia", q)
	assert.Equal(t, []string{olivia.ID}, candidateIDs(res))
}

func TestResolveAmbiguousAlias(t *testing.T) {
	r := NewResolver(nil, nil)
	q := testQuery(olivia, ace1, ace2)
	q.Aliases = NewAliasSnapshot([]models.PersonAlias{
		{Alias: "ace", UserID: ace1.ID},
		{Alias: "ace", UserID: ace2.ID},
	})
	res := r.Resolve("ACE", q)
	assert.ElementsMatch(t, []string{ace1.ID, ace2.ID}, candidateIDs(res))
}

func TestResolveAliasUnknownIDSkipped(t *testing.T) {
	r := NewResolver(nil, nil)
	q := testQuery(olivia)
	q.Aliases = NewAliasSnapshot([]models.PersonAlias{
		{Alias: "ghost", UserID: "999999999999999999"},
	})
	res := r.Resolve("ghost", q)
	assert.Empty(t, res.Candidates)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.Resolve("nonexistent_xyz123", testQuery(olivia, ace1))
	assert.Empty(t, res.Candidates)
	assert.False(t, res.WholeGuild)
}

func TestResolveSelfSentinel(t *testing.T) {
	r := NewResolver(nil, nil)
	for _, token := range []string{"me", "ME", "meee", "🪟"} {
		res := r.Resolve(token, testQuery(olivia))
		assert.Equal(t, []string{selfie.ID}, candidateIDs(res), "token %q", token)
	}
}

func TestResolveEveryoneReplacesOtherMatches(t *testing.T) {
	// Someone whose literal username is "@everyone" must not survive the
	// sentinel: the member list replaces the candidate set wholesale.
	troll := models.User{ID: "100000000000000012", Username: "@everyone"}
	r := NewResolver(nil, nil)
	q := testQuery(olivia, ace1, troll)
	q.Members = []models.User{olivia, ace1}

	res := r.Resolve("@everyone", q)
	require.True(t, res.WholeGuild)
	assert.ElementsMatch(t, []string{olivia.ID, ace1.ID}, candidateIDs(res))
}

func TestResolveEveryoneOutsideGuild(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.Resolve("🪩", testQuery(olivia))
	require.True(t, res.WholeGuild)
	assert.ElementsMatch(t, []string{selfie.ID, botty.ID}, candidateIDs(res))
}

func TestResolveConfiguredSentinels(t *testing.T) {
	r := NewResolver([]string{"yo"}, []string{"all"})

	res := r.Resolve("yo", testQuery(olivia))
	assert.Equal(t, []string{selfie.ID}, candidateIDs(res))

	// Configured words ending in "e" get the same trailing-"e" trim as
	// incoming tokens, so "me" matches "me" and "meee" alike.
	r = NewResolver([]string{"me"}, nil)
	for _, token := range []string{"me", "ME", "meee"} {
		res := r.Resolve(token, testQuery(olivia))
		assert.Equal(t, []string{selfie.ID}, candidateIDs(res), "token %q", token)
	}

	// Defaults are replaced, not extended.
	res = r.Resolve("me", testQuery(olivia))
	assert.Empty(t, res.Candidates)

	res = r.Resolve("all", testQuery(olivia))
	assert.True(t, res.WholeGuild)
}

func TestSortCandidates(t *testing.T) {
	users := []models.User{
		{ID: "1", Username: "zoe"},
		{ID: "2", Username: "Alice"},
		{ID: "3", Username: "bob"},
	}
	SortCandidates(users)
	assert.Equal(t, []string{"2", "3", "1"}, []string{users[0].ID, users[1].ID, users[2].ID})
}
