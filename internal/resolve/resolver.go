package resolve

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/bradykim7/whobot/internal/models"
)

// Resolution patterns. Bare IDs and mentions carry 15-20 digit snowflakes;
// the discriminator form is the legacy name#0000 handle.
var (
	idPattern      = regexp.MustCompile(`^[0-9]{15,20}$`)
	mentionPattern = regexp.MustCompile(`^<@!?([0-9]{15,20})>$`)
	discrimPattern = regexp.MustCompile(`^(.+)#([0-9]{4})$`)
)

// Default sentinel token sets. Self words are compared after folding and
// trimming trailing "e" runes, so "me" and "meee" both hit "m".
var (
	DefaultSelfWords     = []string{"m", "🪟"}
	DefaultEveryoneWords = []string{"@everyone", "🪩"}
)

// fold applies full Unicode case folding. A Caser is stateful, so a fresh
// one is used per call rather than sharing one across goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Query is the read-only context a single resolution runs against: the
// known-user directory, the guild member list when invoked in a guild, the
// current alias snapshot, and the identities of the invoker and the bot.
type Query struct {
	Users   []models.User
	Members []models.User
	Aliases *AliasSnapshot
	Invoker models.User
	Bot     models.User
}

// Result is the outcome of the matching pipeline, before any UI decision.
// WholeGuild marks that the everyone sentinel fired and the chooser must
// use the native member picker regardless of candidate count.
type Result struct {
	Candidates []models.User
	WholeGuild bool
}

// matcher is one strategy of the pipeline: token in, zero or more
// candidates out. Matchers never error; not matching is a valid outcome.
type matcher func(token string, q Query) []models.User

// Resolver maps a free-form token to a deduplicated candidate list by
// running every matching strategy in priority order and accumulating the
// results. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	selfWords     map[string]struct{}
	everyoneWords map[string]struct{}
}

// NewResolver creates a resolver with the given sentinel token sets.
// Empty slices fall back to the defaults.
func NewResolver(selfWords, everyoneWords []string) *Resolver {
	if len(selfWords) == 0 {
		selfWords = DefaultSelfWords
	}
	if len(everyoneWords) == 0 {
		everyoneWords = DefaultEveryoneWords
	}
	r := &Resolver{
		selfWords:     make(map[string]struct{}, len(selfWords)),
		everyoneWords: make(map[string]struct{}, len(everyoneWords)),
	}
	// Self words get the same normalization as incoming tokens, so a
	// configured "me" and the token "me" land on the same key.
	for _, w := range selfWords {
		r.selfWords[strings.TrimRight(fold(w), "e")] = struct{}{}
	}
	for _, w := range everyoneWords {
		r.everyoneWords[w] = struct{}{}
	}
	return r
}

// Resolve runs the full pipeline. Strategies accumulate rather than short
// circuit: a numeric-looking token that is also somebody's username yields
// both candidates, collapsed afterwards by dedupe. The everyone sentinel is
// the exception and replaces whatever else matched.
func (r *Resolver) Resolve(token string, q Query) Result {
	matchers := []matcher{
		matchID,
		matchMention,
		matchDiscriminator,
		matchUsername,
		matchGlobalName,
		matchNickname,
		matchAlias,
		r.matchSelf,
	}
	var found []models.User
	for _, m := range matchers {
		found = append(found, m(token, q)...)
	}
	wholeGuild := false
	if _, ok := r.everyoneWords[token]; ok {
		wholeGuild = true
		if len(q.Members) > 0 {
			found = append([]models.User(nil), q.Members...)
		} else {
			found = []models.User{q.Invoker, q.Bot}
		}
	}
	return Result{Candidates: dedupe(found), WholeGuild: wholeGuild}
}

func matchID(token string, q Query) []models.User {
	if !idPattern.MatchString(token) {
		return nil
	}
	return lookupID(q, token)
}

func matchMention(token string, q Query) []models.User {
	m := mentionPattern.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	return lookupID(q, m[1])
}

func matchDiscriminator(token string, q Query) []models.User {
	m := discrimPattern.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	for _, u := range q.Users {
		if u.Username == m[1] && u.Discriminator == m[2] {
			return []models.User{u}
		}
	}
	return nil
}

// Usernames are nominally unique, but the directory may be stale, so this
// scans everything rather than stopping at the first hit.
func matchUsername(token string, q Query) []models.User {
	folded := fold(token)
	var out []models.User
	for _, u := range q.Users {
		if fold(u.Username) == folded {
			out = append(out, u)
		}
	}
	return out
}

func matchGlobalName(token string, q Query) []models.User {
	folded := fold(token)
	var out []models.User
	for _, u := range q.Users {
		if u.GlobalName != "" && fold(u.GlobalName) == folded {
			out = append(out, u)
		}
	}
	return out
}

func matchNickname(token string, q Query) []models.User {
	folded := fold(token)
	var out []models.User
	for _, u := range q.Members {
		if u.Nick != "" && fold(u.Nick) == folded {
			out = append(out, u)
		}
	}
	return out
}

// An alias may map to several users; all of them become candidates. IDs
// that no longer appear in the directory are skipped.
func matchAlias(token string, q Query) []models.User {
	var out []models.User
	for _, id := range q.Aliases.Lookup(token) {
		out = append(out, lookupID(q, id)...)
	}
	return out
}

func (r *Resolver) matchSelf(token string, q Query) []models.User {
	trimmed := strings.TrimRight(fold(token), "e")
	if _, ok := r.selfWords[trimmed]; ok {
		return []models.User{q.Invoker}
	}
	return nil
}

// lookupID finds a user by exact ID, preferring the guild member entry so
// that nickname data rides along when present.
func lookupID(q Query, id string) []models.User {
	for _, u := range q.Members {
		if u.ID == id {
			return []models.User{u}
		}
	}
	for _, u := range q.Users {
		if u.ID == id {
			return []models.User{u}
		}
	}
	return nil
}

// dedupe collapses candidates found via multiple strategies to one entry
// per user ID, keeping first-seen order.
func dedupe(users []models.User) []models.User {
	seen := make(map[string]struct{}, len(users))
	out := users[:0:0]
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}

// SortCandidates orders candidates by case-folded display string, the
// stable order the chooser UI relies on.
func SortCandidates(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		return fold(users[i].DisplayString()) < fold(users[j].DisplayString())
	})
}
