package resolve

import (
	"sort"
	"sync/atomic"

	"github.com/bradykim7/whobot/internal/models"
)

// AliasSnapshot is an immutable view of the alias directory. Keys are
// case-folded at build time and lookups fold the token, so comparison is
// folded on both sides. Built once per refresh, never mutated afterwards.
type AliasSnapshot struct {
	byAlias map[string][]string
	byUser  map[string][]string
}

// NewAliasSnapshot builds a snapshot from persisted alias pairs.
func NewAliasSnapshot(pairs []models.PersonAlias) *AliasSnapshot {
	s := &AliasSnapshot{
		byAlias: make(map[string][]string, len(pairs)),
		byUser:  make(map[string][]string),
	}
	for _, p := range pairs {
		key := fold(p.Alias)
		s.byAlias[key] = append(s.byAlias[key], p.UserID)
		s.byUser[p.UserID] = append(s.byUser[p.UserID], p.Alias)
	}
	for _, aliases := range s.byUser {
		sort.Strings(aliases)
	}
	return s
}

// Lookup returns the user IDs linked to a token, folding it first.
// Safe on a nil snapshot.
func (s *AliasSnapshot) Lookup(token string) []string {
	if s == nil {
		return nil
	}
	return s.byAlias[fold(token)]
}

// ByUser returns the sorted aliases belonging to one user.
func (s *AliasSnapshot) ByUser(userID string) []string {
	if s == nil {
		return nil
	}
	return s.byUser[userID]
}

// AliasCache hands out the current snapshot to resolutions while a refresh
// may be replacing it. Replacement is a single pointer swap: readers see
// either the old snapshot or the new one, never a torn mix.
type AliasCache struct {
	current atomic.Pointer[AliasSnapshot]
}

// NewAliasCache starts with an empty snapshot so lookups before the first
// refresh are safe.
func NewAliasCache() *AliasCache {
	c := &AliasCache{}
	c.current.Store(NewAliasSnapshot(nil))
	return c
}

// Snapshot returns the snapshot current at the time of the call.
func (c *AliasCache) Snapshot() *AliasSnapshot {
	return c.current.Load()
}

// Replace swaps in a freshly built snapshot.
func (c *AliasCache) Replace(s *AliasSnapshot) {
	if s == nil {
		s = NewAliasSnapshot(nil)
	}
	c.current.Store(s)
}
