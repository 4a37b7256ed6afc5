package models

import (
	"strings"
	"time"
)

// PersonAlias links one lowercased alias string to one user. The same alias
// may be linked to several users; the (alias, user) pair is unique.
type PersonAlias struct {
	Alias     string    `bson:"alias"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewPersonAlias creates an alias pair, normalizing the alias to lowercase.
func NewPersonAlias(alias, userID string) *PersonAlias {
	return &PersonAlias{
		Alias:     strings.ToLower(strings.TrimSpace(alias)),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
