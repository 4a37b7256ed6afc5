package models

// User is one entry of the known-user directory. The directory itself is
// owned by the gateway session; resolution only ever reads a snapshot of it.
type User struct {
	ID            string
	Username      string
	Discriminator string
	GlobalName    string
	Nick          string
	Bot           bool
}

// DisplayString returns the handle shown to humans: legacy accounts render
// as name#discriminator, migrated accounts as the bare username.
func (u User) DisplayString() string {
	if u.Discriminator != "" && u.Discriminator != "0" && u.Discriminator != "0000" {
		return u.Username + "#" + u.Discriminator
	}
	return u.Username
}

// Mention returns the platform mention syntax for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}
