package models

// User is the broker's projection of a chat user. The Online flag is derived
// from the presence registry, never from storage.
type User struct {
	Username string `db:"username" json:"username"`
	Nickname string `db:"nickname" json:"nickname"`
	Online   bool   `db:"-" json:"online"`
}

// DisplayName returns the nickname, falling back to the username.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
