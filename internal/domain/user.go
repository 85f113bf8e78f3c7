// Package domain defines the core entities of the Notivo server.
package domain

import "time"

// User is a registered account. Usernames are unique and stored
// case-sensitively; rows are immutable once created.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is the denormalized view of another known user, as stored in
// the per-user contacts cache document.
type Contact struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// AsContact converts a user row into its cached contact representation.
func (u *User) AsContact() Contact {
	return Contact{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
