// Package models holds the data types exchanged between the agentdeck
// client, the backend API and the remote store.
package models

// User is the identity the backend vouches for. It is cached client-side
// only for the lifetime of a session.
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       *string `json:"full_name,omitempty"`
	GithubUsername *string `json:"github_username,omitempty"`
}

// Session pairs a bearer token with the user it was last validated for.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Profile carries per-user preferences.
type Profile struct {
	UserID      string         `json:"user_id,omitempty"`
	Preferences map[string]any `json:"preferences"`
}
