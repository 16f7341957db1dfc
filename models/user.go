package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Author is the public projection of a user attached to posts and comments.
type Author struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}
