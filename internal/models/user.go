package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	Provider  string    `json:"provider"` // "local", "google", "facebook"
	CreatedAt time.Time `json:"created_at"`
}
