package models

import "time"

// User is a player identity together with its balance. Identities are issued upstream,
// so ID is the subject of the bearer token rather than a generated key.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Funds     float64   `json:"funds"`
	CreatedAt time.Time `json:"created_at"`
}
