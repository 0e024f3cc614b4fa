package models

// User is a bridge API account, unrelated to the gateway's own credentials.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // do not expose hash
}
