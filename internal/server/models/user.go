// Package models defines server-side data models persisted in the database.
package models

// User is the identity resolved from a session. It never carries the
// password hash.
type User struct {
	ID   int64
	Name string
}

// Credential is the login projection of a user row. It stays inside the
// authentication service.
type Credential struct {
	ID           int64
	Name         string
	PasswordHash string
}
