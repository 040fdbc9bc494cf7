package domain

import "strings"

// Session is the persisted identity of the signed-in user.
type Session struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NormalizeEmail lowercases and trims an email so it can key the user record.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
