// authenticationhandler/validation.go

package authenticationhandler

import (
	"regexp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9@.+\-_]+$`)

// IsValidUsername checks if the provided username meets the API server's
// username rules (letters, digits and @/./+/-/_ only).
// Returns true if valid, along with an empty error message; otherwise, returns false with an error message.
func IsValidUsername(username string) (bool, string) {
	if username == "" {
		return false, "Username must not be empty."
	}
	if len(username) > 150 {
		return false, "Username must be 150 characters or fewer."
	}
	if !usernameRegex.MatchString(username) {
		return false, "Username may contain only letters, digits and @/./+/-/_ characters."
	}
	return true, ""
}

// IsValidPassword checks if the provided password meets the minimum length rule.
// Returns true if valid, along with an empty error message; otherwise, returns false with an error message.
func IsValidPassword(password string) (bool, string) {
	if len(password) >= 8 {
		return true, ""
	}
	return false, "Password must be at least 8 characters long."
}
