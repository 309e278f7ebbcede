package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

const defaultAvatarSize = 200

// AvatarURL returns the Gravatar image for email, falling back to the generic silhouette.
// It returns an empty string when there is no email.
func AvatarURL(email string, size int) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	if size <= 0 {
		size = defaultAvatarSize
	}

	hash := sha256.Sum256([]byte(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
