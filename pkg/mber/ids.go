package mber

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// aliasMarker is the reserved prefix the service uses to distinguish
// human-readable unique keys from opaque identifiers.
const aliasMarker = "'"

// idShape matches service-issued identifiers: exactly 22 characters of
// URL-safe base64. Anything else, including 22-character strings with
// other characters, is a plain name.
var idShape = regexp.MustCompile(`^[A-Za-z0-9_-]{22}$`)

func isUUID(value string) bool {
	return idShape.MatchString(value)
}

func isAlias(value string) bool {
	return strings.HasPrefix(value, aliasMarker)
}

// toAlias marks value as an alias. Values already carrying the marker are
// returned unchanged, so aliasing is idempotent and never double-prefixes.
func toAlias(value string) string {
	if isAlias(value) {
		return value
	}
	return aliasMarker + value
}

// GenerateTransactionID returns a fresh idempotency token: the 16 bytes of
// a random UUID, base64-encoded. Every mutating call that accepts a
// transaction id gets a new one.
func GenerateTransactionID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}
