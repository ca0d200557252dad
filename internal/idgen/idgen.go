// Package idgen generates short, URL-safe export identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ExportPrefix is prepended to every export ID.
const ExportPrefix = "exp-"

// Alphabet defines the character set used for the random portion of the ID.
// Lowercase only, so IDs are safe in file names on case-insensitive filesystems.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated (excluding the prefix).
const Length = 12

// ExportID returns a new export identifier.
func ExportID() (string, error) {
	return WithPrefix(ExportPrefix)
}

// WithPrefix returns a new unique ID with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// MustExportID returns ExportID, or a fixed placeholder if the random
// source fails.
func MustExportID() string {
	id, err := ExportID()
	if err != nil {
		return ExportPrefix + "unknown"
	}
	return id
}
