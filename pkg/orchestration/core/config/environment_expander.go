package config

import (
	"os"
	"strings"
)

// EnvironmentExpander expands environment variable placeholders within a
// configuration byte slice before it is parsed.
type EnvironmentExpander interface {
	// Expand replaces ${VAR}, $VAR or ${VAR:-default} placeholders with the
	// value of the environment variable VAR.
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander expands placeholders with os.Expand, additionally
// supporting the shell's ${VAR:-default} form. An unset variable without a
// default expands to the empty string.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates a new OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand implements EnvironmentExpander. The expansion itself cannot fail,
// so the returned error is always nil.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.Expand(string(input), lookupWithDefault)), nil
}

// lookupWithDefault resolves one placeholder name. os.Expand hands over the
// full content between the braces, so "VAR:-default" arrives as one string.
func lookupWithDefault(name string) string {
	key, fallback, hasDefault := strings.Cut(name, ":-")
	value, ok := os.LookupEnv(key)
	if !ok || (value == "" && hasDefault) {
		if hasDefault {
			return fallback
		}
		return ""
	}
	return value
}

var _ EnvironmentExpander = (*OsEnvironmentExpander)(nil)
