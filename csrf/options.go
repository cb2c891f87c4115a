package csrf

import (
	"os"
	"strconv"
	"strings"
)

// Built-in defaults. They apply to zero-valued Config fields at construction
// and are substituted whenever a reconfiguration supplies an unusable value.
const (
	DefaultTokenLength = 32
	DefaultHeaderName  = "x-csrf-token"
	DefaultBodyField   = "_csrf"
	DefaultSessionKey  = "csrfToken"
)

// Config holds the settings of a Guard. In the live snapshot all four fields
// are always present and non-empty.
type Config struct {
	// TokenLength is the number of random bytes drawn per token, before hex
	// encoding (the encoded token has 2*TokenLength characters).
	TokenLength int

	// HeaderName is the request header inspected for a submitted token.
	// Lookup is case-insensitive, per standard header semantics.
	HeaderName string

	// BodyField is the key inspected inside the request payload.
	BodyField string

	// SessionKey is the session field the token is stored under.
	SessionKey string
}

func (c Config) withDefaults() Config {
	if c.TokenLength <= 0 {
		c.TokenLength = DefaultTokenLength
	}
	if c.HeaderName == "" {
		c.HeaderName = DefaultHeaderName
	}
	if c.BodyField == "" {
		c.BodyField = DefaultBodyField
	}
	if c.SessionKey == "" {
		c.SessionKey = DefaultSessionKey
	}
	return c
}

// Option keys recognized in the map handed over by the host's config loader.
const (
	optTokenLength = "tokenLength"
	optHeaderName  = "headerName"
	optBodyField   = "bodyField"
	optSessionKey  = "sessionKey"
)

// merge applies a partial option map over c. Every value goes through
// environment expansion first; unknown keys are ignored.
func (c Config) merge(options map[string]any) Config {
	for key, value := range options {
		value = expandEnv(value)
		switch key {
		case optTokenLength:
			c.TokenLength = intOption(value, DefaultTokenLength)
		case optHeaderName:
			c.HeaderName = stringOption(value, DefaultHeaderName)
		case optBodyField:
			c.BodyField = stringOption(value, DefaultBodyField)
		case optSessionKey:
			c.SessionKey = stringOption(value, DefaultSessionKey)
		}
	}
	return c
}

// expandEnv replaces a string of the exact form "${NAME}" with the value of
// the environment variable NAME. An undefined variable leaves the literal
// untouched; any other value passes through unchanged.
func expandEnv(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return s
	}
	if v, ok := os.LookupEnv(s[2 : len(s)-1]); ok {
		return v
	}
	return s
}

// stringOption coerces an option value to a usable name. The fallback keeps
// the live config free of empty fields.
func stringOption(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}

// intOption coerces an option value to a positive integer. Strings (typical
// after environment expansion) are parsed; anything unusable yields the
// fallback instead of an error, since a guard running on defaults beats a
// crash loop over a non-critical numeric setting.
func intOption(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
