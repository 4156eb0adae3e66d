package memcache

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key length bounds. Raw keys are validated against maxRawKeyLen before
// sanitization; sanitized keys are truncated to maxSanitizedKeyLen.
const (
	maxRawKeyLen       = 1000
	maxSanitizedKeyLen = 200
)

// minHexRunLen is the minimum token length treated as a content digest or
// similar secret-shaped hex string.
const minHexRunLen = 32

// Placeholders substituted for PII-shaped tokens during sanitization.
const (
	emailPlaceholder = "[email]"
	ipPlaceholder    = "[ip]"
	hashPlaceholder  = "[hash]"
)

// validateKey bounds-checks a raw cache key. It does not sanitize.
func validateKey(key string) error {
	if key == "" {
		return invalidKeyError(key, "must not be empty")
	}
	if utf8.RuneCountInString(key) > maxRawKeyLen {
		return invalidKeyError(key, "exceeds maximum length")
	}
	return nil
}

// sanitizeKey normalizes a raw key for use as a store lookup key. Tokens
// shaped like email addresses, IPv4 addresses, or long hex digests are
// replaced with fixed placeholders, and the result is truncated to
// maxSanitizedKeyLen characters.
//
// The scan is a single linear pass over the input with per-token
// classification that is itself linear in token length, so sanitization cost
// is bounded by input length regardless of content. The same raw key always
// produces the same sanitized key; distinct raw keys may collide after
// sanitization, which callers tolerate by contract.
func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	first := true
	appendToken := func(token string) {
		if token == "" {
			return
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		switch {
		case isEmailToken(token):
			b.WriteString(emailPlaceholder)
		case isIPv4Token(token):
			b.WriteString(ipPlaceholder)
		case isHexToken(token):
			b.WriteString(hashPlaceholder)
		default:
			b.WriteString(token)
		}
	}

	start := -1
	for i, r := range key {
		if unicode.IsSpace(r) {
			if start >= 0 {
				appendToken(key[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		appendToken(key[start:])
	}

	return truncateRunes(b.String(), maxSanitizedKeyLen)
}

// isEmailToken reports whether a token has the shape local@domain.tld.
func isEmailToken(token string) bool {
	at := strings.IndexByte(token, '@')
	if at <= 0 || at != strings.LastIndexByte(token, '@') {
		return false
	}
	domain := token[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	// Require a non-empty domain part and a non-empty TLD.
	return dot > 0 && dot < len(domain)-1
}

// isIPv4Token reports whether a token is four dot-separated octets in 0-255.
func isIPv4Token(token string) bool {
	octets := 0
	digits := 0
	value := 0
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
			value = value*10 + int(c-'0')
			if digits > 3 || value > 255 {
				return false
			}
		case c == '.':
			if digits == 0 {
				return false
			}
			octets++
			digits = 0
			value = 0
		default:
			return false
		}
	}
	return octets == 3 && digits > 0
}

// isHexToken reports whether a token is a run of at least minHexRunLen hex
// digits.
func isHexToken(token string) bool {
	if len(token) < minHexRunLen {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex {
			return false
		}
	}
	return true
}

// truncateRunes returns s truncated to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
