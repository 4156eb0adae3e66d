package memcache

import (
	platformerrors "github.com/jmgilman/go/errors"
)

// Sentinel errors for cache validation failures. All of them carry platform
// error codes and can be matched with errors.Is against wrapped variants
// returned by cache operations.
var (
	// ErrInvalidKey is returned when a cache key is empty or exceeds the
	// maximum raw length.
	ErrInvalidKey = platformerrors.New(platformerrors.CodeInvalidInput, "invalid cache key")

	// ErrInvalidTTL is returned when a per-entry TTL is non-positive or
	// exceeds the configured maximum.
	ErrInvalidTTL = platformerrors.New(platformerrors.CodeInvalidInput, "invalid TTL")

	// ErrNotSerializable is returned when a value contains functions,
	// channels, or otherwise cannot be serialized.
	ErrNotSerializable = platformerrors.New(platformerrors.CodeInvalidInput, "value is not serializable")

	// ErrCircularReference is returned when serialization fails because the
	// value references itself.
	ErrCircularReference = platformerrors.New(platformerrors.CodeInvalidInput, "value contains a circular reference")

	// ErrValueTooLarge is returned when the serialized value exceeds
	// MaxValueBytes.
	ErrValueTooLarge = platformerrors.New(platformerrors.CodeInvalidInput, "serialized value exceeds size limit")
)

// invalidKeyError wraps ErrInvalidKey with a reason and an obscured excerpt
// of the offending key. The raw key is never included verbatim.
func invalidKeyError(key, reason string) error {
	return platformerrors.Wrapf(ErrInvalidKey, platformerrors.CodeInvalidInput,
		"key %q: %s", obscureKey(key), reason)
}

// invalidTTLError wraps ErrInvalidTTL with the rejected duration.
func invalidTTLError(reason string) error {
	return platformerrors.Wrapf(ErrInvalidTTL, platformerrors.CodeInvalidInput,
		"ttl %s", reason)
}

// obscureKey returns a short excerpt of a key that is safe to include in
// error messages and logs. Keys longer than eight characters are reduced to
// their first and last four characters.
func obscureKey(key string) string {
	const edge = 4
	if len(key) <= 2*edge {
		return key
	}
	return key[:edge] + "..." + key[len(key)-edge:]
}
