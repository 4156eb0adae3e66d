package memcache

import (
	"encoding/json"
	"reflect"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
)

// serializeValue validates a value and returns its canonical serialized
// form. Values containing functions or channels are rejected before
// serialization is attempted; serialization failures are classified as
// circular references or general non-serializability; serialized forms over
// MaxValueBytes are rejected. The returned bytes are reused by the size
// estimator so the value is serialized exactly once per Set.
func serializeValue(value any) ([]byte, error) {
	if value != nil {
		visited := make(map[uintptr]struct{})
		if containsUnserializable(reflect.ValueOf(value), visited) {
			return nil, platformerrors.Wrap(ErrNotSerializable, platformerrors.CodeInvalidInput,
				"value contains a function or channel")
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		if isCycleError(err) {
			return nil, platformerrors.Wrap(ErrCircularReference, platformerrors.CodeInvalidInput,
				"serialization detected a reference cycle")
		}
		return nil, platformerrors.Wrap(ErrNotSerializable, platformerrors.CodeInvalidInput,
			"value cannot be serialized")
	}

	if int64(len(data)) > MaxValueBytes {
		return nil, platformerrors.Wrapf(ErrValueTooLarge, platformerrors.CodeInvalidInput,
			"serialized size %d exceeds limit %d", len(data), int64(MaxValueBytes))
	}

	return data, nil
}

// isCycleError reports whether a json.Marshal failure was caused by a
// self-referencing value. encoding/json reports cycles as an
// UnsupportedValueError whose description names the cycle.
func isCycleError(err error) bool {
	var unsupported *json.UnsupportedValueError
	return platformerrors.As(err, &unsupported) && strings.Contains(unsupported.Str, "cycle")
}

// containsUnserializable walks a value looking for functions and channels.
// The visited set tolerates shared substructure and reference cycles so the
// walk always terminates; cycles themselves are reported later by the
// serializer, which distinguishes them from other failures.
func containsUnserializable(v reflect.Value, visited map[uintptr]struct{}) bool {
	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	case reflect.Interface:
		if v.IsNil() {
			return false
		}
		return containsUnserializable(v.Elem(), visited)
	case reflect.Pointer:
		if v.IsNil() {
			return false
		}
		if _, seen := visited[v.Pointer()]; seen {
			return false
		}
		visited[v.Pointer()] = struct{}{}
		return containsUnserializable(v.Elem(), visited)
	case reflect.Map:
		if v.IsNil() {
			return false
		}
		if _, seen := visited[v.Pointer()]; seen {
			return false
		}
		visited[v.Pointer()] = struct{}{}
		iter := v.MapRange()
		for iter.Next() {
			if containsUnserializable(iter.Key(), visited) ||
				containsUnserializable(iter.Value(), visited) {
				return true
			}
		}
		return false
	case reflect.Slice:
		if v.IsNil() {
			return false
		}
		if _, seen := visited[v.Pointer()]; seen {
			return false
		}
		visited[v.Pointer()] = struct{}{}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if containsUnserializable(v.Index(i), visited) {
				return true
			}
		}
		return false
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if containsUnserializable(v.Field(i), visited) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
