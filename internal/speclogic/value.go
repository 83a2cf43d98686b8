package speclogic

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// normalize converts a host value into the canonical form stored in a
// Const. Integers of every width become int64 (uint64 when they do not fit),
// float32 becomes float64, slices and arrays become []any and maps become
// map[any]any, recursively. Structural equality between constants is then
// independent of the width or container type the host used.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int64, float64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalizeUnsigned(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUnsigned(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = normalize(elem)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[normalizeKey(iter.Key().Interface())] = normalize(iter.Value().Interface())
		}
		return out
	}
	return v
}

// normalizeKey normalizes a map key unless that would make it unhashable,
// as it does for array keys. Such keys keep their host form.
func normalizeKey(k any) any {
	nk := normalize(k)
	if nk == nil || reflect.ValueOf(nk).Comparable() {
		return nk
	}
	return k
}

func normalizeUnsigned(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

// valuesEqual reports structural equality of two normalized values.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// compareValues orders two normalized values. ok is false when the pair has
// no natural order (different kinds, booleans, containers, nil).
func compareValues(a, b any) (c int, ok bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), true
		case uint64:
			if x < 0 {
				return -1, true
			}
			return cmp.Compare(uint64(x), y), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}
	case uint64:
		switch y := b.(type) {
		case uint64:
			return cmp.Compare(x, y), true
		case int64:
			if y < 0 {
				return 1, true
			}
			return cmp.Compare(x, uint64(y)), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmp.Compare(x, y), true
		case int64:
			return cmp.Compare(x, float64(y)), true
		case uint64:
			return cmp.Compare(x, float64(y)), true
		}
	case string:
		if y, isStr := b.(string); isStr {
			return strings.Compare(x, y), true
		}
	}
	return 0, false
}

// lookup resolves x[key] for a normalized container value.
func lookup(x, key any) (any, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		pos, ok := key.(int64)
		if !ok {
			return nil, &LookupError{Value: x, Key: key, Reason: "position is not an integer"}
		}
		if pos < 0 || pos >= int64(rv.Len()) {
			return nil, &LookupError{Value: x, Key: key, Reason: "position out of range"}
		}
		return rv.Index(int(pos)).Interface(), nil
	case reflect.Map:
		keyType := rv.Type().Key()
		kv := reflect.ValueOf(key)
		if !kv.IsValid() {
			kv = reflect.Zero(keyType)
		}
		if !kv.Type().AssignableTo(keyType) {
			return nil, &LookupError{Value: x, Key: key, Reason: "key type mismatch"}
		}
		if !kv.Comparable() {
			return lookupByValue(rv, key)
		}
		found := rv.MapIndex(kv)
		if !found.IsValid() {
			return nil, &LookupError{Value: x, Key: key, Reason: "key not present"}
		}
		return found.Interface(), nil
	}
	return nil, &LookupError{Value: x, Key: key, Reason: "value is not indexable"}
}

// lookupByValue finds a map entry whose normalized key equals key. It
// serves container keys, which are stored in host form.
func lookupByValue(m reflect.Value, key any) (any, error) {
	iter := m.MapRange()
	for iter.Next() {
		if valuesEqual(normalize(iter.Key().Interface()), key) {
			return iter.Value().Interface(), nil
		}
	}
	return nil, &LookupError{Value: m.Interface(), Key: key, Reason: "key not present"}
}

// formatValue renders a normalized value deterministically.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case []any:
		parts := make([]string, len(x))
		for i, elem := range x {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[any]any:
		parts := make([]string, 0, len(x))
		for k, val := range x {
			parts = append(parts, formatValue(k)+": "+formatValue(val))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", x)
	}
}
