package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// DocumentKey builds the cache key for a single-document read.
func DocumentKey(collection, id string) string {
	return strings.Join([]string{"doc", collection, id}, KeySeparator)
}

// QueryKey builds the cache key for a filtered collection read. Distinct
// (field, value) pairs produce distinct keys; all query keys for a collection
// share QueryPrefix(collection).
func QueryKey(collection, field string, value any) string {
	s := defaultKeySerializer{}
	return strings.Join([]string{"query", collection, field, s.serializeValue(value)}, KeySeparator)
}

// DocumentPrefix is the shared prefix of every document key in a collection.
func DocumentPrefix(collection string) string {
	return "doc" + KeySeparator + collection + KeySeparator
}

// QueryPrefix is the shared prefix of every query key for a collection.
func QueryPrefix(collection string) string {
	return "query" + KeySeparator + collection + KeySeparator
}

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// defaultKeySerializer implements KeySerializer with deterministic
// serialization for the argument shapes the storefront actually passes:
// identifiers, filter values, slices of either, and small option structs.
// Complex types fall back to JSON so key generation never panics.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}
	return strings.Join(parts, KeySeparator)
}

func (s defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch tv := v.(type) {
	case string:
		return tv
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return tv.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ","))
	case reflect.Map:
		// Sorted key=value pairs for determinism.
		keys := rv.MapKeys()
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, s.serializeValue(k.Interface())+"="+s.serializeValue(rv.MapIndex(k).Interface()))
		}
		sort.Strings(pairs)
		return fmt.Sprintf("{%s}", strings.Join(pairs, ","))
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%v", v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}
